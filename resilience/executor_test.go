package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewExecutor_EmptyChainRunsUnprotected(t *testing.T) {
	e := NewExecutor()
	if e.circuitBreaker != nil || e.retry != nil || e.rateLimiter != nil || e.timeout != nil {
		t.Error("executor without options configured a pattern")
	}

	ran := false
	err := e.Execute(context.Background(), func(context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Errorf("Execute() = %v, want nil", err)
	}
	if !ran {
		t.Error("op did not run")
	}
}

func TestExecutor_Options(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})
	r := NewRetry(RetryConfig{})
	rl := NewRateLimiter(RateLimiterConfig{})
	to := NewTimeout(TimeoutConfig{Timeout: 5 * time.Second})

	e := NewExecutor(
		WithCircuitBreaker(cb),
		WithRetry(r),
		WithRateLimiter(rl),
		WithTimeoutConfig(to),
	)

	if e.circuitBreaker != cb {
		t.Error("circuit breaker not wired")
	}
	if e.retry != r {
		t.Error("retry not wired")
	}
	if e.rateLimiter != rl {
		t.Error("rate limiter not wired")
	}
	if e.timeout != to {
		t.Error("timeout not wired")
	}
}

func TestExecutor_TimeoutExpiresSlowUpstream(t *testing.T) {
	e := NewExecutor(WithTimeout(20 * time.Millisecond))

	if err := e.Execute(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Errorf("fast call: err = %v, want nil", err)
	}

	err := e.Execute(context.Background(), func(context.Context) error {
		time.Sleep(100 * time.Millisecond)
		return nil
	})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("slow call: err = %v, want ErrTimeout", err)
	}
}

func TestExecutor_RetriesTransientFailures(t *testing.T) {
	e := NewExecutor(WithRetry(NewRetry(RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
	})))

	attempts := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errQuotaExhausted
		}
		return nil
	})
	if err != nil {
		t.Errorf("Execute() = %v, want nil after recovery", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestExecutor_CircuitShedsAfterFailures(t *testing.T) {
	e := NewExecutor(WithCircuitBreaker(NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:  2,
		ResetTimeout: time.Hour,
	})))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		e.Execute(ctx, func(context.Context) error { return errUpstreamDown })
	}

	err := e.Execute(ctx, func(context.Context) error { return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() = %v, want ErrCircuitOpen", err)
	}
}

func TestExecutor_RateLimiterCapsCalls(t *testing.T) {
	e := NewExecutor(WithRateLimiter(NewRateLimiter(RateLimiterConfig{
		Rate:  10,
		Burst: 1,
	})))
	ctx := context.Background()

	if err := e.Execute(ctx, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("first call: err = %v, want nil", err)
	}
	err := e.Execute(ctx, func(context.Context) error { return nil })
	if !errors.Is(err, ErrRateLimitExceeded) {
		t.Errorf("second call: err = %v, want ErrRateLimitExceeded", err)
	}
}

func TestExecutor_ComposedChain(t *testing.T) {
	e := NewExecutor(
		WithRateLimiter(NewRateLimiter(RateLimiterConfig{Rate: 1000, Burst: 10})),
		WithCircuitBreaker(NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 10})),
		WithRetry(NewRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})),
		WithTimeout(time.Second),
	)

	// The retry sits inside the circuit breaker, so a call that
	// recovers on its final attempt counts as a single success.
	attempts := 0
	err := e.Execute(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errQuotaExhausted
		}
		return nil
	})
	if err != nil {
		t.Errorf("Execute() = %v, want nil", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}
