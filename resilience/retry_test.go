package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errQuotaExhausted = errors.New("upstream: search quota exhausted")

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	r := NewRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})

	calls := 0
	err := r.Execute(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errQuotaExhausted
		}
		return nil
	})
	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	r := NewRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond})

	calls := 0
	err := r.Execute(context.Background(), func(context.Context) error {
		calls++
		return errQuotaExhausted
	})
	if !errors.Is(err, errQuotaExhausted) {
		t.Errorf("err = %v, want the last upstream error", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	errBadRequest := errors.New("upstream: status 400")
	r := NewRetry(RetryConfig{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		RetryIf:      func(err error) bool { return !errors.Is(err, errBadRequest) },
	})

	calls := 0
	err := r.Execute(context.Background(), func(context.Context) error {
		calls++
		return errBadRequest
	})
	if !errors.Is(err, errBadRequest) {
		t.Errorf("err = %v, want the non-retryable error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_OnRetryReportsAttempts(t *testing.T) {
	var attempts []int
	var delays []time.Duration
	r := NewRetry(RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 2 * time.Millisecond,
		Strategy:     BackoffConstant,
		OnRetry: func(attempt int, err error, delay time.Duration) {
			attempts = append(attempts, attempt)
			delays = append(delays, delay)
		},
	})

	r.Execute(context.Background(), func(context.Context) error { return errQuotaExhausted })

	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Errorf("attempts = %v, want [1 2]", attempts)
	}
	for i, d := range delays {
		if d != 2*time.Millisecond {
			t.Errorf("delay %d = %v, want 2ms with constant backoff", i, d)
		}
	}
}

func TestRetry_ContextCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRetry(RetryConfig{MaxAttempts: 3, InitialDelay: time.Second})

	calls := 0
	err := r.Execute(ctx, func(context.Context) error {
		calls++
		cancel()
		return errQuotaExhausted
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 before the backoff wait was abandoned", calls)
	}
}

func TestRetry_DelayCurves(t *testing.T) {
	tests := []struct {
		name    string
		config  RetryConfig
		attempt int
		want    time.Duration
	}{
		{"constant", RetryConfig{Strategy: BackoffConstant, InitialDelay: 10 * time.Millisecond}, 3, 10 * time.Millisecond},
		{"linear", RetryConfig{Strategy: BackoffLinear, InitialDelay: 10 * time.Millisecond}, 3, 30 * time.Millisecond},
		{"exponential first", RetryConfig{Strategy: BackoffExponential, InitialDelay: 10 * time.Millisecond}, 1, 10 * time.Millisecond},
		{"exponential third", RetryConfig{Strategy: BackoffExponential, InitialDelay: 10 * time.Millisecond}, 3, 40 * time.Millisecond},
		{"capped", RetryConfig{Strategy: BackoffExponential, InitialDelay: time.Second, MaxDelay: 2 * time.Second}, 10, 2 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRetry(tt.config)
			if got := r.delay(tt.attempt); got != tt.want {
				t.Errorf("delay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestRetry_JitterStaysBounded(t *testing.T) {
	r := NewRetry(RetryConfig{
		Strategy:     BackoffConstant,
		InitialDelay: 100 * time.Millisecond,
		Jitter:       true,
	})
	base := 100 * time.Millisecond
	for i := 0; i < 50; i++ {
		d := r.delay(1)
		if d < base || d >= base+base/4 {
			t.Fatalf("jittered delay = %v, want in [%v, %v)", d, base, base+base/4)
		}
	}
}

func TestNewRetry_Defaults(t *testing.T) {
	r := NewRetry(RetryConfig{})
	if r.config.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", r.config.MaxAttempts)
	}
	if r.config.InitialDelay != 100*time.Millisecond {
		t.Errorf("InitialDelay = %v, want 100ms", r.config.InitialDelay)
	}
	if r.config.MaxDelay != 30*time.Second {
		t.Errorf("MaxDelay = %v, want 30s", r.config.MaxDelay)
	}
	if r.config.Multiplier != 2.0 {
		t.Errorf("Multiplier = %v, want 2.0", r.config.Multiplier)
	}
	if !r.config.RetryIf(errQuotaExhausted) {
		t.Error("default RetryIf rejected a non-nil error")
	}
	if r.config.RetryIf(nil) {
		t.Error("default RetryIf accepted nil")
	}
}
