package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestTimeout_CompletesWithinDeadline(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: time.Second})

	err := to.Execute(context.Background(), func(context.Context) error { return nil })
	if err != nil {
		t.Errorf("err = %v, want nil", err)
	}
}

func TestTimeout_ExpiresSlowCall(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: 10 * time.Millisecond})

	err := to.Execute(context.Background(), func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestTimeout_PropagatesOpError(t *testing.T) {
	to := NewTimeout(TimeoutConfig{Timeout: time.Second})

	errUpstream := errors.New("upstream: status 502")
	err := to.Execute(context.Background(), func(context.Context) error { return errUpstream })
	if !errors.Is(err, errUpstream) {
		t.Errorf("err = %v, want the upstream error", err)
	}
}

func TestExecuteWithTimeout_AbandonsStuckCall(t *testing.T) {
	// The op ignores its context entirely; the call must still return.
	start := time.Now()
	err := ExecuteWithTimeout(context.Background(), 10*time.Millisecond, func(context.Context) error {
		time.Sleep(500 * time.Millisecond)
		return nil
	})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("call blocked %v, want a return near the 10ms deadline", elapsed)
	}
}

func TestExecuteWithTimeout_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := ExecuteWithTimeout(ctx, time.Second, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled from the parent", err)
	}
}

func TestNewTimeout_Default(t *testing.T) {
	to := NewTimeout(TimeoutConfig{})
	if to.config.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", to.config.Timeout)
	}
}
