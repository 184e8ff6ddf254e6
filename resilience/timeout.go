package resilience

import (
	"context"
	"errors"
	"time"
)

// TimeoutConfig configures a Timeout.
type TimeoutConfig struct {
	// Timeout is the per-call deadline. Default: 30s
	Timeout time.Duration
}

// Timeout bounds how long a single call may run.
type Timeout struct {
	config TimeoutConfig
}

// NewTimeout creates a timeout policy.
func NewTimeout(config TimeoutConfig) *Timeout {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	return &Timeout{config: config}
}

// Execute runs op under the configured deadline.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	return ExecuteWithTimeout(ctx, t.config.Timeout, op)
}

// ExecuteWithTimeout runs op with an explicit deadline. The call is
// abandoned once the deadline passes, even if op ignores its context,
// and ErrTimeout is returned in its place.
func ExecuteWithTimeout(ctx context.Context, timeout time.Duration, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	}
}
