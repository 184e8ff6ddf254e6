package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// BackoffStrategy selects how the delay between attempts grows.
type BackoffStrategy int

const (
	// BackoffExponential multiplies the delay by Multiplier after each
	// attempt.
	BackoffExponential BackoffStrategy = iota
	// BackoffLinear grows the delay by InitialDelay per attempt.
	BackoffLinear
	// BackoffConstant waits InitialDelay between every attempt.
	BackoffConstant
)

// RetryConfig configures a Retry.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the
	// first. Default: 3
	MaxAttempts int

	// InitialDelay is the delay before the first retry. Default: 100ms
	InitialDelay time.Duration

	// MaxDelay caps the computed delay. Default: 30s
	MaxDelay time.Duration

	// Multiplier is the exponential growth factor. Default: 2.0
	Multiplier float64

	// Strategy selects the backoff curve. Default: BackoffExponential
	Strategy BackoffStrategy

	// Jitter stretches each delay by up to 25% so coalesced clients do
	// not retry in lockstep.
	Jitter bool

	// RetryIf decides whether an error is worth another attempt.
	// Default: any non-nil error is.
	RetryIf func(error) bool

	// OnRetry, when set, is called before each backoff wait.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// Retry re-runs an operation that failed with a retryable error,
// backing off between attempts.
type Retry struct {
	config RetryConfig
}

// NewRetry creates a retry policy.
func NewRetry(config RetryConfig) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = 100 * time.Millisecond
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.RetryIf == nil {
		config.RetryIf = func(err error) bool { return err != nil }
	}
	return &Retry{config: config}
}

// Execute runs op up to MaxAttempts times. It returns nil on the first
// success, the last error once attempts are exhausted or the error is
// not retryable, and the context's error if the caller gives up during
// a backoff wait.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		lastErr = op(ctx)
		if lastErr == nil || !r.config.RetryIf(lastErr) {
			return lastErr
		}
		if attempt == r.config.MaxAttempts {
			break
		}

		delay := r.delay(attempt)
		if r.config.OnRetry != nil {
			r.config.OnRetry(attempt, lastErr, delay)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}

// delay computes the wait after the given failed attempt (1-based).
func (r *Retry) delay(attempt int) time.Duration {
	var d time.Duration
	switch r.config.Strategy {
	case BackoffConstant:
		d = r.config.InitialDelay
	case BackoffLinear:
		d = r.config.InitialDelay * time.Duration(attempt)
	default:
		d = time.Duration(float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1)))
	}
	if d > r.config.MaxDelay {
		d = r.config.MaxDelay
	}
	if r.config.Jitter {
		// Backoff timing is not security sensitive.
		if n := int64(d) / 4; n > 0 {
			d += time.Duration(rand.Int64N(n)) // #nosec G404
		}
	}
	return d
}
