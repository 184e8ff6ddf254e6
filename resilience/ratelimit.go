package resilience

import (
	"context"
	"sync"
	"time"
)

// RateLimiterConfig configures a RateLimiter.
type RateLimiterConfig struct {
	// Rate is the sustained number of calls allowed per second.
	// Default: 100
	Rate float64

	// Burst is the bucket capacity. Default: 10
	Burst int

	// WaitOnLimit makes Execute block for a token instead of failing
	// fast.
	WaitOnLimit bool

	// MaxWait bounds how long Execute blocks when WaitOnLimit is set.
	// Default: 1s
	MaxWait time.Duration
}

// RateLimiter is a token bucket. Tokens accrue continuously at Rate per
// second up to Burst, and each admitted call spends one.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: calls that cannot get a token fail with
//   ErrRateLimitExceeded.
type RateLimiter struct {
	config RateLimiterConfig
	now    func() time.Time

	mu     sync.Mutex
	tokens float64
	last   time.Time
}

// NewRateLimiter creates a rate limiter with a full bucket.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.Rate <= 0 {
		config.Rate = 100
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	if config.MaxWait <= 0 {
		config.MaxWait = time.Second
	}
	rl := &RateLimiter{config: config, now: time.Now}
	rl.tokens = float64(config.Burst)
	rl.last = rl.now()
	return rl
}

// Allow spends one token if one is available.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refillLocked()
	if rl.tokens < 1 {
		return false
	}
	rl.tokens--
	return true
}

// Wait blocks until a token is available. It gives up with
// ErrRateLimitExceeded when the wait would exceed MaxWait, and with
// the context's error when the caller cancels first.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rl.Allow() {
		return nil
	}

	wait := rl.shortfall()
	if wait > rl.config.MaxWait {
		return ErrRateLimitExceeded
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
	}
	if rl.Allow() {
		return nil
	}
	return ErrRateLimitExceeded
}

// Execute acquires a token and then runs op. With WaitOnLimit set it
// blocks for the token; otherwise it fails fast.
func (rl *RateLimiter) Execute(ctx context.Context, op func(context.Context) error) error {
	if rl.config.WaitOnLimit {
		if err := rl.Wait(ctx); err != nil {
			return err
		}
	} else if !rl.Allow() {
		return ErrRateLimitExceeded
	}
	return op(ctx)
}

// shortfall estimates how long until the next token accrues.
func (rl *RateLimiter) shortfall() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refillLocked()
	missing := 1 - rl.tokens
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / rl.config.Rate * float64(time.Second))
}

// refillLocked credits tokens for the time since the last refill.
// Callers must hold mu.
func (rl *RateLimiter) refillLocked() {
	now := rl.now()
	elapsed := now.Sub(rl.last)
	rl.last = now
	rl.tokens += elapsed.Seconds() * rl.config.Rate
	if limit := float64(rl.config.Burst); rl.tokens > limit {
		rl.tokens = limit
	}
}
