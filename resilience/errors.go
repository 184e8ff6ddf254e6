package resilience

import "errors"

// Sentinel errors returned when a protection pattern rejects a call.
var (
	// ErrCircuitOpen reports a call shed by an open circuit breaker.
	ErrCircuitOpen = errors.New("resilience: circuit breaker is open")

	// ErrRateLimitExceeded reports a call that could not get a token.
	ErrRateLimitExceeded = errors.New("resilience: rate limit exceeded")

	// ErrTimeout reports a call that outlived its deadline.
	ErrTimeout = errors.New("resilience: operation timed out")
)
