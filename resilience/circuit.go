package resilience

import (
	"context"
	"sync"
	"time"
)

// State describes the admission behavior of a CircuitBreaker.
type State int

const (
	// StateClosed admits every call.
	StateClosed State = iota
	// StateOpen rejects every call until the reset timeout elapses.
	StateOpen
	// StateHalfOpen admits a bounded number of trial calls.
	StateHalfOpen
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	}
	return "unknown"
}

// CircuitBreakerConfig configures a CircuitBreaker.
type CircuitBreakerConfig struct {
	// MaxFailures is the consecutive failure count that opens the
	// circuit. Default: 5
	MaxFailures int

	// ResetTimeout is how long an open circuit rejects calls before
	// trial calls are admitted. Default: 30s
	ResetTimeout time.Duration

	// HalfOpenMaxRequests bounds trial calls while half-open.
	// Default: 1
	HalfOpenMaxRequests int

	// OnStateChange, when set, is called on every transition.
	OnStateChange func(from, to State)

	// IsFailure decides whether an error counts against the breaker.
	// Default: any non-nil error counts.
	IsFailure func(error) bool
}

// CircuitBreaker sheds load from an upstream that keeps failing. After
// MaxFailures consecutive failures it rejects calls outright, giving
// the upstream ResetTimeout to recover before trial calls go through
// again.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: rejected calls fail fast with ErrCircuitOpen.
type CircuitBreaker struct {
	config CircuitBreakerConfig
	now    func() time.Time

	mu       sync.Mutex
	state    State
	fails    int
	trials   int
	openedAt time.Time
}

// NewCircuitBreaker creates a circuit breaker in the closed state.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.MaxFailures <= 0 {
		config.MaxFailures = 5
	}
	if config.ResetTimeout <= 0 {
		config.ResetTimeout = 30 * time.Second
	}
	if config.HalfOpenMaxRequests <= 0 {
		config.HalfOpenMaxRequests = 1
	}
	if config.IsFailure == nil {
		config.IsFailure = func(err error) bool { return err != nil }
	}
	return &CircuitBreaker{config: config, now: time.Now}
}

// Execute runs op if the breaker admits the call and records the
// outcome. While the circuit is open it returns ErrCircuitOpen without
// calling op.
func (cb *CircuitBreaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := op(ctx)
	cb.record(err)
	return err
}

// State returns the current state, promoting an expired open circuit
// to half-open.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.stateLocked()
}

// Reset closes the breaker and clears its counters.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.fails = 0
	cb.trials = 0
	cb.transitionLocked(StateClosed)
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.stateLocked() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if cb.trials >= cb.config.HalfOpenMaxRequests {
			return ErrCircuitOpen
		}
		cb.trials++
	}
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	state := cb.stateLocked()

	if cb.config.IsFailure(err) {
		cb.fails++
		switch state {
		case StateHalfOpen:
			// A failed trial restarts the recovery window.
			cb.openedAt = cb.now()
			cb.transitionLocked(StateOpen)
		case StateClosed:
			if cb.fails >= cb.config.MaxFailures {
				cb.openedAt = cb.now()
				cb.transitionLocked(StateOpen)
			}
		}
		return
	}

	cb.fails = 0
	if state == StateHalfOpen {
		cb.trials = 0
		cb.transitionLocked(StateClosed)
	}
}

// stateLocked returns the effective state, moving an open circuit to
// half-open once the reset timeout has elapsed. Callers must hold mu.
func (cb *CircuitBreaker) stateLocked() State {
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.config.ResetTimeout {
		cb.trials = 0
		cb.transitionLocked(StateHalfOpen)
	}
	return cb.state
}

func (cb *CircuitBreaker) transitionLocked(to State) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}
