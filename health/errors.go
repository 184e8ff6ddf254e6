package health

import "errors"

var (
	// ErrCheckFailed marks a component that a check found unhealthy.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a check that ran past its deadline.
	ErrCheckTimeout = errors.New("health: check timed out")

	// ErrCheckerNotFound is returned when a named checker is not registered.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
