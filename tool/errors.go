package tool

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for tool orchestration.
var (
	// ErrNoStrategy is returned when the executor has no active strategy.
	ErrNoStrategy = errors.New("tool: no strategy configured")
)

// ConfigError reports a strategy that cannot run because of missing or
// invalid configuration. It is the only failure the executor surfaces as
// an error; everything else degrades to a fallback result.
type ConfigError struct {
	// Strategy is the ID of the misconfigured strategy.
	Strategy string

	// Setting names the missing or invalid setting.
	Setting string

	// Reason explains the problem.
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("tool: strategy %q misconfigured: %s: %s", e.Strategy, e.Setting, e.Reason)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// UpstreamError reports a failed call to a strategy's upstream service.
type UpstreamError struct {
	// Strategy is the ID of the calling strategy.
	Strategy string

	// StatusCode is the HTTP status returned by the upstream, if any.
	StatusCode int

	// Cause is the underlying transport error, if any.
	Cause error
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("tool: strategy %q upstream call failed: %v", e.Strategy, e.Cause)
	}
	return fmt.Sprintf("tool: strategy %q upstream returned status %d", e.Strategy, e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// RetryableStatus reports whether an HTTP status code indicates a
// transient condition worth retrying.
func RetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// Retryable decides whether a strategy failure should be retried.
// Configuration errors and context cancellation never retry; upstream
// status codes follow RetryableStatus; unknown errors are assumed
// transient.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if IsConfigError(err) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var ue *UpstreamError
	if errors.As(err, &ue) && ue.StatusCode != 0 {
		return RetryableStatus(ue.StatusCode)
	}
	return true
}
