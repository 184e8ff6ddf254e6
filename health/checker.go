package health

import (
	"context"
	"time"
)

// Status grades a component's health.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusCritical
)

var statusNames = [...]string{"ok", "warning", "critical"}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "unknown"
	}
	return statusNames[s]
}

// Result is the outcome of one health check.
type Result struct {
	Status  Status
	Message string

	// Issues names the concrete problems behind a non-ok status.
	Issues []string

	// Recommendations lists operator actions that would resolve the issues.
	Recommendations []string

	// Details carries check-specific measurements, e.g. tier utilization.
	Details map[string]any

	// Duration is how long the check ran.
	Duration time.Duration

	// Timestamp is when the check ran.
	Timestamp time.Time

	// Error is set when the check itself failed.
	Error error
}

// OK builds a healthy result.
func OK(message string) Result {
	return Result{Status: StatusOK, Message: message, Timestamp: time.Now()}
}

// Warning builds a degraded-but-working result.
func Warning(message string) Result {
	return Result{Status: StatusWarning, Message: message, Timestamp: time.Now()}
}

// Critical builds a failing result.
func Critical(message string, err error) Result {
	return Result{Status: StatusCritical, Message: message, Error: err, Timestamp: time.Now()}
}

// WithDetails attaches measurements to the result.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// WithDuration records how long the check ran.
func (r Result) WithDuration(d time.Duration) Result {
	r.Duration = d
	return r
}

// WithIssues appends problem descriptions.
func (r Result) WithIssues(issues ...string) Result {
	r.Issues = append(r.Issues, issues...)
	return r
}

// WithRecommendations appends operator actions.
func (r Result) WithRecommendations(recs ...string) Result {
	r.Recommendations = append(r.Recommendations, recs...)
	return r
}

// Checker probes one component.
//
// Contract:
//   - Concurrency: Check may be called from multiple goroutines.
//   - Context: Check should return promptly once ctx is done; the
//     aggregator enforces a deadline around it regardless.
type Checker interface {
	Name() string
	Check(ctx context.Context) Result
}

// CheckerFunc adapts a plain function into a Checker.
type CheckerFunc struct {
	name string
	fn   func(context.Context) Result
}

var _ Checker = (*CheckerFunc)(nil)

// NewCheckerFunc wraps fn as a named Checker.
func NewCheckerFunc(name string, fn func(context.Context) Result) *CheckerFunc {
	return &CheckerFunc{name: name, fn: fn}
}

func (f *CheckerFunc) Name() string { return f.name }

func (f *CheckerFunc) Check(ctx context.Context) Result { return f.fn(ctx) }
