// Package progress decouples tool execution from any specific UI by
// funneling status updates through a single-method sink.
package progress

import (
	"sync"
	"time"
)

// Update is one observable step of a tool invocation.
type Update struct {
	// ToolID identifies the tool the update belongs to.
	ToolID string

	// Stage is a short machine-readable phase name
	// (e.g. "starting", "processing", "cached", "fallback", "done").
	Stage string

	// Percent is the numeric progress in [0,100].
	Percent int

	// Message is the human-readable status text.
	Message string

	// Fallback marks updates describing a degraded result.
	Fallback bool

	// Timestamp is when the update was emitted.
	Timestamp time.Time
}

// Reporter receives progress updates.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: reporting is best-effort and must not panic or block.
type Reporter interface {
	Report(update Update)
}

// ReporterFunc is an adapter to allow ordinary functions to be used as
// Reporters.
type ReporterFunc func(Update)

// Report calls the underlying function.
func (f ReporterFunc) Report(update Update) {
	f(update)
}

// LastReporter retains only the most recent update. It holds no other state
// and performs no I/O.
type LastReporter struct {
	mu   sync.RWMutex
	last Update
	seen bool
}

// NewLastReporter creates an empty LastReporter.
func NewLastReporter() *LastReporter {
	return &LastReporter{}
}

// Report stores the update, replacing any previous one.
func (r *LastReporter) Report(update Update) {
	r.mu.Lock()
	r.last = update
	r.seen = true
	r.mu.Unlock()
}

// Last returns the most recent update and whether one has been reported.
func (r *LastReporter) Last() (Update, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last, r.seen
}

// Nop returns a Reporter that discards all updates.
func Nop() Reporter {
	return ReporterFunc(func(Update) {})
}

// Ensure adapters implement Reporter
var (
	_ Reporter = ReporterFunc(nil)
	_ Reporter = (*LastReporter)(nil)
)
