package tool

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jonwraymond/mapops/cache"
	"github.com/jonwraymond/mapops/observe"
)

// Request describes one analysis-tool invocation. Query, Location, and
// Radius participate in cache-key normalization; Params carries
// strategy-specific extras.
type Request struct {
	// ToolID identifies the strategy. Defaults to the active strategy's ID.
	ToolID string `json:"tool_id"`

	// Query is the free-text query or analysis subject.
	Query string `json:"query"`

	// Location is the geographic focus of the request.
	Location string `json:"location"`

	// Radius is the search radius descriptor (units are upstream-defined).
	Radius string `json:"radius,omitempty"`

	// Params carries strategy-specific parameters.
	Params map[string]any `json:"params,omitempty"`
}

// CacheKey builds the composite cache key for the request.
func (r Request) CacheKey() (string, error) {
	return cache.Key(r.ToolID, r.Query, r.Location, r.Radius, r.Params)
}

// Meta returns the telemetry identity for the request.
func (r Request) Meta() observe.ToolMeta {
	return observe.ToolMeta{
		ID:       r.ToolID,
		Name:     r.ToolID,
		Category: "analysis",
	}
}

// Result is the uniform outcome of a tool invocation. It is what gets
// cached, so it must round-trip through JSON.
//
// A fallback result carries Success=false and Fallback=true: the upstream
// failed but the caller still gets a well-formed value instead of an
// error.
type Result struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     string          `json:"error,omitempty"`
	Fallback  bool            `json:"fallback,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewResult wraps a payload in a successful Result.
func NewResult(payload any) (Result, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Result{}, err
	}
	return Result{Success: true, Data: data, Timestamp: time.Now().UTC()}, nil
}

// FallbackResult builds the degraded result for a failed upstream call.
func FallbackResult(cause error) Result {
	r := Result{Fallback: true, Timestamp: time.Now().UTC()}
	if cause != nil {
		r.Error = cause.Error()
	}
	return r
}

func encodeResult(r Result) ([]byte, error) {
	return json.Marshal(r)
}

func decodeResult(data []byte) (Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return Result{}, err
	}
	return r, nil
}

// Strategy is one upstream analysis capability.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Execute must honor cancellation/deadlines.
// - Errors: a *ConfigError marks the strategy unrunnable as configured;
//   any other error is treated as a recoverable upstream failure.
type Strategy interface {
	// ID returns the stable strategy identifier used in cache keys.
	ID() string

	// CacheTTL returns the TTL override for cached results.
	// Zero means the cache tier's default applies.
	CacheTTL() time.Duration

	// Execute performs the upstream call.
	Execute(ctx context.Context, req Request) (Result, error)
}
