package tool

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonwraymond/mapops/secret"
)

// maxResponseBytes bounds how much of an upstream body is read.
const maxResponseBytes = 4 << 20

// SearchConfig configures a SearchStrategy.
type SearchConfig struct {
	// Endpoint is the search proxy URL. Required.
	Endpoint string

	// APIKey is the provider API key. Supports ${VAR} expansion and
	// secretref resolution via Secrets.
	APIKey string

	// Engine selects the upstream search engine.
	// Default: "google"
	Engine string

	// TTL overrides the cached-result TTL.
	// Default: 24 hours
	TTL time.Duration

	// HTTPClient is the client for upstream calls.
	// Default: http.DefaultClient
	HTTPClient *http.Client

	// Secrets resolves the API key. Optional; a nil resolver still
	// performs strict environment expansion.
	Secrets *secret.Resolver
}

// SearchStrategy queries a hosted location-aware search proxy.
//
// Results for a given query/location/radius are stable enough to cache
// for a full day, so the strategy carries a 24h TTL override.
type SearchStrategy struct {
	config SearchConfig
}

var _ Strategy = (*SearchStrategy)(nil)

// NewSearchStrategy creates a search strategy.
func NewSearchStrategy(config SearchConfig) *SearchStrategy {
	if config.Engine == "" {
		config.Engine = "google"
	}
	if config.TTL <= 0 {
		config.TTL = 24 * time.Hour
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	return &SearchStrategy{config: config}
}

// ID implements Strategy. The engine is part of the identifier so that
// results from different engines never share a cache entry.
func (s *SearchStrategy) ID() string { return "search:" + s.config.Engine }

// CacheTTL implements Strategy.
func (s *SearchStrategy) CacheTTL() time.Duration { return s.config.TTL }

// Execute performs the upstream search. The API key is resolved and
// validated before any network traffic.
func (s *SearchStrategy) Execute(ctx context.Context, req Request) (Result, error) {
	apiKey, err := s.config.Secrets.ResolveValue(ctx, s.config.APIKey)
	if err != nil || strings.TrimSpace(apiKey) == "" {
		return Result{}, &ConfigError{Strategy: s.ID(), Setting: "api_key", Reason: "no API key configured"}
	}
	if s.config.Endpoint == "" {
		return Result{}, &ConfigError{Strategy: s.ID(), Setting: "endpoint", Reason: "no endpoint configured"}
	}

	query := url.Values{}
	query.Set("query", req.Query)
	query.Set("engine", s.config.Engine)
	if req.Location != "" {
		query.Set("location", req.Location)
	}
	if req.Radius != "" {
		query.Set("radius", req.Radius)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.Endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return Result{}, &UpstreamError{Strategy: s.ID(), Cause: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.config.HTTPClient.Do(httpReq)
	if err != nil {
		return Result{}, &UpstreamError{Strategy: s.ID(), Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &UpstreamError{Strategy: s.ID(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, &UpstreamError{Strategy: s.ID(), Cause: err}
	}

	return Result{Success: true, Data: rawPayload(body), Timestamp: time.Now().UTC()}, nil
}

// rawPayload wraps an upstream body as a JSON value, quoting it when the
// upstream did not return valid JSON.
func rawPayload(body []byte) json.RawMessage {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, err := json.Marshal(string(body))
	if err != nil {
		return json.RawMessage(`""`)
	}
	return json.RawMessage(quoted)
}
