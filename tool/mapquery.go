package tool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// MapQueryConfig configures a MapQueryStrategy.
type MapQueryConfig struct {
	// Endpoint is the Overpass-compatible query endpoint. Required.
	Endpoint string

	// Timeout is the server-side query timeout passed to the upstream.
	// Default: 25 seconds
	Timeout time.Duration

	// TTL overrides the cached-result TTL.
	// Default: 12 hours
	TTL time.Duration

	// HTTPClient is the client for upstream calls.
	// Default: http.DefaultClient
	HTTPClient *http.Client
}

// MapQueryStrategy queries map features around a named area through an
// Overpass-compatible endpoint.
type MapQueryStrategy struct {
	config MapQueryConfig
}

var _ Strategy = (*MapQueryStrategy)(nil)

// NewMapQueryStrategy creates a map-feature query strategy.
func NewMapQueryStrategy(config MapQueryConfig) *MapQueryStrategy {
	if config.Timeout <= 0 {
		config.Timeout = 25 * time.Second
	}
	if config.TTL <= 0 {
		config.TTL = 12 * time.Hour
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}
	return &MapQueryStrategy{config: config}
}

// ID implements Strategy.
func (m *MapQueryStrategy) ID() string { return "mapquery" }

// CacheTTL implements Strategy.
func (m *MapQueryStrategy) CacheTTL() time.Duration { return m.config.TTL }

// Execute runs a feature query scoped to the request's location. The
// feature selector comes from Params["feature"], e.g. power=plant.
func (m *MapQueryStrategy) Execute(ctx context.Context, req Request) (Result, error) {
	if m.config.Endpoint == "" {
		return Result{}, &ConfigError{Strategy: m.ID(), Setting: "endpoint", Reason: "no endpoint configured"}
	}
	feature, _ := req.Params["feature"].(string)
	if strings.TrimSpace(feature) == "" {
		return Result{}, &ConfigError{Strategy: m.ID(), Setting: "feature", Reason: "no feature selector in request params"}
	}

	query := m.buildQuery(req.Location, feature)
	form := url.Values{"data": {query}}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return Result{}, &UpstreamError{Strategy: m.ID(), Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.config.HTTPClient.Do(httpReq)
	if err != nil {
		return Result{}, &UpstreamError{Strategy: m.ID(), Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &UpstreamError{Strategy: m.ID(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, &UpstreamError{Strategy: m.ID(), Cause: err}
	}

	return Result{Success: true, Data: rawPayload(body), Timestamp: time.Now().UTC()}, nil
}

// queryMetachars are stripped from interpolated values so neither the
// area name nor the feature selector can break out of its filter.
var queryMetachars = strings.NewReplacer(`"`, "", "[", "", "]", "", ";", "")

func (m *MapQueryStrategy) buildQuery(location, feature string) string {
	area := strings.ReplaceAll(location, `"`, ``)
	selector := queryMetachars.Replace(feature)
	return fmt.Sprintf(
		"[out:json][timeout:%d];area[name=%q]->.a;node[%s](area.a);out body;",
		int(m.config.Timeout.Seconds()), area, selector,
	)
}
