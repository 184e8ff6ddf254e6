package diag

import (
	"encoding/json"
	"net/http"

	"github.com/jonwraymond/mapops/auth"
	"github.com/jonwraymond/mapops/cache"
	"github.com/jonwraymond/mapops/observe"
	"github.com/jonwraymond/mapops/tool"
)

// ConsoleConfig configures the operator console.
type ConsoleConfig struct {
	// Cache is the manager the console inspects and mutates. Required.
	Cache *cache.Manager

	// Pipeline, when set, enables the warm endpoint.
	Pipeline *tool.Pipeline

	// Auth gates every console endpoint. When no authenticators are
	// configured the console serves unauthenticated; only do that behind
	// a trusted listener.
	Auth auth.MiddlewareConfig

	// Logger receives console activity logs.
	// Default: observe.Nop()
	Logger observe.Logger
}

// Console serves the /debug/cache/ operator endpoints.
type Console struct {
	cache    *cache.Manager
	pipeline *tool.Pipeline
	authCfg  auth.MiddlewareConfig
	logger   observe.Logger
}

// NewConsole creates a console.
func NewConsole(cfg ConsoleConfig) *Console {
	if cfg.Logger == nil {
		cfg.Logger = observe.Nop()
	}
	return &Console{
		cache:    cfg.Cache,
		pipeline: cfg.Pipeline,
		authCfg:  cfg.Auth,
		logger:   cfg.Logger,
	}
}

// RegisterHandlers mounts the console on mux. Every endpoint goes
// through the configured auth middleware.
func (c *Console) RegisterHandlers(mux *http.ServeMux) {
	mux.Handle("/debug/cache/stats", c.guard(http.HandlerFunc(c.handleStats)))
	mux.Handle("/debug/cache/health", c.guard(http.HandlerFunc(c.handleHealth)))
	mux.Handle("/debug/cache/clear", c.guard(http.HandlerFunc(c.handleClear)))
	mux.Handle("/debug/cache/clear-location", c.guard(http.HandlerFunc(c.handleClearLocation)))
	mux.Handle("/debug/cache/warm", c.guard(http.HandlerFunc(c.handleWarm)))
}

func (c *Console) guard(next http.Handler) http.Handler {
	if len(c.authCfg.Authenticators) == 0 {
		return next
	}
	return auth.RequireAuth(c.authCfg, next)
}

// handleStats reports per-tier utilization.
func (c *Console) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	writeJSON(w, http.StatusOK, c.cache.Stats(r.Context()))
}

// handleHealth reports the cache's own health assessment.
func (c *Console) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}
	writeJSON(w, http.StatusOK, c.cache.HealthCheck(r.Context()))
}

// clearResponse is the body returned by the clear endpoints.
type clearResponse struct {
	Removed  int    `json:"removed"`
	Location string `json:"location,omitempty"`
}

// handleClear drops every entry in every tier.
func (c *Console) handleClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	removed := c.cache.InvalidateAll(r.Context())
	c.logger.Info(r.Context(), "cache cleared",
		observe.Field{Key: "removed", Value: removed},
		observe.Field{Key: "principal", Value: auth.PrincipalFromContext(r.Context())},
	)
	writeJSON(w, http.StatusOK, clearResponse{Removed: removed})
}

// handleClearLocation drops all entries keyed to one location, across
// tiers. The location comes from the "location" query parameter.
func (c *Console) handleClearLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	location := r.URL.Query().Get("location")
	if location == "" {
		writeError(w, http.StatusBadRequest, "location parameter is required")
		return
	}

	removed := c.cache.InvalidateLocation(r.Context(), location)
	c.logger.Info(r.Context(), "cache location cleared",
		observe.Field{Key: "location", Value: location},
		observe.Field{Key: "removed", Value: removed},
		observe.Field{Key: "principal", Value: auth.PrincipalFromContext(r.Context())},
	)
	writeJSON(w, http.StatusOK, clearResponse{Removed: removed, Location: location})
}

// warmRequest is the body accepted by the warm endpoint.
type warmRequest struct {
	Locations []string `json:"locations"`
	Queries   []string `json:"queries"`
}

// warmEntry is one pair's outcome in the warm response.
type warmEntry struct {
	Location string `json:"location"`
	Query    string `json:"query"`
	Nodes    int    `json:"nodes"`
	Fallback bool   `json:"fallback"`
	Error    string `json:"error,omitempty"`
}

// handleWarm pre-populates the cache for the cross product of the
// requested locations and queries.
func (c *Console) handleWarm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if c.pipeline == nil {
		writeError(w, http.StatusNotImplemented, "warming is not configured")
		return
	}

	var req warmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Locations) == 0 || len(req.Queries) == 0 {
		writeError(w, http.StatusBadRequest, "locations and queries are required")
		return
	}

	results := c.pipeline.Warm(r.Context(), req.Locations, req.Queries)

	entries := make([]warmEntry, len(results))
	for i, res := range results {
		entries[i] = warmEntry{
			Location: res.Location,
			Query:    res.Query,
			Nodes:    res.Nodes,
			Fallback: res.Fallback,
		}
		if res.Err != nil {
			entries[i].Error = res.Err.Error()
		}
	}

	c.logger.Info(r.Context(), "cache warm completed",
		observe.Field{Key: "pairs", Value: len(entries)},
		observe.Field{Key: "principal", Value: auth.PrincipalFromContext(r.Context())},
	)
	writeJSON(w, http.StatusOK, map[string]any{"results": entries})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, map[string]string{"error": message})
}
