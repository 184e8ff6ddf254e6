package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestLivenessHandler verifies the probe is unconditional.
func TestLivenessHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("code = %d", rec.Code)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

// TestReadinessHandler verifies the status-to-probe mapping: warnings
// still ready, critical not.
func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name     string
		result   Result
		wantCode int
		wantBody string
	}{
		{"ok", OK("fine"), http.StatusOK, "OK"},
		{"warning", Warning("pressure"), http.StatusOK, "WARNING"},
		{"critical", Critical("down", ErrCheckFailed), http.StatusServiceUnavailable, "CRITICAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg := NewAggregator()
			agg.Register("c", staticChecker("c", tt.result))

			rec := httptest.NewRecorder()
			ReadinessHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

// TestDetailedHandler verifies the JSON body carries issues and
// recommendations per check.
func TestDetailedHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Register("cache", staticChecker("cache",
		Warning("tier pressure").
			WithIssues("tool tier at 95% capacity").
			WithRecommendations("clear the tool tier")))

	rec := httptest.NewRecorder()
	DetailedHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "warning" {
		t.Errorf("status = %q", resp.Status)
	}
	check := resp.Checks["cache"]
	if len(check.Issues) != 1 || len(check.Recommendations) != 1 {
		t.Errorf("check = %+v", check)
	}
}

// TestDetailedHandler_Critical verifies critical maps to 503.
func TestDetailedHandler_Critical(t *testing.T) {
	agg := NewAggregator()
	agg.Register("store", staticChecker("store", Critical("unreachable", ErrCheckFailed)))

	rec := httptest.NewRecorder()
	DetailedHandler(agg)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d, want 503", rec.Code)
	}
}

// TestSingleCheckHandler verifies per-component checks and the 404 path.
func TestSingleCheckHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Register("cache", staticChecker("cache", OK("fine")))

	rec := httptest.NewRecorder()
	SingleCheckHandler(agg, "cache")(rec, httptest.NewRequest(http.MethodGet, "/health/cache", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("code = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	SingleCheckHandler(agg, "ghost")(rec, httptest.NewRequest(http.MethodGet, "/health/ghost", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", rec.Code)
	}
}

// TestRegisterHandlers verifies all probe routes answer.
func TestRegisterHandlers(t *testing.T) {
	agg := NewAggregator()
	agg.Register("c", NewCheckerFunc("c", func(context.Context) Result { return OK("fine") }))

	mux := http.NewServeMux()
	RegisterHandlers(mux, agg)

	for _, path := range []string{"/healthz", "/readyz", "/health"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: code = %d", path, rec.Code)
		}
	}
}
