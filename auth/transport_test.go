package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestRequireAuth covers the unauthenticated, forbidden, and success
// paths of the HTTP middleware.
func TestRequireAuth(t *testing.T) {
	store := NewStaticOperatorStore(map[string]string{"ops": "ops-key"})
	auths := []Authenticator{NewAPIKeyAuthenticator(APIKeyConfig{}, store)}

	t.Run("no credentials", func(t *testing.T) {
		mw := RequireAuth(MiddlewareConfig{Authenticators: auths}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not run")
		}))

		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/cache/stats", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		var body map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("body not JSON: %v", err)
		}
		if body["error"] == "" {
			t.Error("error message missing from body")
		}
	})

	t.Run("bad key", func(t *testing.T) {
		mw := RequireAuth(MiddlewareConfig{Authenticators: auths}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not run")
		}))

		req := httptest.NewRequest(http.MethodGet, "/debug/cache/stats", nil)
		req.Header.Set("X-API-Key", "wrong")
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("valid key", func(t *testing.T) {
		var seen *Identity
		mw := RequireAuth(MiddlewareConfig{Authenticators: auths}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = IdentityFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/debug/cache/stats", nil)
		req.Header.Set("X-API-Key", "ops-key")
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if seen == nil || seen.Principal != "ops" {
			t.Errorf("identity in handler context = %+v", seen)
		}
	})

	t.Run("missing required role", func(t *testing.T) {
		mw := RequireAuth(MiddlewareConfig{
			Authenticators: auths,
			RequiredRole:   "admin",
		}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not run")
		}))

		req := httptest.NewRequest(http.MethodPost, "/debug/cache/clear", nil)
		req.Header.Set("X-API-Key", "ops-key")
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("required role present", func(t *testing.T) {
		mw := RequireAuth(MiddlewareConfig{
			Authenticators: auths,
			RequiredRole:   "operator",
		}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodPost, "/debug/cache/clear", nil)
		req.Header.Set("X-API-Key", "ops-key")
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
	})
}

// TestWithAuthHeaders verifies header propagation into the context.
func TestWithAuthHeaders(t *testing.T) {
	var got string
	handler := WithAuthHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetHeader(r.Context(), "X-API-Key")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "from-header")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "from-header" {
		t.Errorf("GetHeader = %q", got)
	}
}
