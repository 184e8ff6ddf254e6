package auth

import (
	"encoding/json"
	"net/http"
)

// WithAuthHeaders is HTTP middleware that extracts request headers
// into the context for use by authenticators.
func WithAuthHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithHeaders(r.Context(), r.Header)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// MiddlewareConfig configures the authenticating middleware.
type MiddlewareConfig struct {
	// Authenticators are tried in order; the first one that supports the
	// request decides the outcome.
	Authenticators []Authenticator

	// RequiredRole, when set, additionally requires the authenticated
	// identity to carry this role.
	RequiredRole string
}

// RequireAuth gates a handler behind the configured authenticators. A
// request with no usable credentials, or failed authentication, gets a
// 401 JSON body; a valid identity missing the required role gets 403.
// On success the identity is attached to the request context.
func RequireAuth(cfg MiddlewareConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := &AuthRequest{Headers: r.Header, Resource: r.URL.Path}

		for _, a := range cfg.Authenticators {
			if !a.Supports(r.Context(), req) {
				continue
			}

			result, err := a.Authenticate(r.Context(), req)
			if err != nil {
				writeAuthError(w, http.StatusInternalServerError, "authentication unavailable")
				return
			}
			if !result.Authenticated {
				writeAuthError(w, http.StatusUnauthorized, result.Error.Error())
				return
			}
			if result.Identity.IsExpired() {
				writeAuthError(w, http.StatusUnauthorized, ErrTokenExpired.Error())
				return
			}
			if cfg.RequiredRole != "" && !result.Identity.HasRole(cfg.RequiredRole) {
				writeAuthError(w, http.StatusForbidden, ErrForbidden.Error())
				return
			}

			ctx := WithIdentity(r.Context(), result.Identity)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		writeAuthError(w, http.StatusUnauthorized, ErrMissingCredentials.Error())
	})
}

func writeAuthError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
