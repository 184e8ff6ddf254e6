package auth

import (
	"context"
	"net/textproto"
)

type identityCtxKey struct{}
type headersCtxKey struct{}

// WithIdentity attaches an authenticated identity to ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFromContext returns the identity attached by WithIdentity,
// or nil when the request never passed through authentication.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityCtxKey{}).(*Identity)
	return id
}

// PrincipalFromContext returns the authenticated principal, or "" for
// an unauthenticated context. Handy for audit log fields.
func PrincipalFromContext(ctx context.Context) string {
	if id := IdentityFromContext(ctx); id != nil {
		return id.Principal
	}
	return ""
}

// WithHeaders attaches request headers to ctx so non-HTTP callers can
// still hand credentials to an authenticator.
func WithHeaders(ctx context.Context, headers map[string][]string) context.Context {
	return context.WithValue(ctx, headersCtxKey{}, headers)
}

// HeadersFromContext returns the headers attached by WithHeaders.
func HeadersFromContext(ctx context.Context) map[string][]string {
	h, _ := ctx.Value(headersCtxKey{}).(map[string][]string)
	return h
}

// GetHeader returns the first value of a header attached to ctx. Both
// the literal key and its canonical MIME form are tried, so hand-built
// maps and http.Header values behave the same.
func GetHeader(ctx context.Context, key string) string {
	return firstHeader(HeadersFromContext(ctx), key)
}

func firstHeader(headers map[string][]string, key string) string {
	if len(headers) == 0 {
		return ""
	}
	for _, k := range []string{key, textproto.CanonicalMIMEHeaderKey(key)} {
		if values := headers[k]; len(values) > 0 {
			return values[0]
		}
	}
	return ""
}
