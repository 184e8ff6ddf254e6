package auth

import "context"

// Authenticator validates one kind of credential.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Errors: Authenticate returns (nil, error) only for internal
//     failures such as an unreachable key store. A rejected credential
//     is (*AuthResult, nil) with Authenticated false and Error set.
type Authenticator interface {
	// Name identifies the authenticator, e.g. "api_key".
	Name() string

	// Supports reports whether the request carries a credential this
	// authenticator understands. Dispatch only, no validation.
	Supports(ctx context.Context, req *AuthRequest) bool

	// Authenticate validates the credential.
	Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error)
}

// AuthRequest carries the credential material for one attempt.
type AuthRequest struct {
	// Headers holds the request headers (Authorization, X-API-Key).
	Headers map[string][]string

	// Resource names what the caller is trying to reach, for logging.
	Resource string
}

// GetHeader returns the first value of a header, trying the literal
// key and then its canonical MIME form.
func (r *AuthRequest) GetHeader(key string) string {
	return firstHeader(r.Headers, key)
}

// AuthResult is the outcome of one authentication attempt.
type AuthResult struct {
	// Authenticated is true when the credential was accepted.
	Authenticated bool

	// Identity is the operator the credential maps to. Set only on
	// success.
	Identity *Identity

	// Error explains the rejection. Set only on failure.
	Error error

	// Method is the name of the authenticator that decided.
	Method string
}

// AuthSuccess builds an accepted result for identity.
func AuthSuccess(identity *Identity) *AuthResult {
	return &AuthResult{
		Authenticated: true,
		Identity:      identity,
		Method:        string(identity.Method),
	}
}

// AuthFailure builds a rejected result.
func AuthFailure(err error, method string) *AuthResult {
	return &AuthResult{Error: err, Method: method}
}
