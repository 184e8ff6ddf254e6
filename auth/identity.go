package auth

import (
	"slices"
	"time"
)

// AuthMethod names the mechanism that produced an identity.
type AuthMethod string

const (
	AuthMethodJWT    AuthMethod = "jwt"
	AuthMethodAPIKey AuthMethod = "api_key"
)

// Identity is an authenticated operator.
type Identity struct {
	// Principal uniquely names the operator, e.g. "ops@example.com".
	Principal string

	// Roles granted to the operator.
	Roles []string

	// Method is the mechanism that authenticated the operator.
	Method AuthMethod

	// Claims carries the raw credential claims for audit logging.
	Claims map[string]any

	// ExpiresAt bounds the identity's validity. Zero means no expiry.
	ExpiresAt time.Time

	// IssuedAt records when the credential was minted, if known.
	IssuedAt time.Time
}

// HasRole reports whether the operator carries role.
func (id *Identity) HasRole(role string) bool {
	return slices.Contains(id.Roles, role)
}

// IsExpired reports whether the identity's validity window has passed.
func (id *Identity) IsExpired() bool {
	return !id.ExpiresAt.IsZero() && time.Now().After(id.ExpiresAt)
}
