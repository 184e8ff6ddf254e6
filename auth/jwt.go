package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// JWTConfig configures the JWT bearer-token authenticator.
type JWTConfig struct {
	// Issuer, when set, must match the token's iss claim.
	Issuer string

	// Audience, when set, must appear in the token's aud claim.
	Audience string

	// HeaderName carries the token. Default: "Authorization".
	HeaderName string

	// TokenPrefix precedes the token in the header. Default: "Bearer ".
	TokenPrefix string

	// PrincipalClaim names the claim holding the operator principal.
	// Default: "sub".
	PrincipalClaim string

	// RolesClaim, when set, names the claim holding the role list.
	RolesClaim string
}

// KeyProvider hands out verification keys by key ID.
type KeyProvider interface {
	GetKey(ctx context.Context, keyID string) (any, error)
}

// StaticKeyProvider serves a single shared HMAC key regardless of kid.
type StaticKeyProvider struct {
	key []byte
}

var _ KeyProvider = (*StaticKeyProvider)(nil)

// NewStaticKeyProvider creates a provider for one shared key.
func NewStaticKeyProvider(key []byte) *StaticKeyProvider {
	return &StaticKeyProvider{key: key}
}

// GetKey returns the shared key.
func (p *StaticKeyProvider) GetKey(context.Context, string) (any, error) {
	return p.key, nil
}

// hmacMethods are the only signature algorithms accepted. Restricting
// the set closes the alg-substitution hole where an asymmetric public
// key is replayed as an HMAC secret.
var hmacMethods = []string{"HS256", "HS384", "HS512"}

// JWTAuthenticator validates HMAC-signed bearer tokens.
type JWTAuthenticator struct {
	config JWTConfig
	keys   KeyProvider
	parser *jwt.Parser
}

var _ Authenticator = (*JWTAuthenticator)(nil)

// NewJWTAuthenticator creates a JWT authenticator. Issuer and audience
// checks are enforced by the parser when configured.
func NewJWTAuthenticator(config JWTConfig, keys KeyProvider) *JWTAuthenticator {
	if config.HeaderName == "" {
		config.HeaderName = "Authorization"
	}
	if config.TokenPrefix == "" {
		config.TokenPrefix = "Bearer "
	}
	if config.PrincipalClaim == "" {
		config.PrincipalClaim = "sub"
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods(hmacMethods)}
	if config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(config.Issuer))
	}
	if config.Audience != "" {
		opts = append(opts, jwt.WithAudience(config.Audience))
	}

	return &JWTAuthenticator{
		config: config,
		keys:   keys,
		parser: jwt.NewParser(opts...),
	}
}

// Name returns "jwt".
func (a *JWTAuthenticator) Name() string { return "jwt" }

// Supports reports whether the request carries a bearer token.
func (a *JWTAuthenticator) Supports(_ context.Context, req *AuthRequest) bool {
	return strings.HasPrefix(req.GetHeader(a.config.HeaderName), a.config.TokenPrefix)
}

// Authenticate parses and validates the bearer token.
func (a *JWTAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	header := req.GetHeader(a.config.HeaderName)
	raw, found := strings.CutPrefix(header, a.config.TokenPrefix)
	if !found || strings.TrimSpace(raw) == "" {
		return AuthFailure(ErrMissingCredentials, a.Name()), nil
	}

	token, err := a.parser.Parse(strings.TrimSpace(raw), func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		return a.keys.GetKey(ctx, kid)
	})
	if err != nil || !token.Valid {
		return AuthFailure(classifyJWTError(err), a.Name()), nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return AuthFailure(ErrTokenMalformed, a.Name()), nil
	}

	return AuthSuccess(a.identityFromClaims(claims)), nil
}

// classifyJWTError maps parser errors onto the package sentinels.
func classifyJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	default:
		return ErrInvalidCredentials
	}
}

func (a *JWTAuthenticator) identityFromClaims(claims jwt.MapClaims) *Identity {
	identity := &Identity{
		Method: AuthMethodJWT,
		Claims: map[string]any(claims),
	}

	if principal, ok := claims[a.config.PrincipalClaim].(string); ok {
		identity.Principal = principal
	}
	if a.config.RolesClaim != "" {
		if raw, ok := claims[a.config.RolesClaim].([]any); ok {
			for _, r := range raw {
				if role, ok := r.(string); ok {
					identity.Roles = append(identity.Roles, role)
				}
			}
		}
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		identity.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		identity.IssuedAt = iat.Time
	}
	return identity
}
