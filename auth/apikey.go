package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// APIKeyConfig configures the API key authenticator.
type APIKeyConfig struct {
	// HeaderName carries the key. Default: "X-API-Key".
	HeaderName string
}

// APIKeyInfo describes one registered operator key. Only the SHA-256
// hash of the key is ever stored.
type APIKeyInfo struct {
	ID        string
	KeyHash   string
	Principal string
	Roles     []string

	// ExpiresAt bounds the key's validity. Zero means no expiry.
	ExpiresAt time.Time
}

// APIKeyStore looks up registered keys by hash.
type APIKeyStore interface {
	// Lookup returns the key with the given hash, or nil when no such
	// key is registered.
	Lookup(ctx context.Context, keyHash string) (*APIKeyInfo, error)
}

// APIKeyAuthenticator validates operator API keys against a store.
type APIKeyAuthenticator struct {
	config APIKeyConfig
	store  APIKeyStore
}

var _ Authenticator = (*APIKeyAuthenticator)(nil)

// NewAPIKeyAuthenticator creates an API key authenticator.
func NewAPIKeyAuthenticator(config APIKeyConfig, store APIKeyStore) *APIKeyAuthenticator {
	if config.HeaderName == "" {
		config.HeaderName = "X-API-Key"
	}
	return &APIKeyAuthenticator{config: config, store: store}
}

// Name returns "api_key".
func (a *APIKeyAuthenticator) Name() string { return "api_key" }

// Supports reports whether the request carries the key header.
func (a *APIKeyAuthenticator) Supports(_ context.Context, req *AuthRequest) bool {
	return req.GetHeader(a.config.HeaderName) != ""
}

// Authenticate hashes the presented key and checks it against the store.
func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	key := strings.TrimSpace(req.GetHeader(a.config.HeaderName))
	if key == "" {
		return AuthFailure(ErrMissingCredentials, a.Name()), nil
	}

	info, err := a.store.Lookup(ctx, HashAPIKey(key))
	if err != nil {
		return nil, err
	}
	if info == nil {
		return AuthFailure(ErrInvalidCredentials, a.Name()), nil
	}
	if !info.ExpiresAt.IsZero() && time.Now().After(info.ExpiresAt) {
		return AuthFailure(ErrTokenExpired, a.Name()), nil
	}

	return AuthSuccess(&Identity{
		Principal: info.Principal,
		Roles:     info.Roles,
		Method:    AuthMethodAPIKey,
		ExpiresAt: info.ExpiresAt,
		Claims:    map[string]any{"key_id": info.ID},
	}), nil
}

// HashAPIKey returns the SHA-256 hex digest under which a key is stored.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// ConstantTimeCompare compares two strings without leaking where they
// diverge.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// MemoryAPIKeyStore holds registered keys in memory.
type MemoryAPIKeyStore struct {
	mu   sync.RWMutex
	keys []*APIKeyInfo
}

var _ APIKeyStore = (*MemoryAPIKeyStore)(nil)

// NewMemoryAPIKeyStore creates an empty store.
func NewMemoryAPIKeyStore() *MemoryAPIKeyStore {
	return &MemoryAPIKeyStore{}
}

// Add registers a key. A key with the same hash replaces the old entry.
func (s *MemoryAPIKeyStore) Add(info *APIKeyInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.keys {
		if existing.KeyHash == info.KeyHash {
			s.keys[i] = info
			return nil
		}
	}
	s.keys = append(s.keys, info)
	return nil
}

// Lookup scans the registered keys, comparing hashes in constant time.
func (s *MemoryAPIKeyStore) Lookup(_ context.Context, keyHash string) (*APIKeyInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var found *APIKeyInfo
	for _, info := range s.keys {
		if ConstantTimeCompare(info.KeyHash, keyHash) {
			found = info
		}
	}
	return found, nil
}

// NewStaticOperatorStore builds a store from plaintext operator keys,
// keyed by principal name. Every key gets the "operator" role. Meant
// for the debug console, where keys come from configuration.
func NewStaticOperatorStore(keys map[string]string) *MemoryAPIKeyStore {
	store := NewMemoryAPIKeyStore()
	for principal, key := range keys {
		_ = store.Add(&APIKeyInfo{
			ID:        principal,
			KeyHash:   HashAPIKey(key),
			Principal: principal,
			Roles:     []string{"operator"},
		})
	}
	return store
}
