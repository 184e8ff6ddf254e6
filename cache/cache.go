package cache

import (
	"context"
	"errors"
	"strings"
	"time"
)

// MaxKeyLength is the maximum allowed length for a cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilStore    = errors.New("cache: store is nil")
	ErrInvalidKey  = errors.New("cache: key is invalid")
	ErrKeyTooLong  = errors.New("cache: key exceeds max length")
	ErrUnknownTier = errors.New("cache: unknown tier")
)

// Entry is a single cached record. Entries are immutable once written; a
// Set for an existing key replaces the entry, it never mutates it in place.
type Entry struct {
	// Key is the composite key the entry is stored under.
	Key string

	// Value is the cached payload.
	Value []byte

	// CreatedAt is when the entry was written.
	CreatedAt time.Time

	// TTL is the time-to-live the entry was written with.
	TTL time.Duration

	// Tier is the tier the entry belongs to.
	Tier Tier
}

// Expired reports whether the entry is past its TTL at the given time.
func (e Entry) Expired(now time.Time) bool {
	if e.TTL <= 0 {
		return false
	}
	return now.Sub(e.CreatedAt) >= e.TTL
}

// Store is the minimal backing-store contract for one tier.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Get never errors; it returns (Entry{}, false) on miss or expiry.
// - Expiry: evaluated lazily on read, never by a background sweep.
//
// Any key/value store satisfying this contract (in-memory or hosted KV) is
// substitutable. Adapters over stores that do not track creation time may
// leave Entry.CreatedAt zero.
type Store interface {
	// Get retrieves a cached entry. Returns (Entry{}, false) on miss.
	Get(ctx context.Context, key string) (Entry, bool)

	// SetWithExpiry stores a value with the given TTL. TTL<=0 means no caching.
	SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a cached entry. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error
}

// Scanner is an optional Store extension for key enumeration. Stores that
// implement it support location-scoped and bulk invalidation.
type Scanner interface {
	Keys(ctx context.Context) ([]string, error)
}

// Inspector is an optional Store extension for utilization diagnostics.
type Inspector interface {
	Stats(ctx context.Context) (StoreStats, error)
}

// StoreStats describes the current contents of one tier's store.
type StoreStats struct {
	// Entries is the number of live entries.
	Entries int

	// AvgAge is the mean age of live entries.
	AvgAge time.Duration

	// OldestAge is the age of the oldest live entry.
	OldestAge time.Duration
}

// ValidateKey checks if a key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
