package cache

import "time"

// Tier is an independent cache namespace. Tiers never share key namespaces
// even when raw key strings collide.
type Tier string

const (
	// TierWorkflow holds coarse-grained, expensive end-to-end analysis runs.
	TierWorkflow Tier = "workflow"

	// TierTool holds single external tool call results.
	TierTool Tier = "tool"

	// TierModel holds raw AI-completion responses.
	TierModel Tier = "model"

	// TierStructured holds parsed/derived data, cheap to regenerate.
	TierStructured Tier = "structured"
)

// Tiers returns all tiers in a stable order.
func Tiers() []Tier {
	return []Tier{TierWorkflow, TierTool, TierModel, TierStructured}
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierWorkflow, TierTool, TierModel, TierStructured:
		return true
	}
	return false
}

// TierPolicy configures caching behavior for one tier.
type TierPolicy struct {
	// TTL is the time-to-live applied when no override is given.
	// If zero, caching is disabled for the tier.
	TTL time.Duration

	// MaxTTL is the maximum allowed TTL. Override TTLs are clamped to this.
	// If zero, no maximum is enforced.
	MaxTTL time.Duration

	// MaxEntries bounds the tier's store. When exceeded, the oldest entries
	// by creation time are evicted first. Zero means unbounded.
	MaxEntries int
}

// DefaultPolicies returns the default per-tier policies.
func DefaultPolicies() map[Tier]TierPolicy {
	return map[Tier]TierPolicy{
		TierWorkflow:   {TTL: 24 * time.Hour, MaxTTL: 48 * time.Hour, MaxEntries: 50},
		TierTool:       {TTL: 12 * time.Hour, MaxTTL: 24 * time.Hour, MaxEntries: 200},
		TierModel:      {TTL: 12 * time.Hour, MaxTTL: 24 * time.Hour, MaxEntries: 100},
		TierStructured: {TTL: time.Hour, MaxTTL: 6 * time.Hour, MaxEntries: 500},
	}
}

// ShouldCache returns true if caching is enabled by this policy.
func (p TierPolicy) ShouldCache() bool {
	return p.TTL > 0
}

// EffectiveTTL returns the TTL to use, applying defaults and clamping.
func (p TierPolicy) EffectiveTTL(override time.Duration) time.Duration {
	ttl := override
	if ttl <= 0 {
		ttl = p.TTL
	}
	if p.MaxTTL > 0 && ttl > p.MaxTTL {
		ttl = p.MaxTTL
	}
	return ttl
}
