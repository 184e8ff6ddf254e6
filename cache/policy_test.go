package cache

import (
	"testing"
	"time"
)

// TestDefaultPolicies verifies the per-tier defaults.
func TestDefaultPolicies(t *testing.T) {
	policies := DefaultPolicies()

	tests := []struct {
		tier       Tier
		ttl        time.Duration
		maxEntries int
	}{
		{TierWorkflow, 24 * time.Hour, 50},
		{TierTool, 12 * time.Hour, 200},
		{TierModel, 12 * time.Hour, 100},
		{TierStructured, time.Hour, 500},
	}

	for _, tt := range tests {
		p, ok := policies[tt.tier]
		if !ok {
			t.Errorf("no policy for tier %q", tt.tier)
			continue
		}
		if p.TTL != tt.ttl {
			t.Errorf("tier %q TTL = %v, want %v", tt.tier, p.TTL, tt.ttl)
		}
		if p.MaxEntries != tt.maxEntries {
			t.Errorf("tier %q MaxEntries = %d, want %d", tt.tier, p.MaxEntries, tt.maxEntries)
		}
	}
}

// TestTierPolicy_EffectiveTTL verifies default fallback and MaxTTL clamping.
func TestTierPolicy_EffectiveTTL(t *testing.T) {
	p := TierPolicy{TTL: 12 * time.Hour, MaxTTL: 24 * time.Hour}

	tests := []struct {
		name     string
		override time.Duration
		want     time.Duration
	}{
		{"no override uses default", 0, 12 * time.Hour},
		{"negative override uses default", -1, 12 * time.Hour},
		{"override within max", 24 * time.Hour, 24 * time.Hour},
		{"override clamped to max", 48 * time.Hour, 24 * time.Hour},
		{"small override kept", time.Minute, time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.EffectiveTTL(tt.override); got != tt.want {
				t.Errorf("EffectiveTTL(%v) = %v, want %v", tt.override, got, tt.want)
			}
		})
	}
}

// TestTier_Valid verifies tier validation.
func TestTier_Valid(t *testing.T) {
	for _, tier := range Tiers() {
		if !tier.Valid() {
			t.Errorf("tier %q should be valid", tier)
		}
	}
	if Tier("bogus").Valid() {
		t.Error("unknown tier should be invalid")
	}
}
