package cache

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jonwraymond/mapops/observe"
)

// HighWaterUtilization is the per-tier fill ratio above which the health
// report degrades to warning.
const HighWaterUtilization = 0.9

// CriticalUtilization is the fill ratio above which a tier is effectively
// full and evicting on every write.
const CriticalUtilization = 0.98

// ReportStatus is the overall status of a cache health report.
type ReportStatus string

const (
	StatusOK       ReportStatus = "ok"
	StatusWarning  ReportStatus = "warning"
	StatusCritical ReportStatus = "critical"
)

// TierStats describes one tier's current utilization.
type TierStats struct {
	Entries     int           `json:"entries"`
	MaxEntries  int           `json:"max_entries"`
	Utilization float64       `json:"utilization"`
	AvgAge      time.Duration `json:"avg_age"`
	OldestAge   time.Duration `json:"oldest_age"`
	TTL         time.Duration `json:"ttl"`
}

// Report is the outcome of a cache health check.
type Report struct {
	Status          ReportStatus       `json:"status"`
	Issues          []string           `json:"issues,omitempty"`
	Recommendations []string           `json:"recommendations,omitempty"`
	Tiers           map[Tier]TierStats `json:"tiers"`
}

// Config configures a Manager.
type Config struct {
	// Policies are the per-tier policies. Missing tiers fall back to
	// DefaultPolicies.
	Policies map[Tier]TierPolicy

	// NewStore builds the backing store for one tier. Default: NewMemoryStore.
	NewStore func(maxEntries int) Store

	// Logger receives best-effort warnings for swallowed store errors.
	Logger observe.Logger
}

// Manager is a tiered key/value cache with TTL expiry, bounded eviction,
// bulk invalidation, and diagnostics.
//
// All reads and writes are best-effort: a store failure is logged and
// treated as a miss or no-op, it never blocks or fails the caller's
// primary flow.
type Manager struct {
	tiers  map[Tier]*tierState
	logger observe.Logger
}

type tierState struct {
	store  Store
	policy TierPolicy
}

// NewManager creates a Manager with one store per tier.
func NewManager(cfg Config) *Manager {
	policies := DefaultPolicies()
	for t, p := range cfg.Policies {
		policies[t] = p
	}

	newStore := cfg.NewStore
	if newStore == nil {
		newStore = func(maxEntries int) Store { return NewMemoryStore(maxEntries) }
	}

	logger := cfg.Logger
	if logger == nil {
		logger = observe.Nop()
	}

	tiers := make(map[Tier]*tierState, len(policies))
	for _, t := range Tiers() {
		p := policies[t]
		tiers[t] = &tierState{store: newStore(p.MaxEntries), policy: p}
	}

	return &Manager{tiers: tiers, logger: logger}
}

// Policy returns the policy in effect for a tier.
func (m *Manager) Policy(tier Tier) TierPolicy {
	if ts, ok := m.tiers[tier]; ok {
		return ts.policy
	}
	return TierPolicy{}
}

// Get retrieves an entry from a tier. Never errors; unknown tiers, invalid
// keys, and store failures all read as a miss.
func (m *Manager) Get(ctx context.Context, tier Tier, key string) (Entry, bool) {
	ts, ok := m.tiers[tier]
	if !ok {
		m.logger.Warn(ctx, "cache read on unknown tier", observe.Field{Key: "tier", Value: string(tier)})
		return Entry{}, false
	}
	if err := ValidateKey(key); err != nil {
		return Entry{}, false
	}

	entry, ok := ts.store.Get(ctx, key)
	if !ok {
		return Entry{}, false
	}
	entry.Tier = tier
	return entry, true
}

// Set stores a value in a tier using the tier's default TTL.
func (m *Manager) Set(ctx context.Context, tier Tier, key string, value []byte) {
	m.SetTTL(ctx, tier, key, value, 0)
}

// SetTTL stores a value with a TTL override, clamped by the tier policy.
// Write failures are swallowed and logged; caching is strictly best-effort.
func (m *Manager) SetTTL(ctx context.Context, tier Tier, key string, value []byte, ttl time.Duration) {
	ts, ok := m.tiers[tier]
	if !ok {
		m.logger.Warn(ctx, "cache write on unknown tier", observe.Field{Key: "tier", Value: string(tier)})
		return
	}
	if err := ValidateKey(key); err != nil {
		m.logger.Warn(ctx, "cache write with invalid key", observe.Field{Key: "error", Value: err.Error()})
		return
	}

	effective := ts.policy.EffectiveTTL(ttl)
	if effective <= 0 {
		return
	}
	if err := ts.store.SetWithExpiry(ctx, key, value, effective); err != nil {
		m.logger.Warn(ctx, "cache write failed",
			observe.Field{Key: "tier", Value: string(tier)},
			observe.Field{Key: "error", Value: err.Error()},
		)
	}
}

// Delete removes a single key from a tier.
func (m *Manager) Delete(ctx context.Context, tier Tier, key string) {
	ts, ok := m.tiers[tier]
	if !ok {
		return
	}
	if err := ts.store.Delete(ctx, key); err != nil {
		m.logger.Warn(ctx, "cache delete failed",
			observe.Field{Key: "tier", Value: string(tier)},
			observe.Field{Key: "error", Value: err.Error()},
		)
	}
}

// InvalidateLocation removes every entry across all tiers whose key's
// location component matches the descriptor. Returns the count removed.
// Tiers whose store cannot enumerate keys are skipped with a warning.
func (m *Manager) InvalidateLocation(ctx context.Context, location string) int {
	removed := 0
	for _, tier := range Tiers() {
		ts := m.tiers[tier]
		scanner, ok := ts.store.(Scanner)
		if !ok {
			m.logger.Warn(ctx, "store does not support key enumeration, skipping location invalidation",
				observe.Field{Key: "tier", Value: string(tier)})
			continue
		}
		keys, err := scanner.Keys(ctx)
		if err != nil {
			m.logger.Warn(ctx, "key enumeration failed",
				observe.Field{Key: "tier", Value: string(tier)},
				observe.Field{Key: "error", Value: err.Error()},
			)
			continue
		}
		for _, key := range keys {
			if !MatchesLocation(key, location) {
				continue
			}
			if err := ts.store.Delete(ctx, key); err == nil {
				removed++
			}
		}
	}
	return removed
}

// InvalidateAll clears every tier. Returns the count removed.
func (m *Manager) InvalidateAll(ctx context.Context) int {
	removed := 0
	for _, tier := range Tiers() {
		ts := m.tiers[tier]
		scanner, ok := ts.store.(Scanner)
		if !ok {
			continue
		}
		keys, err := scanner.Keys(ctx)
		if err != nil {
			continue
		}
		for _, key := range keys {
			if err := ts.store.Delete(ctx, key); err == nil {
				removed++
			}
		}
	}
	return removed
}

// Stats reports per-tier utilization. Tiers whose store cannot report
// stats get zero-valued entries.
func (m *Manager) Stats(ctx context.Context) map[Tier]TierStats {
	out := make(map[Tier]TierStats, len(m.tiers))
	for _, tier := range Tiers() {
		ts := m.tiers[tier]
		stats := TierStats{
			MaxEntries: ts.policy.MaxEntries,
			TTL:        ts.policy.TTL,
		}
		if inspector, ok := ts.store.(Inspector); ok {
			if ss, err := inspector.Stats(ctx); err == nil {
				stats.Entries = ss.Entries
				stats.AvgAge = ss.AvgAge
				stats.OldestAge = ss.OldestAge
				if ts.policy.MaxEntries > 0 {
					stats.Utilization = float64(ss.Entries) / float64(ts.policy.MaxEntries)
				}
			}
		}
		out[tier] = stats
	}
	return out
}

// HealthCheck inspects per-tier utilization and entry age.
//
// A tier above the high-water mark yields a warning with a recommendation
// to clear that tier; a tier that is effectively full, or a store that
// cannot be inspected, yields critical.
func (m *Manager) HealthCheck(ctx context.Context) Report {
	report := Report{
		Status: StatusOK,
		Tiers:  m.Stats(ctx),
	}

	tiers := make([]Tier, 0, len(report.Tiers))
	for t := range report.Tiers {
		tiers = append(tiers, t)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i] < tiers[j] })

	for _, tier := range tiers {
		ts := m.tiers[tier]
		stats := report.Tiers[tier]

		if _, ok := ts.store.(Inspector); !ok {
			report.Status = StatusCritical
			report.Issues = append(report.Issues,
				fmt.Sprintf("tier %q store does not expose utilization", tier))
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("use a store with stats support for tier %q", tier))
			continue
		}

		switch {
		case stats.Utilization >= CriticalUtilization:
			report.Status = StatusCritical
			report.Issues = append(report.Issues,
				fmt.Sprintf("tier %q at %.0f%% capacity, evicting on every write", tier, stats.Utilization*100))
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("clear the %q tier or raise its entry bound", tier))
		case stats.Utilization >= HighWaterUtilization:
			if report.Status == StatusOK {
				report.Status = StatusWarning
			}
			report.Issues = append(report.Issues,
				fmt.Sprintf("tier %q at %.0f%% capacity", tier, stats.Utilization*100))
			report.Recommendations = append(report.Recommendations,
				fmt.Sprintf("clear the %q tier to free space", tier))
		}

		if stats.TTL > 0 && stats.AvgAge > stats.TTL/2 && stats.Entries > 0 {
			report.Issues = append(report.Issues,
				fmt.Sprintf("tier %q average entry age %s exceeds half its TTL", tier, stats.AvgAge.Round(time.Second)))
		}
	}

	return report
}
