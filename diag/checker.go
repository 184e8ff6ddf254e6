package diag

import (
	"context"
	"time"

	"github.com/jonwraymond/mapops/cache"
	"github.com/jonwraymond/mapops/health"
)

// CacheChecker adapts a cache.Manager to the health.Checker interface.
type CacheChecker struct {
	manager *cache.Manager
}

// NewCacheChecker creates a checker reporting on the given manager.
func NewCacheChecker(manager *cache.Manager) *CacheChecker {
	return &CacheChecker{manager: manager}
}

// Name returns "cache".
func (c *CacheChecker) Name() string { return "cache" }

// Check translates the manager's self-report into a health result. Tier
// utilization lands in the details so the detailed endpoint can show
// per-tier numbers without a second stats call.
func (c *CacheChecker) Check(ctx context.Context) health.Result {
	start := time.Now()
	report := c.manager.HealthCheck(ctx)

	details := make(map[string]any, len(report.Tiers))
	for tier, stats := range report.Tiers {
		details[string(tier)] = map[string]any{
			"entries":     stats.Entries,
			"max_entries": stats.MaxEntries,
			"utilization": stats.Utilization,
			"avg_age":     stats.AvgAge.String(),
		}
	}

	var result health.Result
	switch report.Status {
	case cache.StatusCritical:
		result = health.Critical("cache tiers at capacity", nil)
	case cache.StatusWarning:
		result = health.Warning("cache tiers nearing capacity")
	default:
		result = health.OK("cache tiers within bounds")
	}

	return result.
		WithIssues(report.Issues...).
		WithRecommendations(report.Recommendations...).
		WithDetails(details).
		WithDuration(time.Since(start))
}

var _ health.Checker = (*CacheChecker)(nil)
