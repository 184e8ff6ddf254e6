package diag

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jonwraymond/mapops/cache"
	"github.com/jonwraymond/mapops/health"
)

func TestCacheChecker_OK(t *testing.T) {
	m := cache.NewManager(cache.Config{})
	c := NewCacheChecker(m)

	if c.Name() != "cache" {
		t.Errorf("Name() = %q", c.Name())
	}

	result := c.Check(context.Background())
	if result.Status != health.StatusOK {
		t.Errorf("Status = %v, want ok (issues: %v)", result.Status, result.Issues)
	}
	if len(result.Details) == 0 {
		t.Error("details should carry per-tier stats")
	}
}

func TestCacheChecker_WarningCarriesIssues(t *testing.T) {
	m := cache.NewManager(cache.Config{
		Policies: map[cache.Tier]cache.TierPolicy{
			cache.TierTool: {TTL: time.Hour, MaxEntries: 20},
		},
	})
	ctx := context.Background()

	for i := 0; i < 19; i++ {
		key, err := cache.Key("search", fmt.Sprintf("q%d", i), "loc", "", nil)
		if err != nil {
			t.Fatal(err)
		}
		m.Set(ctx, cache.TierTool, key, []byte("v"))
	}

	result := NewCacheChecker(m).Check(ctx)
	if result.Status != health.StatusWarning {
		t.Fatalf("Status = %v, want warning", result.Status)
	}
	if len(result.Issues) == 0 {
		t.Error("warning result should carry issues")
	}
	if len(result.Recommendations) == 0 {
		t.Error("warning result should carry recommendations")
	}
}

func TestCacheChecker_Critical(t *testing.T) {
	m := cache.NewManager(cache.Config{
		Policies: map[cache.Tier]cache.TierPolicy{
			cache.TierStructured: {TTL: time.Hour, MaxEntries: 5},
		},
	})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		key, err := cache.Key("parse", fmt.Sprintf("q%d", i), "loc", "", nil)
		if err != nil {
			t.Fatal(err)
		}
		m.Set(ctx, cache.TierStructured, key, []byte("v"))
	}

	result := NewCacheChecker(m).Check(ctx)
	if result.Status != health.StatusCritical {
		t.Errorf("Status = %v, want critical", result.Status)
	}
}

func TestCacheChecker_WithAggregator(t *testing.T) {
	m := cache.NewManager(cache.Config{})
	checker := NewCacheChecker(m)
	agg := health.NewAggregator()
	agg.Register(checker.Name(), checker)

	results := agg.CheckAll(context.Background())
	if _, ok := results["cache"]; !ok {
		t.Fatalf("cache check missing from results: %v", results)
	}
	if agg.OverallStatus(results) != health.StatusOK {
		t.Errorf("overall = %v, want ok", agg.OverallStatus(results))
	}
}
