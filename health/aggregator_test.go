package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func staticChecker(name string, result Result) Checker {
	return NewCheckerFunc(name, func(context.Context) Result { return result })
}

// TestAggregator_RegisterUnregister verifies registration order and removal.
func TestAggregator_RegisterUnregister(t *testing.T) {
	agg := NewAggregator()
	agg.Register("cache", staticChecker("cache", OK("ok")))
	agg.Register("memory", staticChecker("memory", OK("ok")))
	agg.Register("upstream", staticChecker("upstream", OK("ok")))

	names := agg.CheckerNames()
	if len(names) != 3 || names[0] != "cache" || names[2] != "upstream" {
		t.Errorf("CheckerNames = %v", names)
	}

	agg.Unregister("memory")
	names = agg.CheckerNames()
	if len(names) != 2 || names[1] != "upstream" {
		t.Errorf("CheckerNames after unregister = %v", names)
	}
}

// TestAggregator_CheckAll verifies parallel and sequential runs yield the
// same results.
func TestAggregator_CheckAll(t *testing.T) {
	for _, parallel := range []bool{true, false} {
		agg := NewAggregator(AggregatorConfig{Timeout: time.Second, Parallel: parallel})
		agg.Register("a", staticChecker("a", OK("fine")))
		agg.Register("b", staticChecker("b", Warning("pressure")))

		results := agg.CheckAll(context.Background())
		if len(results) != 2 {
			t.Fatalf("parallel=%v: got %d results", parallel, len(results))
		}
		if results["a"].Status != StatusOK || results["b"].Status != StatusWarning {
			t.Errorf("parallel=%v: results = %+v", parallel, results)
		}
		if results["a"].Duration < 0 {
			t.Errorf("parallel=%v: missing duration", parallel)
		}
	}
}

// TestAggregator_OverallStatus verifies the fold takes the worst status.
func TestAggregator_OverallStatus(t *testing.T) {
	agg := NewAggregator()

	tests := []struct {
		name    string
		results map[string]Result
		want    Status
	}{
		{"empty", map[string]Result{}, StatusOK},
		{"all ok", map[string]Result{"a": OK(""), "b": OK("")}, StatusOK},
		{"one warning", map[string]Result{"a": OK(""), "b": Warning("")}, StatusWarning},
		{"one critical", map[string]Result{"a": Warning(""), "b": Critical("", nil)}, StatusCritical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := agg.OverallStatus(tt.results); got != tt.want {
				t.Errorf("OverallStatus = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestAggregator_CheckUnknown verifies the sentinel for missing checkers.
func TestAggregator_CheckUnknown(t *testing.T) {
	agg := NewAggregator()
	if _, err := agg.Check(context.Background(), "nope"); !errors.Is(err, ErrCheckerNotFound) {
		t.Errorf("err = %v, want ErrCheckerNotFound", err)
	}
}

// TestAggregator_Timeout verifies a stuck check degrades to critical.
func TestAggregator_Timeout(t *testing.T) {
	agg := NewAggregator(AggregatorConfig{Timeout: 50 * time.Millisecond, Parallel: true})
	agg.Register("stuck", NewCheckerFunc("stuck", func(ctx context.Context) Result {
		<-ctx.Done()
		time.Sleep(100 * time.Millisecond)
		return OK("too late")
	}))

	results := agg.CheckAll(context.Background())
	res := results["stuck"]
	if res.Status != StatusCritical {
		t.Errorf("Status = %v, want critical", res.Status)
	}
	if !errors.Is(res.Error, ErrCheckTimeout) {
		t.Errorf("Error = %v, want ErrCheckTimeout", res.Error)
	}
}

// TestAggregator_Checker verifies the composite checker merges issues
// and recommendations from its sub-checks.
func TestAggregator_Checker(t *testing.T) {
	agg := NewAggregator()
	agg.Register("cache", staticChecker("cache",
		Warning("tier pressure").
			WithIssues("tool tier at 95% capacity").
			WithRecommendations("clear the tool tier")))
	agg.Register("memory", staticChecker("memory", OK("normal")))

	composite := agg.Checker()
	if composite.Name() != "aggregate" {
		t.Errorf("Name = %q", composite.Name())
	}

	res := composite.Check(context.Background())
	if res.Status != StatusWarning {
		t.Errorf("Status = %v, want warning", res.Status)
	}
	if len(res.Issues) != 1 || len(res.Recommendations) != 1 {
		t.Errorf("issues = %v, recommendations = %v", res.Issues, res.Recommendations)
	}
	if _, ok := res.Details["cache"]; !ok {
		t.Error("composite result missing sub-check details")
	}
}
