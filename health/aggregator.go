package health

import (
	"context"
	"sort"
	"sync"
	"time"
)

// AggregatorConfig configures how the aggregator runs its checkers.
type AggregatorConfig struct {
	// Timeout bounds one CheckAll sweep. Default: 10s.
	Timeout time.Duration

	// Parallel runs the checkers concurrently. Default: true.
	Parallel bool
}

// Aggregator fans one health probe out to every registered checker and
// folds the results into a single verdict.
type Aggregator struct {
	config AggregatorConfig

	mu       sync.RWMutex
	checkers map[string]Checker
	order    []string // registration order, for stable reporting
}

// NewAggregator creates an aggregator. Without an explicit config the
// sweep runs checkers in parallel under a 10 second deadline.
func NewAggregator(config ...AggregatorConfig) *Aggregator {
	cfg := AggregatorConfig{Timeout: 10 * time.Second, Parallel: true}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Timeout <= 0 {
			cfg.Timeout = 10 * time.Second
		}
	}
	return &Aggregator{config: cfg, checkers: make(map[string]Checker)}
}

// Register adds a checker under name, replacing any previous one.
func (a *Aggregator) Register(name string, checker Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.checkers[name]; !exists {
		a.order = append(a.order, name)
	}
	a.checkers[name] = checker
}

// Unregister removes the named checker.
func (a *Aggregator) Unregister(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.checkers[name]; !exists {
		return
	}
	delete(a.checkers, name)
	for i, n := range a.order {
		if n == name {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
}

// CheckerNames lists the registered checkers in registration order.
func (a *Aggregator) CheckerNames() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, len(a.order))
	copy(names, a.order)
	return names
}

// Check runs the single named checker.
func (a *Aggregator) Check(ctx context.Context, name string) (Result, error) {
	a.mu.RLock()
	checker, ok := a.checkers[name]
	a.mu.RUnlock()
	if !ok {
		return Result{}, ErrCheckerNotFound
	}
	return a.runChecker(ctx, checker), nil
}

// CheckAll sweeps every registered checker under the configured
// deadline and returns the results by checker name.
func (a *Aggregator) CheckAll(ctx context.Context) map[string]Result {
	a.mu.RLock()
	snapshot := make(map[string]Checker, len(a.checkers))
	for name, checker := range a.checkers {
		snapshot[name] = checker
	}
	a.mu.RUnlock()

	results := make(map[string]Result, len(snapshot))
	if len(snapshot) == 0 {
		return results
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	if !a.config.Parallel {
		for name, checker := range snapshot {
			results[name] = a.runChecker(ctx, checker)
		}
		return results
	}

	var wg sync.WaitGroup
	var resultsMu sync.Mutex
	for name, checker := range snapshot {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := a.runChecker(ctx, checker)
			resultsMu.Lock()
			results[name] = result
			resultsMu.Unlock()
		}()
	}
	wg.Wait()
	return results
}

// OverallStatus folds a result set into the worst status it contains.
func (a *Aggregator) OverallStatus(results map[string]Result) Status {
	overall := StatusOK
	for _, result := range results {
		overall = max(overall, result.Status)
	}
	return overall
}

// runChecker runs one checker in its own goroutine so a stuck check
// turns into a critical timeout result instead of stalling the sweep.
func (a *Aggregator) runChecker(ctx context.Context, checker Checker) Result {
	start := time.Now()
	done := make(chan Result, 1)

	go func() {
		result := checker.Check(ctx)
		result.Duration = time.Since(start)
		if result.Timestamp.IsZero() {
			result.Timestamp = start
		}
		done <- result
	}()

	select {
	case result := <-done:
		return result
	case <-ctx.Done():
		return Result{
			Status:    StatusCritical,
			Message:   "check timed out",
			Error:     ErrCheckTimeout,
			Duration:  time.Since(start),
			Timestamp: start,
		}
	}
}

// Checker exposes the whole aggregator as one Checker, so a service
// can nest this sweep inside another aggregator.
func (a *Aggregator) Checker() Checker {
	return &compositeChecker{agg: a}
}

type compositeChecker struct {
	agg *Aggregator
}

func (c *compositeChecker) Name() string { return "aggregate" }

func (c *compositeChecker) Check(ctx context.Context) Result {
	results := c.agg.CheckAll(ctx)
	status := c.agg.OverallStatus(results)

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	details := make(map[string]any, len(results))
	var issues, recs []string
	for _, name := range names {
		result := results[name]
		details[name] = map[string]any{
			"status":   result.Status.String(),
			"message":  result.Message,
			"duration": result.Duration.String(),
		}
		issues = append(issues, result.Issues...)
		recs = append(recs, result.Recommendations...)
	}

	message := "all checks passed"
	switch status {
	case StatusWarning:
		message = "some checks need attention"
	case StatusCritical:
		message = "some checks failed"
	}

	return Result{
		Status:          status,
		Message:         message,
		Issues:          issues,
		Recommendations: recs,
		Details:         details,
		Timestamp:       time.Now(),
	}
}
