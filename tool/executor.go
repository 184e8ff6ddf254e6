package tool

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/mapops/cache"
	"github.com/jonwraymond/mapops/observe"
	"github.com/jonwraymond/mapops/progress"
	"github.com/jonwraymond/mapops/resilience"
)

// Progress stage names reported by the executor.
const (
	StageStarting   = "starting"
	StageProcessing = "processing"
	StageComplete   = "complete"
)

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	// Strategy is the initial active strategy. May be swapped later via
	// SetStrategy.
	Strategy Strategy

	// Cache stores successful results at the tool tier.
	// Default: cache.NewManager with default policies.
	Cache *cache.Manager

	// Progress receives per-request progress updates.
	// Default: progress.Nop()
	Progress progress.Reporter

	// Resilience protects the upstream call. Optional; when nil the
	// strategy is called directly.
	Resilience *resilience.Executor

	// Observability records cache lookups, fallbacks, and execution
	// telemetry. Optional.
	Observability *observe.Middleware

	// Logger receives orchestration-level logs.
	// Default: observe.Nop()
	Logger observe.Logger
}

// Executor orchestrates tool invocations: cache lookup, coalescing of
// identical in-flight requests, resilient execution, and degradation to
// fallback results.
//
// Contract:
// - Concurrency: safe for concurrent use; identical keys share one
//   upstream call.
// - Errors: Run only errors for configuration problems. Upstream
//   failures return a fallback Result with a nil error.
// - Caching: best-effort; only successful results are written.
type Executor struct {
	mu       sync.RWMutex
	strategy Strategy

	cache      *cache.Manager
	progress   progress.Reporter
	resilience *resilience.Executor
	obs        *observe.Middleware
	logger     observe.Logger
	group      singleflight.Group
}

// NewExecutor creates an executor.
func NewExecutor(cfg ExecutorConfig) *Executor {
	if cfg.Cache == nil {
		cfg.Cache = cache.NewManager(cache.Config{})
	}
	if cfg.Progress == nil {
		cfg.Progress = progress.Nop()
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.Nop()
	}
	return &Executor{
		strategy:   cfg.Strategy,
		cache:      cfg.Cache,
		progress:   cfg.Progress,
		resilience: cfg.Resilience,
		obs:        cfg.Observability,
		logger:     cfg.Logger,
	}
}

// DefaultResilience builds the standard upstream protection chain:
// 30s timeout, three attempts with exponential backoff on retryable
// failures, and a circuit breaker.
func DefaultResilience() *resilience.Executor {
	return resilience.NewExecutor(
		resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			IsFailure: func(err error) bool { return err != nil && !IsConfigError(err) },
		})),
		resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{
			RetryIf: Retryable,
		})),
		resilience.WithTimeout(30*time.Second),
	)
}

// Strategy returns the active strategy.
func (e *Executor) Strategy() Strategy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.strategy
}

// SetStrategy swaps the active strategy. In-flight requests finish on
// the strategy they started with.
func (e *Executor) SetStrategy(s Strategy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.strategy = s
}

// Run executes one tool request.
//
// Cache hits return immediately with a 100% progress report. On a miss,
// concurrent requests for the same key are coalesced into a single
// upstream call. A successful call is cached at the tool tier with the
// strategy's TTL; a failed call returns a fallback Result and caches
// nothing. Only a *ConfigError comes back as an error.
func (e *Executor) Run(ctx context.Context, req Request) (Result, error) {
	strat := e.Strategy()
	if strat == nil {
		return Result{}, ErrNoStrategy
	}
	if req.ToolID == "" {
		req.ToolID = strat.ID()
	}

	key, err := req.CacheKey()
	if err != nil {
		return Result{}, &ConfigError{Strategy: strat.ID(), Setting: "request", Reason: err.Error()}
	}
	meta := req.Meta()

	if entry, ok := e.cache.Get(ctx, cache.TierTool, key); ok {
		if res, derr := decodeResult(entry.Value); derr == nil {
			e.onCacheLookup(ctx, meta, true)
			e.report(req, StageComplete, 100, "cached result", false)
			return res, nil
		}
		// Undecodable entry: drop it and treat as a miss.
		e.cache.Delete(ctx, cache.TierTool, key)
	}
	e.onCacheLookup(ctx, meta, false)
	e.report(req, StageStarting, 0, "starting "+req.ToolID, false)

	v, err, _ := e.group.Do(key, func() (any, error) {
		return e.execute(ctx, strat, req, key)
	})
	if err != nil {
		return Result{}, err
	}
	res := v.(Result)

	if res.Fallback {
		e.report(req, StageComplete, 100, "degraded result", true)
	} else {
		e.report(req, StageComplete, 100, "complete", false)
	}
	return res, nil
}

// execute is the coalesced upstream call. It returns an error only for
// configuration failures; upstream failures come back as a fallback
// Result.
func (e *Executor) execute(ctx context.Context, strat Strategy, req Request, key string) (Result, error) {
	e.report(req, StageProcessing, 50, "querying upstream", false)

	var res Result
	op := func(ctx context.Context) error {
		var err error
		res, err = strat.Execute(ctx, req)
		return err
	}

	var err error
	if e.resilience != nil {
		err = e.resilience.Execute(ctx, op)
	} else {
		err = op(ctx)
	}

	if err != nil {
		if IsConfigError(err) {
			return Result{}, err
		}
		e.onFallback(ctx, req.Meta(), err)
		return FallbackResult(err), nil
	}

	if encoded, merr := encodeResult(res); merr == nil {
		e.cache.SetTTL(ctx, cache.TierTool, key, encoded, strat.CacheTTL())
	} else {
		e.logger.Warn(ctx, "result not cacheable",
			observe.Field{Key: "tool", Value: req.ToolID},
			observe.Field{Key: "error", Value: merr.Error()},
		)
	}
	return res, nil
}

func (e *Executor) report(req Request, stage string, percent int, message string, fallback bool) {
	e.progress.Report(progress.Update{
		ToolID:    req.ToolID,
		Stage:     stage,
		Percent:   percent,
		Message:   message,
		Fallback:  fallback,
		Timestamp: time.Now().UTC(),
	})
}

func (e *Executor) onCacheLookup(ctx context.Context, meta observe.ToolMeta, hit bool) {
	if e.obs != nil {
		e.obs.OnCacheLookup(ctx, meta, hit)
	}
}

func (e *Executor) onFallback(ctx context.Context, meta observe.ToolMeta, cause error) {
	if e.obs != nil {
		e.obs.OnFallback(ctx, meta, cause)
		return
	}
	e.logger.Warn(ctx, "upstream failed, returning fallback result",
		observe.Field{Key: "tool", Value: meta.ID},
		observe.Field{Key: "error", Value: cause.Error()},
	)
}
