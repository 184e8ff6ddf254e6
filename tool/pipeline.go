package tool

import (
	"context"
	"encoding/json"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/mapops/cache"
	"github.com/jonwraymond/mapops/observe"
	"github.com/jonwraymond/mapops/parse"
	"github.com/jonwraymond/mapops/resilience"
)

// analysisToolID is the key namespace for whole-pipeline outcomes, kept
// distinct from the per-strategy tool tier keys.
const analysisToolID = "analysis"

// Analysis is the end-to-end outcome of one location analysis.
type Analysis struct {
	Query     string       `json:"query"`
	Location  string       `json:"location"`
	Result    Result       `json:"result"`
	Nodes     []parse.Node `json:"nodes,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

// WarmResult reports one location/query pair of a cache warm run.
type WarmResult struct {
	Location string `json:"location"`
	Query    string `json:"query"`
	Nodes    int    `json:"nodes"`
	Fallback bool   `json:"fallback"`
	Err      error  `json:"-"`
}

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	// Executor runs the completion strategy. Required.
	Executor *Executor

	// Cache holds the workflow, model, and structured tiers.
	// Default: the executor's cache manager.
	Cache *cache.Manager

	// Parser extracts structured nodes from completion content.
	// Default: parse.New()
	Parser *parse.Parser

	// Limiter throttles warm runs to protect paid upstreams.
	// Default: 5 req/s token bucket that waits for capacity.
	Limiter *resilience.RateLimiter

	// WarmConcurrency bounds concurrent warm analyses.
	// Default: 3
	WarmConcurrency int

	// Logger receives pipeline-level logs.
	// Default: observe.Nop()
	Logger observe.Logger
}

// Pipeline orchestrates a full analysis: completion, parsing, and tiered
// caching of the raw response, the structured nodes, and the whole
// outcome.
type Pipeline struct {
	executor    *Executor
	cache       *cache.Manager
	parser      *parse.Parser
	limiter     *resilience.RateLimiter
	concurrency int
	logger      observe.Logger
}

// NewPipeline creates a pipeline.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.Cache == nil && cfg.Executor != nil {
		cfg.Cache = cfg.Executor.cache
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewManager(cache.Config{})
	}
	if cfg.Parser == nil {
		cfg.Parser = parse.New()
	}
	if cfg.Limiter == nil {
		cfg.Limiter = resilience.NewRateLimiter(resilience.RateLimiterConfig{
			Rate:        5,
			Burst:       5,
			WaitOnLimit: true,
			MaxWait:     30 * time.Second,
		})
	}
	if cfg.WarmConcurrency <= 0 {
		cfg.WarmConcurrency = 3
	}
	if cfg.Logger == nil {
		cfg.Logger = observe.Nop()
	}
	return &Pipeline{
		executor:    cfg.Executor,
		cache:       cfg.Cache,
		parser:      cfg.Parser,
		limiter:     cfg.Limiter,
		concurrency: cfg.WarmConcurrency,
		logger:      cfg.Logger,
	}
}

// Analyze runs one end-to-end analysis.
//
// The workflow tier short-circuits repeat analyses. On a miss the
// completion runs through the executor; the raw response lands in the
// model tier, the parsed nodes in the structured tier, and the whole
// outcome in the workflow tier. Degraded (fallback) outcomes are
// returned but never cached.
func (p *Pipeline) Analyze(ctx context.Context, req Request) (Analysis, error) {
	key, err := cache.Key(analysisToolID, req.Query, req.Location, req.Radius, req.Params)
	if err != nil {
		return Analysis{}, err
	}

	if entry, ok := p.cache.Get(ctx, cache.TierWorkflow, key); ok {
		var cached Analysis
		if derr := json.Unmarshal(entry.Value, &cached); derr == nil {
			return cached, nil
		}
		p.cache.Delete(ctx, cache.TierWorkflow, key)
	}

	res, err := p.executor.Run(ctx, req)
	if err != nil {
		return Analysis{}, err
	}

	analysis := Analysis{
		Query:     req.Query,
		Location:  req.Location,
		Result:    res,
		Timestamp: time.Now().UTC(),
	}

	if !res.Success {
		return analysis, nil
	}

	p.cache.Set(ctx, cache.TierModel, key, res.Data)

	completion, err := DecodeCompletion(res.Data)
	if err != nil {
		p.logger.Warn(ctx, "completion content not parseable",
			observe.Field{Key: "location", Value: req.Location},
			observe.Field{Key: "error", Value: err.Error()},
		)
		return analysis, nil
	}

	analysis.Nodes = p.parser.Parse(completion.Content)
	if data, merr := json.Marshal(analysis.Nodes); merr == nil {
		p.cache.Set(ctx, cache.TierStructured, key, data)
	}
	if data, merr := json.Marshal(analysis); merr == nil {
		p.cache.Set(ctx, cache.TierWorkflow, key, data)
	}
	return analysis, nil
}

// Warm pre-populates the cache for every location/query pair. Analyses
// run with bounded concurrency behind the rate limiter; each pair gets
// its own result and one failure never stops the rest.
func (p *Pipeline) Warm(ctx context.Context, locations, queries []string) []WarmResult {
	results := make([]WarmResult, len(locations)*len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, location := range locations {
		for j, query := range queries {
			idx := i*len(queries) + j
			location, query := location, query
			g.Go(func() error {
				wr := WarmResult{Location: location, Query: query}

				err := p.limiter.Execute(ctx, func(ctx context.Context) error {
					analysis, aerr := p.Analyze(ctx, Request{Query: query, Location: location})
					if aerr != nil {
						return aerr
					}
					wr.Nodes = len(analysis.Nodes)
					wr.Fallback = analysis.Result.Fallback
					return nil
				})
				wr.Err = err

				results[idx] = wr
				// Warm is best-effort per pair; never cancel the group.
				return nil
			})
		}
	}
	_ = g.Wait()

	return results
}
