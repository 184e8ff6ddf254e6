// Package health provides health checking primitives for the analysis
// service: a Checker interface, an aggregator that folds many checks
// into one status, and HTTP probe handlers.
//
// Statuses follow the cache diagnostics taxonomy: ok, warning, critical.
// A warning means the component works but needs operator attention (for
// example a cache tier near its entry bound); critical means it is
// failing or about to.
//
//	agg := health.NewAggregator()
//	agg.Register("memory", health.NewMemoryChecker(health.MemoryCheckerConfig{}))
//	agg.Register("cache", cacheChecker)
//
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg)
package health
