// Package tool provides pluggable analysis-tool strategies and the
// executor that orchestrates them: cache lookup, request coalescing,
// resilient upstream execution, progress reporting, and graceful
// degradation to fallback results.
//
// A Strategy encapsulates one upstream capability (search, crawl, map
// query, completion). The Executor is strategy-agnostic: it resolves a
// composite cache key from the request, serves hits from the tool cache
// tier, and on a miss runs the active strategy through a resilience
// chain. Upstream failures become fallback results instead of errors;
// only configuration problems surface as hard errors.
package tool
