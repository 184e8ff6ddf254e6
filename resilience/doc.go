// Package resilience protects calls to analysis upstreams (search
// engines, map services, model endpoints) with composable patterns:
// circuit breaking, retry with backoff, rate limiting, and timeouts.
//
// Each pattern works standalone. The Executor composes them into one
// chain, applied outside-in as rate limiter, circuit breaker, retry,
// timeout:
//
//	exec := resilience.NewExecutor(
//		resilience.WithCircuitBreaker(resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{})),
//		resilience.WithRetry(resilience.NewRetry(resilience.RetryConfig{})),
//		resilience.WithTimeout(30*time.Second),
//	)
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//		return client.Query(ctx, req)
//	})
//
// Rejections surface as the package sentinels ErrCircuitOpen,
// ErrRateLimitExceeded, and ErrTimeout so callers can decide whether
// to degrade to a fallback result.
package resilience
