package observe

import (
	"context"
	"time"
)

// ExecuteFunc is the signature for tool execution functions.
// This is the standard function signature that Middleware wraps.
type ExecuteFunc func(ctx context.Context, tool ToolMeta, input any) (any, error)

// Middleware wraps tool execution with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: Wrap() returns a thread-safe ExecuteFunc.
//   - Context: Propagates context through tracing spans.
//   - Errors: Errors from wrapped function are recorded and propagated unchanged.
//   - Ownership: Input/output values are passed through without modification.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps an ExecuteFunc with tracing, metrics, and logging.
func (m *Middleware) Wrap(fn ExecuteFunc) ExecuteFunc {
	return func(ctx context.Context, tool ToolMeta, input any) (any, error) {
		ctx, span := m.tracer.StartSpan(ctx, tool)
		start := time.Now()

		result, err := fn(ctx, tool, input)
		duration := time.Since(start)

		m.tracer.EndSpan(span, err)
		m.metrics.RecordExecution(ctx, tool, duration, err)

		toolLogger := m.logger.WithTool(tool)
		fields := []Field{
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}

		if err != nil {
			fields = append(fields, Field{Key: "error", Value: err.Error()})
			toolLogger.Error(ctx, "tool execution failed", fields...)
		} else {
			toolLogger.Info(ctx, "tool execution completed", fields...)
		}

		return result, err
	}
}

// OnCacheLookup records a cache lookup outcome for a tool request.
func (m *Middleware) OnCacheLookup(ctx context.Context, tool ToolMeta, hit bool) {
	m.metrics.RecordCacheLookup(ctx, tool, hit)
	if hit {
		m.logger.WithTool(tool).Debug(ctx, "cache hit")
	} else {
		m.logger.WithTool(tool).Debug(ctx, "cache miss")
	}
}

// OnFallback records a degraded fallback result for a tool request.
func (m *Middleware) OnFallback(ctx context.Context, tool ToolMeta, cause error) {
	m.metrics.RecordFallback(ctx, tool)
	fields := []Field{}
	if cause != nil {
		fields = append(fields, Field{Key: "error", Value: cause.Error()})
	}
	m.logger.WithTool(tool).Warn(ctx, "upstream failed, returning fallback result", fields...)
}

// MiddlewareFromObserver creates a Middleware from an Observer.
// This is a convenience function for common use cases.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(tracer, metrics, obs.Logger()), nil
}
