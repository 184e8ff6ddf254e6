package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records execution metrics for tools.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordExecution records a tool execution with duration and error status.
	RecordExecution(ctx context.Context, meta ToolMeta, duration time.Duration, err error)

	// RecordCacheLookup records a cache lookup for a tool request.
	RecordCacheLookup(ctx context.Context, meta ToolMeta, hit bool)

	// RecordFallback records a degraded result returned after upstream failure.
	RecordFallback(ctx context.Context, meta ToolMeta)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter         metric.Meter
	totalCount    metric.Int64Counter
	errorCount    metric.Int64Counter
	fallbackCount metric.Int64Counter
	cacheLookups  metric.Int64Counter
	durationHist  metric.Float64Histogram
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"tool.exec.total",
		metric.WithDescription("Total number of tool executions"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"tool.exec.errors",
		metric.WithDescription("Total number of tool execution errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	fallbackCount, err := meter.Int64Counter(
		"tool.exec.fallbacks",
		metric.WithDescription("Total number of degraded fallback results"),
		metric.WithUnit("{result}"),
	)
	if err != nil {
		return nil, err
	}

	cacheLookups, err := meter.Int64Counter(
		"tool.cache.lookups",
		metric.WithDescription("Total number of cache lookups for tool requests"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"tool.exec.duration_ms",
		metric.WithDescription("Tool execution duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:         meter,
		totalCount:    totalCount,
		errorCount:    errorCount,
		fallbackCount: fallbackCount,
		cacheLookups:  cacheLookups,
		durationHist:  durationHist,
	}, nil
}

// RecordExecution records metrics for a tool execution.
func (m *metricsImpl) RecordExecution(ctx context.Context, meta ToolMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("tool.id", meta.ToolID()),
		attribute.String("tool.name", meta.Name),
	}
	if meta.Category != "" {
		attrs = append(attrs, attribute.String("tool.category", meta.Category))
	}
	opt := metric.WithAttributes(attrs...)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

// RecordCacheLookup records a cache lookup with its hit/miss outcome.
func (m *metricsImpl) RecordCacheLookup(ctx context.Context, meta ToolMeta, hit bool) {
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool.id", meta.ToolID()),
		attribute.Bool("cache.hit", hit),
	))
}

// RecordFallback records a degraded fallback result.
func (m *metricsImpl) RecordFallback(ctx context.Context, meta ToolMeta) {
	m.fallbackCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool.id", meta.ToolID()),
	))
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordExecution(ctx context.Context, meta ToolMeta, duration time.Duration, err error) {
}
func (m *noopMetrics) RecordCacheLookup(ctx context.Context, meta ToolMeta, hit bool) {}
func (m *noopMetrics) RecordFallback(ctx context.Context, meta ToolMeta)             {}
