package exporters

import (
	"context"
	"strings"
	"testing"
)

func TestNewTracingExporter(t *testing.T) {
	ctx := context.Background()

	t.Run("stdout", func(t *testing.T) {
		exp, err := NewTracingExporter(ctx, "stdout")
		if err != nil {
			t.Fatalf("NewTracingExporter: %v", err)
		}
		if exp == nil {
			t.Fatal("exporter is nil")
		}
	})

	t.Run("none discards spans", func(t *testing.T) {
		if _, err := NewTracingExporter(ctx, "none"); err != nil {
			t.Fatalf("NewTracingExporter: %v", err)
		}
	})

	t.Run("empty name behaves like none", func(t *testing.T) {
		if _, err := NewTracingExporter(ctx, ""); err != nil {
			t.Fatalf("NewTracingExporter: %v", err)
		}
	})

	t.Run("otlp requires an endpoint", func(t *testing.T) {
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
		t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
		_, err := NewTracingExporter(ctx, "otlp")
		if err == nil || !strings.Contains(err.Error(), "endpoint") {
			t.Errorf("err = %v, want an endpoint configuration error", err)
		}
	})

	t.Run("otlp with endpoint", func(t *testing.T) {
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4317")
		exp, err := NewTracingExporter(ctx, "otlp")
		if err != nil {
			t.Fatalf("NewTracingExporter: %v", err)
		}
		if exp == nil {
			t.Fatal("exporter is nil")
		}
	})

	t.Run("jaeger requires an endpoint", func(t *testing.T) {
		t.Setenv("OTEL_EXPORTER_JAEGER_ENDPOINT", "")
		_, err := NewTracingExporter(ctx, "jaeger")
		if err == nil || !strings.Contains(err.Error(), "endpoint") {
			t.Errorf("err = %v, want an endpoint configuration error", err)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := NewTracingExporter(ctx, "graphite")
		if err == nil || !strings.Contains(err.Error(), "unknown exporter") {
			t.Errorf("err = %v, want unknown exporter", err)
		}
	})
}

func TestNewMetricsReader(t *testing.T) {
	ctx := context.Background()

	t.Run("stdout", func(t *testing.T) {
		reader, err := NewMetricsReader(ctx, "stdout")
		if err != nil {
			t.Fatalf("NewMetricsReader: %v", err)
		}
		if reader == nil {
			t.Fatal("reader is nil")
		}
	})

	t.Run("prometheus", func(t *testing.T) {
		reader, err := NewMetricsReader(ctx, "prometheus")
		if err != nil {
			t.Fatalf("NewMetricsReader: %v", err)
		}
		if reader == nil {
			t.Fatal("reader is nil")
		}
	})

	t.Run("none discards metrics", func(t *testing.T) {
		if _, err := NewMetricsReader(ctx, "none"); err != nil {
			t.Fatalf("NewMetricsReader: %v", err)
		}
	})

	t.Run("otlp requires an endpoint", func(t *testing.T) {
		t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
		t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")
		_, err := NewMetricsReader(ctx, "otlp")
		if err == nil || !strings.Contains(err.Error(), "endpoint") {
			t.Errorf("err = %v, want an endpoint configuration error", err)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := NewMetricsReader(ctx, "statsd")
		if err == nil || !strings.Contains(err.Error(), "unknown metrics exporter") {
			t.Errorf("err = %v, want unknown metrics exporter", err)
		}
	})
}
