package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, buf.String())
	}
	return entry
}

func TestLogger_StampsToolIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	toolLogger := logger.WithTool(ToolMeta{ID: "search:google", Name: "search", Category: "analysis"})
	toolLogger.Info(context.Background(), "upstream query complete")

	entry := lastEntry(t, &buf)
	if entry["tool.id"] != "search:google" {
		t.Errorf("tool.id = %v, want search:google", entry["tool.id"])
	}
	if entry["tool.name"] != "search" {
		t.Errorf("tool.name = %v, want search", entry["tool.name"])
	}
	if entry["tool.category"] != "analysis" {
		t.Errorf("tool.category = %v, want analysis", entry["tool.category"])
	}
	if entry["msg"] != "upstream query complete" {
		t.Errorf("msg = %v", entry["msg"])
	}
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name string
		log  func(Logger, context.Context)
		want string
	}{
		{"debug", func(l Logger, ctx context.Context) { l.Debug(ctx, "m") }, "debug"},
		{"info", func(l Logger, ctx context.Context) { l.Info(ctx, "m") }, "info"},
		{"warn", func(l Logger, ctx context.Context) { l.Warn(ctx, "m") }, "warn"},
		{"error", func(l Logger, ctx context.Context) { l.Error(ctx, "m") }, "error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter("debug", &buf)
			tt.log(logger, context.Background())

			entry := lastEntry(t, &buf)
			if entry["level"] != tt.want {
				t.Errorf("level = %v, want %s", entry["level"], tt.want)
			}
			if entry["timestamp"] == nil {
				t.Error("entry has no timestamp")
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	logger.Debug(ctx, "debug suppressed")
	logger.Info(ctx, "info suppressed")
	if buf.Len() != 0 {
		t.Fatalf("entries below warn were written: %s", buf.String())
	}

	logger.Warn(ctx, "cache nearing capacity")
	if !strings.Contains(buf.String(), "cache nearing capacity") {
		t.Error("warn entry was dropped")
	}
}

func TestLogger_FieldsSerialized(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "fallback returned",
		Field{Key: "duration_ms", Value: 50.5},
		Field{Key: "location", Value: "Whitney,TX"},
	)

	entry := lastEntry(t, &buf)
	if entry["duration_ms"] != 50.5 {
		t.Errorf("duration_ms = %v, want 50.5", entry["duration_ms"])
	}
	if entry["location"] != "Whitney,TX" {
		t.Errorf("location = %v, want Whitney,TX", entry["location"])
	}
}

func TestLogger_RedactsSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "resolved upstream credentials",
		Field{Key: "api_key", Value: "sk-live-12345"},
		Field{Key: "token", Value: "bearer-abcdef"},
		Field{Key: "engine", Value: "google"},
	)

	out := buf.String()
	if strings.Contains(out, "sk-live-12345") || strings.Contains(out, "bearer-abcdef") {
		t.Fatalf("secret values leaked into log output: %s", out)
	}

	entry := lastEntry(t, &buf)
	if entry["api_key"] != "[REDACTED]" {
		t.Errorf("api_key = %v, want [REDACTED]", entry["api_key"])
	}
	if entry["token"] != "[REDACTED]" {
		t.Errorf("token = %v, want [REDACTED]", entry["token"])
	}
	if entry["engine"] != "google" {
		t.Errorf("engine = %v, want passed through", entry["engine"])
	}
}

func TestLogger_WithToolDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter("info", &buf)

	logger.WithTool(ToolMeta{ID: "mapquery", Name: "mapquery"})
	logger.Info(context.Background(), "plain entry")

	entry := lastEntry(t, &buf)
	if _, ok := entry["tool.id"]; ok {
		t.Error("parent logger picked up tool attributes")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
