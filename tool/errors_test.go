package tool

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// TestRetryableStatus covers the transient-status classification.
func TestRetryableStatus(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{200, false},
		{400, false},
		{401, false},
		{404, false},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
	}
	for _, tt := range tests {
		if got := RetryableStatus(tt.code); got != tt.want {
			t.Errorf("RetryableStatus(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

// TestRetryable covers the retry decision across the error taxonomy.
func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"config error", &ConfigError{Strategy: "search", Setting: "api_key", Reason: "missing"}, false},
		{"wrapped config error", fmt.Errorf("run: %w", &ConfigError{Strategy: "s", Setting: "x", Reason: "y"}), false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"upstream 503", &UpstreamError{Strategy: "search", StatusCode: 503}, true},
		{"upstream 429", &UpstreamError{Strategy: "search", StatusCode: 429}, true},
		{"upstream 404", &UpstreamError{Strategy: "search", StatusCode: 404}, false},
		{"upstream transport", &UpstreamError{Strategy: "search", Cause: errors.New("connection refused")}, true},
		{"unknown error", errors.New("boom"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// TestUpstreamError_Unwrap verifies cause propagation for errors.Is.
func TestUpstreamError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := &UpstreamError{Strategy: "crawl", Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("UpstreamError should unwrap to its cause")
	}
}
