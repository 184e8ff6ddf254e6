package health

import (
	"context"
	"fmt"
	"runtime"
)

// MemoryCheckerConfig bounds the process's heap allocation.
type MemoryCheckerConfig struct {
	// WarningThreshold is the allocation ratio, 0 to 1, at which the
	// check degrades to warning. Default: 0.8.
	WarningThreshold float64

	// CriticalThreshold is the ratio at which the check goes critical.
	// Default: 0.95.
	CriticalThreshold float64

	// MaxAlloc is the allocation bound in bytes. Zero means the
	// runtime's reserved memory is the bound.
	MaxAlloc uint64
}

// MemoryChecker grades heap usage against a configured bound. Response
// caches dominate this process's memory, so a hot memory check is the
// early signal to shed cache entries.
type MemoryChecker struct {
	config MemoryCheckerConfig
}

var _ Checker = (*MemoryChecker)(nil)

// NewMemoryChecker creates a memory checker, clamping nonsense
// thresholds back to the defaults.
func NewMemoryChecker(config MemoryCheckerConfig) *MemoryChecker {
	if config.WarningThreshold <= 0 || config.WarningThreshold >= 1 {
		config.WarningThreshold = 0.8
	}
	if config.CriticalThreshold <= 0 || config.CriticalThreshold >= 1 {
		config.CriticalThreshold = 0.95
	}
	if config.CriticalThreshold < config.WarningThreshold {
		config.CriticalThreshold = min(config.WarningThreshold+0.1, 0.99)
	}
	return &MemoryChecker{config: config}
}

// Name returns "memory".
func (m *MemoryChecker) Name() string { return "memory" }

// Check reads runtime memory stats and grades the allocation ratio.
func (m *MemoryChecker) Check(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return Critical("context cancelled", err)
	}

	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	bound := m.config.MaxAlloc
	if bound == 0 {
		bound = stats.Sys
	}
	if bound == 0 {
		return OK("memory stats unavailable").WithDetails(map[string]any{
			"alloc":  stats.Alloc,
			"sys":    stats.Sys,
			"num_gc": stats.NumGC,
		})
	}

	ratio := float64(stats.Alloc) / float64(bound)
	pct := ratio * 100

	details := map[string]any{
		"alloc_bytes":    stats.Alloc,
		"alloc_mb":       float64(stats.Alloc) / (1024 * 1024),
		"max_alloc":      bound,
		"usage_percent":  pct,
		"heap_alloc":     stats.HeapAlloc,
		"heap_in_use":    stats.HeapInuse,
		"heap_objects":   stats.HeapObjects,
		"gc_pause_total": stats.PauseTotalNs,
		"num_gc":         stats.NumGC,
		"goroutines":     runtime.NumGoroutine(),
	}

	switch {
	case ratio >= m.config.CriticalThreshold:
		return Critical(fmt.Sprintf("memory usage critical: %.1f%%", pct), ErrCheckFailed).
			WithDetails(details).
			WithIssues(fmt.Sprintf("allocation at %.1f%% of the configured bound", pct)).
			WithRecommendations("clear caches or raise the memory bound")
	case ratio >= m.config.WarningThreshold:
		return Warning(fmt.Sprintf("memory usage high: %.1f%%", pct)).
			WithDetails(details).
			WithIssues(fmt.Sprintf("allocation at %.1f%% of the configured bound", pct)).
			WithRecommendations("clear caches to free memory")
	default:
		return OK(fmt.Sprintf("memory usage normal: %.1f%%", pct)).WithDetails(details)
	}
}

// ForceGC triggers a garbage collection. Useful in tests that need
// accurate allocation stats.
func (m *MemoryChecker) ForceGC() {
	runtime.GC()
}
