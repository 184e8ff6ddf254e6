// Package observe provides observability primitives for analysis tool
// execution.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. Consumers wire the observer into the tool executor
// or the diagnostics console middleware.
package observe
