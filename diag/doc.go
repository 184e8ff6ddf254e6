// Package diag exposes the operator console: authenticated HTTP
// endpoints under /debug/cache/ for inspecting, clearing, and warming
// the tiered response cache, plus a health.Checker adapter so the cache
// participates in the service's readiness probes.
package diag
