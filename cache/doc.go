// Package cache provides tiered, TTL-bound caching for analysis tool results.
//
// It provides a minimal Store contract with an in-memory implementation,
// location-aware deterministic key derivation, per-tier TTL and size
// policies, and a Manager exposing bulk invalidation and utilization-based
// health reporting.
package cache
