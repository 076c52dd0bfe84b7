// Package metrics provides durable, append-only time-series storage for
// derived queue metrics, with retention-bounded history and bucketed
// aggregation.
package metrics
