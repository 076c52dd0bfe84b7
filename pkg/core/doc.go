// Package core provides the fundamental types for the queuepulse module.
//
// This package contains:
//   - QueueSnapshot and ServerStats, the per-cycle read models
//   - MetricRecord and FailedJobRecord data models with GORM annotations
//   - RateSample, one point of the rolling rate history
//   - Status, the consolidated value published to subscribers
//   - Shared error variables
//
// Most users should import the root package github.com/fotoserve/queuepulse
// instead of this package directly.
package core
