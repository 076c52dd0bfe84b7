// Package rate derives a jobs-per-minute processing rate from successive
// queue-depth snapshots.
//
// A decrease in total waiting depth between two samples is the authoritative
// completion signal. When the queue did not shrink but workers are active,
// the estimator falls back to an active-worker throughput proxy, which is an
// approximation rather than a measured completion count. The produced rate
// is never negative, NaN, or infinite.
package rate
