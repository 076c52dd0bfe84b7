package core

import "time"

// QueueSnapshot holds the per-status counts for one named queue as reported
// by the server for a single poll cycle. Snapshots are ephemeral: only
// derived values are persisted.
type QueueSnapshot struct {
	Name           string
	WaitingCount   int
	ActiveCount    int
	CompletedCount int
	FailedCount    int
	PausedCount    int
	DelayedCount   int
	IsPaused       bool
}

// RateSample is one point of the rolling rate history.
// Rate is jobs per minute and is never negative.
type RateSample struct {
	Timestamp time.Time
	Rate      float64
}

// ServerStats is the derived read model computed each poll cycle from the
// current snapshots plus the rate estimator state. It is not persisted as a
// row; selected fields are written to the metric store separately.
type ServerStats struct {
	ActiveWorkers int

	// JobsFailedToday sums the failed counts reported in the current
	// snapshots. The server reports lifetime failed totals, so despite the
	// name this is not windowed to the local day.
	JobsFailedToday int

	// JobsProcessedSinceStart counts only observed decreases in total
	// waiting depth since the estimator was created. Monotonic.
	JobsProcessedSinceStart int64

	// AverageProcessingRate is the mean of the most recent rate samples,
	// in jobs per minute.
	AverageProcessingRate float64

	Timestamp time.Time
}

// Status is the consolidated value published to subscribers after each poll
// cycle. It is always complete: either a connected status with fresh stats
// and snapshots, or a disconnected status carrying the fetch error message.
type Status struct {
	Connected bool
	Error     string
	Stats     ServerStats
	Snapshots []QueueSnapshot
	UpdatedAt time.Time
}
