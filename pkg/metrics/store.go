package metrics

import (
	"context"
	"time"

	"github.com/fotoserve/queuepulse/pkg/core"
)

// Query selects metric records. Type is required; the other fields narrow
// the result when set. Zero times mean unbounded.
type Query struct {
	Type      core.MetricType
	QueueName string
	Since     time.Time
	Until     time.Time
	Limit     int
}

// Store is the persistence contract for metric records. Records are
// immutable once appended; the only deletions are bulk retention sweeps.
type Store interface {
	Migrate(ctx context.Context) error

	// Append persists one record. An empty ID is assigned a fresh UUID and
	// a zero Timestamp is set to the current time. A duplicate ID is
	// rejected with core.ErrDuplicateMetricID.
	Append(ctx context.Context, record *core.MetricRecord) error

	// QueryRecords returns matching records ordered by timestamp descending.
	QueryRecords(ctx context.Context, q Query) ([]core.MetricRecord, error)

	// Aggregate buckets matching records since the given time and returns
	// the per-bucket mean, oldest bucket first. Bucket boundaries are
	// floor(unixTimestamp/bucketWidth)*bucketWidth; empty buckets are
	// omitted rather than zero-filled.
	Aggregate(ctx context.Context, metricType core.MetricType, queueName string, since time.Time, bucketWidth time.Duration) ([]core.AggregateBucket, error)

	// DeleteOlderThan removes all records with timestamp before cutoff and
	// reports how many rows were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// SizeOnDisk reports the storage footprint in bytes.
	SizeOnDisk(ctx context.Context) (int64, error)

	// Compact reclaims space freed by deletes. It has no logical effect.
	Compact(ctx context.Context) error
}
