package core

import "time"

// MetricType names a persisted metric series.
type MetricType string

const (
	MetricActiveWorkers  MetricType = "active_workers"
	MetricProcessingRate MetricType = "processing_rate"
	MetricJobsFailed     MetricType = "jobs_failed"
	MetricJobsProcessed  MetricType = "jobs_processed"
	MetricQueueWaiting   MetricType = "queue_waiting"
)

// MetricRecord is one persisted time-series point. Records are immutable
// once written and are only removed in bulk by the retention sweep.
type MetricRecord struct {
	ID        string     `gorm:"primaryKey;size:36"`
	Timestamp time.Time  `gorm:"index:idx_metrics_type_ts;not null"`
	QueueName string     `gorm:"index;size:255"`
	Type      MetricType `gorm:"column:metric_type;index:idx_metrics_type_ts,priority:1;size:64;not null"`
	Value     float64    `gorm:"not null"`
	Metadata  string     `gorm:"type:text"`
}

// TableName sets the metric table name.
func (MetricRecord) TableName() string { return "metric_records" }

// AggregateBucket is one bucketed aggregation result: the bucket start time
// and the mean of all values whose timestamps fall inside the bucket.
type AggregateBucket struct {
	BucketStart time.Time
	Mean        float64
}
