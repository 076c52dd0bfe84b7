package metrics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fotoserve/queuepulse/pkg/core"
)

// GormStore implements Store using GORM. Every operation runs as a single
// statement or transaction, so concurrent writers (a poll cycle and a manual
// bulk action) serialize at the database.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GORM-backed metric store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the metric table and its indexes.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&core.MetricRecord{})
}

// Append persists one metric record.
func (s *GormStore) Append(ctx context.Context, record *core.MetricRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&core.MetricRecord{}).
			Where("id = ?", record.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return core.ErrDuplicateMetricID
		}
		return tx.Create(record).Error
	})
}

// QueryRecords returns matching records, newest first.
func (s *GormStore) QueryRecords(ctx context.Context, q Query) ([]core.MetricRecord, error) {
	var records []core.MetricRecord

	tx := s.db.WithContext(ctx).
		Where("metric_type = ?", q.Type).
		Order("timestamp DESC")

	if q.QueueName != "" {
		tx = tx.Where("queue_name = ?", q.QueueName)
	}
	if !q.Since.IsZero() {
		tx = tx.Where("timestamp >= ?", q.Since)
	}
	if !q.Until.IsZero() {
		tx = tx.Where("timestamp <= ?", q.Until)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	return records, tx.Find(&records).Error
}

// Aggregate buckets matching records and returns per-bucket means,
// oldest bucket first.
func (s *GormStore) Aggregate(ctx context.Context, metricType core.MetricType, queueName string, since time.Time, bucketWidth time.Duration) ([]core.AggregateBucket, error) {
	if bucketWidth <= 0 {
		bucketWidth = time.Minute
	}

	var records []core.MetricRecord
	tx := s.db.WithContext(ctx).
		Where("metric_type = ?", metricType).
		Where("timestamp >= ?", since).
		Order("timestamp ASC")
	if queueName != "" {
		tx = tx.Where("queue_name = ?", queueName)
	}
	if err := tx.Find(&records).Error; err != nil {
		return nil, err
	}

	width := int64(bucketWidth.Seconds())
	type acc struct {
		sum   float64
		count int64
	}
	sums := make(map[int64]*acc)
	order := make([]int64, 0)

	for _, r := range records {
		bucket := (r.Timestamp.Unix() / width) * width
		a, ok := sums[bucket]
		if !ok {
			a = &acc{}
			sums[bucket] = a
			order = append(order, bucket)
		}
		a.sum += r.Value
		a.count++
	}

	buckets := make([]core.AggregateBucket, 0, len(order))
	for _, start := range order {
		a := sums[start]
		buckets = append(buckets, core.AggregateBucket{
			BucketStart: time.Unix(start, 0).UTC(),
			Mean:        a.sum / float64(a.count),
		})
	}
	return buckets, nil
}

// DeleteOlderThan removes records with timestamp before cutoff.
func (s *GormStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&core.MetricRecord{})
	return result.RowsAffected, result.Error
}

// SizeOnDisk reports the database footprint in bytes via SQLite pragmas.
func (s *GormStore) SizeOnDisk(ctx context.Context) (int64, error) {
	var pageCount, pageSize int64
	if err := s.db.WithContext(ctx).Raw("PRAGMA page_count").Scan(&pageCount).Error; err != nil {
		return 0, err
	}
	if err := s.db.WithContext(ctx).Raw("PRAGMA page_size").Scan(&pageSize).Error; err != nil {
		return 0, err
	}
	return pageCount * pageSize, nil
}

// Compact reclaims space freed by deletes.
func (s *GormStore) Compact(ctx context.Context) error {
	return s.db.WithContext(ctx).Exec("VACUUM").Error
}
