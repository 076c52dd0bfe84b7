package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fotoserve/queuepulse/pkg/core"
	"github.com/fotoserve/queuepulse/pkg/security"
)

// GormStore implements Store using GORM.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GORM-backed failure ledger.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates the failure table and its indexes.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&core.FailedJobRecord{})
}

// Record persists one failure. Error text is sanitized before storage.
func (s *GormStore) Record(ctx context.Context, entry *core.FailedJobRecord) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.FailedAt.IsZero() {
		entry.FailedAt = time.Now()
	}
	entry.ErrorMessage = security.SanitizeErrorMessage(entry.ErrorMessage)
	entry.StackTrace = security.SanitizeErrorMessage(entry.StackTrace)

	return s.db.WithContext(ctx).Create(entry).Error
}

// List returns matching records, newest failures first.
func (s *GormStore) List(ctx context.Context, q Query) ([]core.FailedJobRecord, error) {
	var records []core.FailedJobRecord

	tx := s.db.WithContext(ctx).Order("failed_at DESC")
	if q.QueueName != "" {
		tx = tx.Where("queue_name = ?", q.QueueName)
	}
	if !q.Since.IsZero() {
		tx = tx.Where("failed_at >= ?", q.Since)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	return records, tx.Find(&records).Error
}

// IncrementRetryCount bumps the retry count for all records of a job.
func (s *GormStore) IncrementRetryCount(ctx context.Context, jobID string) error {
	result := s.db.WithContext(ctx).
		Model(&core.FailedJobRecord{}).
		Where("job_id = ?", jobID).
		Update("retry_count", gorm.Expr("retry_count + ?", 1))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return core.ErrJobNotFound
	}
	return nil
}

// Delete removes one record by id.
func (s *GormStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&core.FailedJobRecord{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return core.ErrRecordNotFound
	}
	return nil
}
