package core

import "time"

// FailedJobRecord is one persisted job failure observed on the server.
// RetryCount only moves up, via an explicit increment operation. Rows are
// deleted only by an explicit user action, never by the retention sweep.
type FailedJobRecord struct {
	ID            string    `gorm:"primaryKey;size:36"`
	JobID         string    `gorm:"index;size:255;not null"`
	QueueName     string    `gorm:"index;size:255;not null"`
	AssetID       string    `gorm:"size:255"`
	AssetName     string    `gorm:"size:255"`
	ErrorMessage  string    `gorm:"type:text;not null"`
	StackTrace    string    `gorm:"type:text"`
	FailedAt      time.Time `gorm:"index;not null"`
	RetryCount    int       `gorm:"default:0"`
	FileType      string    `gorm:"size:64"`
	FileSize      int64     `gorm:"default:0"`
	MetadataJSON  string    `gorm:"type:text"`
	ThumbnailPath string    `gorm:"size:1024"`
}

// TableName sets the failure table name.
func (FailedJobRecord) TableName() string { return "failed_job_records" }
