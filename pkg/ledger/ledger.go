package ledger

import (
	"context"
	"time"

	"github.com/fotoserve/queuepulse/pkg/core"
)

// Query narrows a failure-record listing. Zero values mean unbounded.
type Query struct {
	QueueName string
	Since     time.Time
	Limit     int
}

// Store is the persistence contract for failure records.
type Store interface {
	Migrate(ctx context.Context) error

	// Record persists one failure. An empty ID is assigned a fresh UUID and
	// a zero FailedAt is set to the current time. The error message and
	// stack trace are sanitized before storage.
	Record(ctx context.Context, entry *core.FailedJobRecord) error

	// List returns matching records ordered by FailedAt descending.
	List(ctx context.Context, q Query) ([]core.FailedJobRecord, error)

	// IncrementRetryCount atomically adds one to the retry count of every
	// record for the given job id. When no record matches it returns
	// core.ErrJobNotFound; callers treat that as a reportable no-op.
	IncrementRetryCount(ctx context.Context, jobID string) error

	// Delete removes one record by id. Missing ids return
	// core.ErrRecordNotFound.
	Delete(ctx context.Context, id string) error
}
