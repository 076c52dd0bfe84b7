package control

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fotoserve/queuepulse/pkg/core"
	"github.com/fotoserve/queuepulse/pkg/fetch"
	"github.com/fotoserve/queuepulse/pkg/ledger"
	"github.com/fotoserve/queuepulse/pkg/security"
)

// Controls wraps the server client and the local failure ledger. Queue names
// and job ids are validated before any request is issued.
type Controls struct {
	client *fetch.Client
	ledger ledger.Store
	logger zerolog.Logger
}

// ControlsOption configures Controls.
type ControlsOption interface {
	apply(*Controls)
}

type controlsOptionFunc func(*Controls)

func (f controlsOptionFunc) apply(c *Controls) { f(c) }

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ControlsOption {
	return controlsOptionFunc(func(c *Controls) {
		c.logger = l
	})
}

// New creates Controls over a client and a failure ledger.
func New(client *fetch.Client, store ledger.Store, opts ...ControlsOption) *Controls {
	c := &Controls{
		client: client,
		ledger: store,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c
}

// PauseQueue pauses a queue on the server.
func (c *Controls) PauseQueue(ctx context.Context, queueName string) error {
	if err := security.ValidateQueueName(queueName); err != nil {
		return err
	}
	return c.client.PauseQueue(ctx, queueName)
}

// ResumeQueue resumes a paused queue on the server.
func (c *Controls) ResumeQueue(ctx context.Context, queueName string) error {
	if err := security.ValidateQueueName(queueName); err != nil {
		return err
	}
	return c.client.ResumeQueue(ctx, queueName)
}

// RetryJob asks the server to retry a job and, on success, bumps the retry
// count of the matching ledger records. A job with no ledger record is not
// an error; the increment is simply reported and skipped.
func (c *Controls) RetryJob(ctx context.Context, jobID string) error {
	if err := security.ValidateJobID(jobID); err != nil {
		return err
	}
	if err := c.client.RetryJob(ctx, jobID); err != nil {
		return err
	}

	if err := c.ledger.IncrementRetryCount(ctx, jobID); err != nil {
		c.logger.Warn().Err(err).Str("job_id", jobID).Msg("retry count not incremented")
	}
	return nil
}

// CancelJob asks the server to cancel a job.
func (c *Controls) CancelJob(ctx context.Context, jobID string) error {
	if err := security.ValidateJobID(jobID); err != nil {
		return err
	}
	return c.client.CancelJob(ctx, jobID)
}

// RecordFailure stores an observed failure in the ledger.
func (c *Controls) RecordFailure(ctx context.Context, entry *core.FailedJobRecord) error {
	if err := security.ValidateQueueName(entry.QueueName); err != nil {
		return err
	}
	return c.ledger.Record(ctx, entry)
}

// DeleteFailure removes one failure record by id.
func (c *Controls) DeleteFailure(ctx context.Context, id string) error {
	return c.ledger.Delete(ctx, id)
}

// ListFailures returns failure records matching the query.
func (c *Controls) ListFailures(ctx context.Context, q ledger.Query) ([]core.FailedJobRecord, error) {
	if q.QueueName != "" {
		if err := security.ValidateQueueName(q.QueueName); err != nil {
			return nil, err
		}
	}
	return c.ledger.List(ctx, q)
}

// Ping checks connectivity to the server outside the poll cycle.
func (c *Controls) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}
