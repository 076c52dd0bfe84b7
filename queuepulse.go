// Package queuepulse polls a photo-server's job-queue REST API, derives
// processing-rate metrics from successive queue snapshots, persists selected
// metrics and failure records locally, and publishes a consolidated status
// to subscribers after every poll cycle.
//
// This is the main package users should import. It re-exports the public
// types from the internal pkg/ packages for a clean API surface.
//
// Basic usage:
//
//	// Open local storage and migrate
//	db, _ := gorm.Open(sqlite.Open("queuepulse.db"), &gorm.Config{})
//	store := queuepulse.NewMetricStore(db)
//	store.Migrate(context.Background())
//
//	// Build the engine
//	client := queuepulse.NewClient("http://photos.local:3001/api", token)
//	estimator := queuepulse.NewEstimator()
//	poller := queuepulse.NewPoller(client, estimator, poll.WithMetricStore(store))
//
//	// Watch status updates
//	updates := poller.Subscribe()
//	poller.Start()
//	for status := range updates {
//	    render(status)
//	}
package queuepulse

import (
	"time"

	"gorm.io/gorm"

	"github.com/fotoserve/queuepulse/pkg/control"
	"github.com/fotoserve/queuepulse/pkg/core"
	"github.com/fotoserve/queuepulse/pkg/fetch"
	"github.com/fotoserve/queuepulse/pkg/ledger"
	"github.com/fotoserve/queuepulse/pkg/maintenance"
	"github.com/fotoserve/queuepulse/pkg/metrics"
	"github.com/fotoserve/queuepulse/pkg/poll"
	"github.com/fotoserve/queuepulse/pkg/rate"
	"github.com/fotoserve/queuepulse/pkg/schedule"
	"github.com/fotoserve/queuepulse/pkg/security"
)

// Type aliases re-exporting the public surface
type (
	// QueueSnapshot holds one queue's per-status counts for one poll cycle.
	QueueSnapshot = core.QueueSnapshot

	// RateSample is one point of the rolling rate history.
	RateSample = core.RateSample

	// ServerStats is the derived read model computed each poll cycle.
	ServerStats = core.ServerStats

	// Status is the consolidated value published to subscribers.
	Status = core.Status

	// MetricRecord is one persisted time-series point.
	MetricRecord = core.MetricRecord

	// MetricType names a persisted metric series.
	MetricType = core.MetricType

	// AggregateBucket is one bucketed aggregation result.
	AggregateBucket = core.AggregateBucket

	// FailedJobRecord is one persisted job failure.
	FailedJobRecord = core.FailedJobRecord

	// Client talks to the job-queue server's REST API.
	Client = fetch.Client

	// TransportError indicates the request never produced a response.
	TransportError = fetch.TransportError

	// ProtocolError indicates a non-2xx server response.
	ProtocolError = fetch.ProtocolError

	// DecodeError indicates a response shape mismatch.
	DecodeError = fetch.DecodeError

	// Estimator derives jobs-per-minute from successive snapshots.
	Estimator = rate.Estimator

	// Poller drives the fetch/estimate/persist/publish cycle.
	Poller = poll.Poller

	// Fetcher returns one cycle's queue snapshots.
	Fetcher = poll.Fetcher

	// MetricStore is the persistence contract for metric records.
	MetricStore = metrics.Store

	// MetricQuery selects metric records.
	MetricQuery = metrics.Query

	// FailureStore is the persistence contract for failure records.
	FailureStore = ledger.Store

	// FailureQuery narrows a failure-record listing.
	FailureQuery = ledger.Query

	// Controls exposes the user-initiated queue and job operations.
	Controls = control.Controls

	// Sweeper runs the scheduled metric retention sweep.
	Sweeper = maintenance.Sweeper

	// Schedule defines when a recurring maintenance task runs next.
	Schedule = schedule.Schedule

	// Scheduler drives recurring poll ticks.
	Scheduler = schedule.Scheduler
)

// Metric type constants
const (
	MetricActiveWorkers  = core.MetricActiveWorkers
	MetricProcessingRate = core.MetricProcessingRate
	MetricJobsFailed     = core.MetricJobsFailed
	MetricJobsProcessed  = core.MetricJobsProcessed
	MetricQueueWaiting   = core.MetricQueueWaiting
)

// Error variables
var (
	ErrInvalidQueueName  = core.ErrInvalidQueueName
	ErrQueueNameTooLong  = core.ErrQueueNameTooLong
	ErrInvalidJobID      = core.ErrInvalidJobID
	ErrJobIDTooLong      = core.ErrJobIDTooLong
	ErrDuplicateMetricID = core.ErrDuplicateMetricID
	ErrJobNotFound       = core.ErrJobNotFound
	ErrRecordNotFound    = core.ErrRecordNotFound
)

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL, token string, opts ...fetch.Option) *Client {
	return fetch.NewClient(baseURL, token, opts...)
}

// NewEstimator creates a rate estimator with a one-hour sample retention.
func NewEstimator(opts ...rate.EstimatorOption) *Estimator {
	return rate.NewEstimator(opts...)
}

// NewPoller creates a poller over the given fetcher and estimator.
func NewPoller(f Fetcher, e *Estimator, opts ...poll.PollerOption) *Poller {
	return poll.New(f, e, opts...)
}

// NewMetricStore creates a GORM-backed metric store.
func NewMetricStore(db *gorm.DB) *metrics.GormStore {
	return metrics.NewGormStore(db)
}

// NewFailureStore creates a GORM-backed failure ledger.
func NewFailureStore(db *gorm.DB) *ledger.GormStore {
	return ledger.NewGormStore(db)
}

// NewControls creates the control-plane wrapper over a client and a ledger.
func NewControls(client *Client, store FailureStore, opts ...control.ControlsOption) *Controls {
	return control.New(client, store, opts...)
}

// NewSweeper creates a retention sweeper over the given metric store.
func NewSweeper(store MetricStore, opts ...maintenance.SweeperOption) *Sweeper {
	return maintenance.NewSweeper(store, opts...)
}

// Every creates a schedule that runs at fixed intervals.
func Every(d time.Duration) Schedule {
	return schedule.Every(d)
}

// Daily creates a schedule that runs at a specific time each day.
func Daily(hour, minute int) Schedule {
	return schedule.Daily(hour, minute)
}

// Cron creates a schedule from a cron expression.
func Cron(expr string) Schedule {
	return schedule.Cron(expr)
}

// ValidateQueueName validates a queue name.
func ValidateQueueName(name string) error {
	return security.ValidateQueueName(name)
}

// ValidateJobID validates a job id.
func ValidateJobID(id string) error {
	return security.ValidateJobID(id)
}

// SanitizeErrorMessage truncates and sanitizes error messages for storage.
func SanitizeErrorMessage(msg string) string {
	return security.SanitizeErrorMessage(msg)
}
