package poll

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fotoserve/queuepulse/pkg/core"
	"github.com/fotoserve/queuepulse/pkg/metrics"
	"github.com/fotoserve/queuepulse/pkg/rate"
	"github.com/fotoserve/queuepulse/pkg/schedule"
)

// DefaultInterval is the poll interval used when none is configured.
const DefaultInterval = 5 * time.Second

// Fetcher returns one cycle's queue snapshots.
type Fetcher interface {
	Fetch(ctx context.Context) ([]core.QueueSnapshot, error)
}

// Poller periodically fetches queue snapshots, derives server stats, writes
// selected metrics, and broadcasts the consolidated status.
type Poller struct {
	fetcher   Fetcher
	estimator *rate.Estimator
	store     metrics.Store
	scheduler schedule.Scheduler
	interval  time.Duration
	logger    zerolog.Logger
	now       func() time.Time

	mu       sync.Mutex
	handle   schedule.Handle
	cancel   context.CancelFunc
	ctx      context.Context
	inFlight bool
	last     *core.Status
	subs     []chan core.Status
}

// PollerOption configures a Poller.
type PollerOption interface {
	apply(*Poller)
}

type pollerOptionFunc func(*Poller)

func (f pollerOptionFunc) apply(p *Poller) { f(p) }

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) PollerOption {
	return pollerOptionFunc(func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	})
}

// WithScheduler replaces the wall-clock scheduler, for deterministic tests.
func WithScheduler(s schedule.Scheduler) PollerOption {
	return pollerOptionFunc(func(p *Poller) {
		p.scheduler = s
	})
}

// WithMetricStore enables best-effort metric persistence after each cycle.
func WithMetricStore(s metrics.Store) PollerOption {
	return pollerOptionFunc(func(p *Poller) {
		p.store = s
	})
}

// WithLogger sets the poller's logger.
func WithLogger(l zerolog.Logger) PollerOption {
	return pollerOptionFunc(func(p *Poller) {
		p.logger = l
	})
}

// WithClock replaces the wall clock used for status timestamps.
func WithClock(now func() time.Time) PollerOption {
	return pollerOptionFunc(func(p *Poller) {
		p.now = now
	})
}

// New creates a Poller over the given fetcher and estimator.
func New(f Fetcher, e *rate.Estimator, opts ...PollerOption) *Poller {
	p := &Poller{
		fetcher:   f,
		estimator: e,
		scheduler: schedule.NewTickerScheduler(),
		interval:  DefaultInterval,
		logger:    zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt.apply(p)
	}
	return p
}

// Start moves the poller from Idle to Polling: it schedules recurring ticks
// and immediately triggers cycle zero. Calling Start while already polling
// restarts with a fresh timer.
func (p *Poller) Start() {
	p.Stop()

	p.mu.Lock()
	ctx, cancel := context.WithCancel(context.Background())
	p.ctx = ctx
	p.cancel = cancel
	p.handle = p.scheduler.Schedule(p.interval, func() { p.runCycle(ctx) })
	p.mu.Unlock()

	go p.runCycle(ctx)
}

// Stop cancels the recurring ticks and aborts any in-flight fetch. A second
// Stop is a no-op.
func (p *Poller) Stop() {
	p.mu.Lock()
	handle := p.handle
	cancel := p.cancel
	p.handle = nil
	p.cancel = nil
	p.ctx = nil
	p.mu.Unlock()

	if handle != nil {
		handle.Stop()
	}
	if cancel != nil {
		cancel()
	}
}

// Reconfigure changes the poll interval. Equivalent to Stop then Start when
// polling; when idle it only records the new interval.
func (p *Poller) Reconfigure(interval time.Duration) {
	if interval <= 0 {
		return
	}

	p.mu.Lock()
	p.interval = interval
	running := p.handle != nil
	p.mu.Unlock()

	if running {
		p.Start()
	}
}

// Polling reports whether the recurring timer is active.
func (p *Poller) Polling() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handle != nil
}

// Refresh runs one cycle immediately, outside the timer, subject to the
// same in-flight guard as a tick.
func (p *Poller) Refresh(ctx context.Context) {
	p.runCycle(ctx)
}

// Subscribe returns a channel receiving the full consolidated status after
// each completed cycle. Slow subscribers miss updates instead of blocking
// the poller. Callers must Unsubscribe when done.
func (p *Poller) Subscribe() <-chan core.Status {
	ch := make(chan core.Status, 16)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber channel created by Subscribe. The channel
// is not closed; after Unsubscribe returns no further statuses are sent.
func (p *Poller) Unsubscribe(ch <-chan core.Status) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, sub := range p.subs {
		if sub == ch {
			p.subs = append(p.subs[:i], p.subs[i+1:]...)
			return
		}
	}
}

// LastStatus returns the most recently published status, or nil before the
// first completed cycle.
func (p *Poller) LastStatus() *core.Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return nil
	}
	st := *p.last
	return &st
}

// runCycle executes one poll cycle. Ticks that land while a cycle is still
// in flight are dropped.
func (p *Poller) runCycle(ctx context.Context) {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		p.logger.Debug().Msg("cycle still in flight, skipping tick")
		return
	}
	p.inFlight = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	snapshots, err := p.fetcher.Fetch(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		p.logger.Warn().Err(err).Msg("fetch failed")
		p.publish(core.Status{
			Connected: false,
			Error:     err.Error(),
			UpdatedAt: p.now(),
		})
		return
	}

	sample := p.estimator.Update(snapshots)
	stats := p.buildStats(snapshots)

	p.publish(core.Status{
		Connected: true,
		Stats:     stats,
		Snapshots: snapshots,
		UpdatedAt: stats.Timestamp,
	})

	p.persistMetrics(ctx, stats, sample, snapshots)
}

func (p *Poller) buildStats(snapshots []core.QueueSnapshot) core.ServerStats {
	stats := core.ServerStats{
		Timestamp: p.now(),
	}
	for _, s := range snapshots {
		stats.ActiveWorkers += s.ActiveCount
		stats.JobsFailedToday += s.FailedCount
	}
	stats.JobsProcessedSinceStart = p.estimator.ProcessedSinceStart()
	stats.AverageProcessingRate = p.estimator.Average()
	return stats
}

// publish stores the status and broadcasts it without blocking. Partial
// state is never published; callers assemble the full status first.
func (p *Poller) publish(status core.Status) {
	p.mu.Lock()
	st := status
	p.last = &st
	subs := make([]chan core.Status, len(p.subs))
	copy(subs, p.subs)
	p.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- status:
		default:
			// Drop if full - this prevents blocking on slow consumers
		}
	}
}

// persistMetrics writes the cycle's derived metrics. Failures here are
// logged and swallowed; the published in-memory status already went out.
func (p *Poller) persistMetrics(ctx context.Context, stats core.ServerStats, sample core.RateSample, snapshots []core.QueueSnapshot) {
	if p.store == nil {
		return
	}

	records := []*core.MetricRecord{
		{Timestamp: stats.Timestamp, Type: core.MetricActiveWorkers, Value: float64(stats.ActiveWorkers)},
		{Timestamp: stats.Timestamp, Type: core.MetricProcessingRate, Value: sample.Rate},
		{Timestamp: stats.Timestamp, Type: core.MetricJobsFailed, Value: float64(stats.JobsFailedToday)},
		{Timestamp: stats.Timestamp, Type: core.MetricJobsProcessed, Value: float64(stats.JobsProcessedSinceStart)},
	}
	for _, s := range snapshots {
		records = append(records, &core.MetricRecord{
			Timestamp: stats.Timestamp,
			QueueName: s.Name,
			Type:      core.MetricQueueWaiting,
			Value:     float64(s.WaitingCount),
		})
	}

	for _, r := range records {
		if err := p.store.Append(ctx, r); err != nil {
			p.logger.Warn().Err(err).Str("metric", string(r.Type)).Msg("metric write failed")
		}
	}
}
