package rate

import (
	"sync"
	"time"

	"github.com/fotoserve/queuepulse/pkg/core"
)

const (
	// DefaultRetention bounds how long rate samples are kept.
	DefaultRetention = time.Hour

	// averageWindow is how many of the most recent samples feed the
	// published average.
	averageWindow = 10
)

type totals struct {
	waiting int
	active  int
}

// Estimator consumes successive snapshot lists and maintains a rolling rate
// history plus a monotonic processed counter.
type Estimator struct {
	mu             sync.Mutex
	last           *totals
	lastSampleTime time.Time
	history        []core.RateSample
	processed      int64
	retention      time.Duration
	now            func() time.Time
}

// EstimatorOption configures an Estimator.
type EstimatorOption interface {
	apply(*Estimator)
}

type estimatorOptionFunc func(*Estimator)

func (f estimatorOptionFunc) apply(e *Estimator) { f(e) }

// WithRetention sets how long rate samples are kept in the history.
func WithRetention(d time.Duration) EstimatorOption {
	return estimatorOptionFunc(func(e *Estimator) {
		e.retention = d
	})
}

// WithClock replaces the wall clock, for deterministic tests.
func WithClock(now func() time.Time) EstimatorOption {
	return estimatorOptionFunc(func(e *Estimator) {
		e.now = now
	})
}

// NewEstimator creates an Estimator with a one-hour sample retention.
func NewEstimator(opts ...EstimatorOption) *Estimator {
	e := &Estimator{
		retention: DefaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt.apply(e)
	}
	return e
}

// Update folds one cycle's snapshots into the estimator and returns the rate
// sample for this cycle. The first call only seeds the baseline and returns
// a zero sample without recording it. A non-advancing clock leaves all state
// untouched.
func (e *Estimator) Update(snapshots []core.QueueSnapshot) core.RateSample {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()

	totalWaiting := 0
	totalActive := 0
	for _, s := range snapshots {
		if s.WaitingCount > 0 {
			totalWaiting += s.WaitingCount
		}
		totalActive += s.ActiveCount
	}

	if e.last == nil {
		e.last = &totals{waiting: totalWaiting, active: totalActive}
		e.lastSampleTime = now
		return core.RateSample{Timestamp: now, Rate: 0}
	}

	elapsed := now.Sub(e.lastSampleTime).Seconds()
	if elapsed <= 0 {
		return core.RateSample{Timestamp: now, Rate: 0}
	}

	var ratePerMinute float64
	waitingDecrease := e.last.waiting - totalWaiting
	switch {
	case waitingDecrease > 0:
		e.processed += int64(waitingDecrease)
		ratePerMinute = float64(waitingDecrease) / (elapsed / 60)
	case totalActive > 0:
		// Queue did not shrink but workers are busy: lower-bound proxy.
		ratePerMinute = float64(totalActive) * (60 / elapsed)
	default:
		ratePerMinute = 0
	}

	sample := core.RateSample{Timestamp: now, Rate: ratePerMinute}
	e.history = append(e.history, sample)
	e.evictLocked(now)

	e.last = &totals{waiting: totalWaiting, active: totalActive}
	e.lastSampleTime = now

	return sample
}

// evictLocked drops samples older than the retention window. A sample
// exactly at the cutoff is kept.
func (e *Estimator) evictLocked(now time.Time) {
	cutoff := now.Add(-e.retention)
	idx := 0
	for idx < len(e.history) && e.history[idx].Timestamp.Before(cutoff) {
		idx++
	}
	if idx > 0 {
		e.history = append(e.history[:0], e.history[idx:]...)
	}
}

// Average returns the mean of the most recent samples (at most ten), or zero
// when the history is empty.
func (e *Estimator) Average() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := len(e.history)
	if n == 0 {
		return 0
	}
	window := averageWindow
	if n < window {
		window = n
	}

	var sum float64
	for _, s := range e.history[n-window:] {
		sum += s.Rate
	}
	return sum / float64(window)
}

// History returns a copy of the retained rate samples, oldest first.
func (e *Estimator) History() []core.RateSample {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]core.RateSample, len(e.history))
	copy(out, e.history)
	return out
}

// ProcessedSinceStart returns the monotonic count of jobs observed to have
// left the waiting state since this estimator was created.
func (e *Estimator) ProcessedSinceStart() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.processed
}
