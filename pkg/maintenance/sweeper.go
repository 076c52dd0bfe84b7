package maintenance

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/fotoserve/queuepulse/pkg/metrics"
	"github.com/fotoserve/queuepulse/pkg/schedule"
)

// DefaultRetention is how long metric rows are kept when not configured.
const DefaultRetention = 7 * 24 * time.Hour

// Sweeper deletes metric rows past their retention and compacts the store.
type Sweeper struct {
	store     metrics.Store
	schedule  schedule.Schedule
	retention time.Duration
	compact   bool
	logger    zerolog.Logger
	now       func() time.Time
}

// SweeperOption configures a Sweeper.
type SweeperOption interface {
	apply(*Sweeper)
}

type sweeperOptionFunc func(*Sweeper)

func (f sweeperOptionFunc) apply(s *Sweeper) { f(s) }

// WithRetention sets how long metric rows are kept.
func WithRetention(d time.Duration) SweeperOption {
	return sweeperOptionFunc(func(s *Sweeper) {
		s.retention = d
	})
}

// WithSchedule sets when sweeps run. Defaults to daily at 03:00 UTC.
func WithSchedule(sched schedule.Schedule) SweeperOption {
	return sweeperOptionFunc(func(s *Sweeper) {
		s.schedule = sched
	})
}

// WithCompaction toggles the post-delete compaction step.
func WithCompaction(enabled bool) SweeperOption {
	return sweeperOptionFunc(func(s *Sweeper) {
		s.compact = enabled
	})
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) SweeperOption {
	return sweeperOptionFunc(func(s *Sweeper) {
		s.logger = l
	})
}

// WithClock replaces the wall clock, for deterministic tests.
func WithClock(now func() time.Time) SweeperOption {
	return sweeperOptionFunc(func(s *Sweeper) {
		s.now = now
	})
}

// NewSweeper creates a Sweeper over the given metric store.
func NewSweeper(store metrics.Store, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		store:     store,
		schedule:  schedule.Daily(3, 0),
		retention: DefaultRetention,
		compact:   true,
		logger:    zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt.apply(s)
	}
	return s
}

// Start runs sweeps on the configured schedule until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	next := s.schedule.Next(s.now())
	for {
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.Sweep(ctx)
			next = s.schedule.Next(s.now())
		}
	}
}

// Sweep performs one retention pass immediately.
func (s *Sweeper) Sweep(ctx context.Context) {
	if s.retention <= 0 {
		return
	}

	cutoff := s.now().Add(-s.retention)
	deleted, err := s.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("retention sweep failed")
		return
	}

	if deleted > 0 && s.compact {
		if err := s.store.Compact(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("compaction failed")
		}
	}

	size, err := s.store.SizeOnDisk(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("size check failed")
		return
	}
	s.logger.Info().Int64("deleted", deleted).Int64("size_bytes", size).Msg("retention sweep complete")
}
