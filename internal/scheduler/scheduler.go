// Package scheduler runs periodic maintenance of the reservation ledger.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

type compactor interface {
	Compact(ctx context.Context, before time.Time) (int, error)
}

// Scheduler prunes bookings cancelled longer than retention ago, once per
// interval.
type Scheduler struct {
	ledger    compactor
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

func New(ledger compactor, interval, retention time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		ledger:    ledger,
		interval:  interval,
		retention: retention,
		now:       time.Now,
		log:       log.With().Str("component", "scheduler").Logger(),
	}
}

// Start blocks until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info().Msg("compaction disabled")
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Dur("retention", s.retention).Msg("scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	before := s.now().Add(-s.retention)
	n, err := s.ledger.Compact(ctx, before)
	if err != nil {
		s.log.Error().Err(err).Int("removed", n).Msg("compaction failed")
		return
	}
	s.log.Debug().Int("removed", n).Time("before", before).Msg("compaction done")
}
