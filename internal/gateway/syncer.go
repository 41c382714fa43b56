// Package gateway syncs the in-memory ledger with the backend.  Booking
// changes are queued and written to the Store in commit order by a single
// worker; the ledger never waits for the backend.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v3"
	"github.com/rs/zerolog"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/reservation"
)

// ErrQueueFull is returned by Persist when the sync buffer is saturated.
var ErrQueueFull = errors.New("sync queue full")

// Store is the system of record for bookings.  Booking returns
// reservation.ErrNotFound for unknown ids.
type Store interface {
	SaveBooking(ctx context.Context, b model.Booking) error
	ActiveBookings(ctx context.Context, showID uint64) ([]model.Booking, error)
	Booking(ctx context.Context, id string) (model.Booking, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Booking, error)
}

// Publisher broadcasts booking events once they are stored.
type Publisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// NopPublisher drops every event.  It is used when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.BookingEvent) error { return nil }

// Config tunes a Syncer.  Zero values select the defaults, except
// MaxRetries where zero means a single attempt.
type Config struct {
	QueueSize    int           // buffered booking changes (default 1024)
	MaxRetries   int           // store retries after the first attempt
	BaseBackoff  time.Duration // first retry delay (default 100ms)
	MaxBackoff   time.Duration // retry delay cap (default 5s)
	DrainTimeout time.Duration // time allowed to flush the buffer on shutdown (default 5s)
}

func (c Config) withDefaults() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = 1024
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = 100 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Second
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = 5 * time.Second
	}
	return c
}

// Stats counts what the syncer has done since start.
type Stats struct {
	Enqueued  uint64 `json:"enqueued"`
	Saved     uint64 `json:"saved"`
	Failed    uint64 `json:"failed"`
	Dropped   uint64 `json:"dropped"`
	Published uint64 `json:"published"`
	Pending   int    `json:"pending"`
}

var (
	_ reservation.Gateway = (*Syncer)(nil)
	_ Store               = (*MemoryStore)(nil)
)

// Syncer implements reservation.Gateway on top of a Store.
type Syncer struct {
	store Store
	pub   Publisher
	cfg   Config
	log   zerolog.Logger
	jobs  chan model.Booking

	enqueued, saved, failed, dropped, published atomic.Uint64
}

// NewSyncer returns a syncer; call Run to start writing.
func NewSyncer(store Store, pub Publisher, cfg Config, log zerolog.Logger) *Syncer {
	if pub == nil {
		pub = NopPublisher{}
	}
	cfg = cfg.withDefaults()
	return &Syncer{
		store: store,
		pub:   pub,
		cfg:   cfg,
		log:   log.With().Str("component", "gateway").Logger(),
		jobs:  make(chan model.Booking, cfg.QueueSize),
	}
}

// Persist queues the booking for the store and returns immediately.
func (s *Syncer) Persist(_ context.Context, b model.Booking) error {
	select {
	case s.jobs <- b.Clone():
		s.enqueued.Add(1)
		return nil
	default:
		s.dropped.Add(1)
		return fmt.Errorf("%w: booking %s", ErrQueueFull, b.ID)
	}
}

// FetchActiveBookings reads the show's active bookings straight from the
// store.
func (s *Syncer) FetchActiveBookings(ctx context.Context, showID uint64) ([]model.Booking, error) {
	bookings, err := s.store.ActiveBookings(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("fetch active bookings for show %d: %w", showID, err)
	}
	return bookings, nil
}

// FetchBooking reads one booking from the store.
func (s *Syncer) FetchBooking(ctx context.Context, bookingID string) (model.Booking, error) {
	b, err := s.store.Booking(ctx, bookingID)
	if err != nil {
		return model.Booking{}, fmt.Errorf("fetch booking %s: %w", bookingID, err)
	}
	return b, nil
}

// FetchOwnerBookings reads the owner's stored bookings, newest first.
// Changes still waiting in the queue are not reflected.
func (s *Syncer) FetchOwnerBookings(ctx context.Context, ownerID uint64) ([]model.Booking, error) {
	bookings, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("fetch bookings of owner %d: %w", ownerID, err)
	}
	return bookings, nil
}

// Run writes queued bookings until ctx is cancelled, then flushes what is
// still buffered within DrainTimeout.  A write in progress at cancellation
// finishes its retries.  It always returns nil.
func (s *Syncer) Run(ctx context.Context) error {
	s.log.Info().Int("queue_size", s.cfg.QueueSize).Msg("syncer started")
	work := context.WithoutCancel(ctx)
	for {
		select {
		case b := <-s.jobs:
			s.sync(work, b)
		case <-ctx.Done():
			s.drain(ctx)
			return nil
		}
	}
}

func (s *Syncer) drain(parent context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.cfg.DrainTimeout)
	defer cancel()
	for {
		select {
		case b := <-s.jobs:
			s.sync(ctx, b)
		default:
			s.log.Info().Interface("stats", s.Stats()).Msg("syncer stopped")
			return
		}
	}
}

// sync stores one booking with retries and publishes its event.
func (s *Syncer) sync(ctx context.Context, b model.Booking) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.cfg.BaseBackoff
	eb.MaxInterval = s.cfg.MaxBackoff
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(s.cfg.MaxRetries)), ctx)

	op := func() error { return s.store.SaveBooking(ctx, b) }
	notify := func(err error, wait time.Duration) {
		s.log.Warn().Err(err).Str("booking_id", b.ID).Dur("retry_in", wait).Msg("save booking failed")
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		s.failed.Add(1)
		s.log.Error().Err(err).Str("booking_id", b.ID).Str("status", string(b.Status)).Msg("giving up on booking")
		return
	}
	s.saved.Add(1)

	if err := s.pub.Publish(ctx, queue.NewBookingEvent(b)); err != nil {
		s.log.Warn().Err(err).Str("booking_id", b.ID).Msg("publish booking event")
		return
	}
	s.published.Add(1)
}

// Stats returns a snapshot of the counters.
func (s *Syncer) Stats() Stats {
	return Stats{
		Enqueued:  s.enqueued.Load(),
		Saved:     s.saved.Load(),
		Failed:    s.failed.Load(),
		Dropped:   s.dropped.Load(),
		Published: s.published.Load(),
		Pending:   len(s.jobs),
	}
}
