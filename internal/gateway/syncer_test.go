package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/reservation"
)

// flakyStore fails the first failures saves, then delegates.
type flakyStore struct {
	*MemoryStore
	mu       sync.Mutex
	failures int
	attempts int
}

func (f *flakyStore) SaveBooking(ctx context.Context, b model.Booking) error {
	f.mu.Lock()
	f.attempts++
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()
	if fail {
		return errors.New("connection refused")
	}
	return f.MemoryStore.SaveBooking(ctx, b)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
}

func (r *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func testBooking(id string) model.Booking {
	return model.Booking{
		ID: id, ShowID: 1, OwnerID: 2,
		Seats:     []model.SeatKey{{Row: 0, Col: 0}},
		Status:    model.BookingActive,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func fastConfig() Config {
	return Config{QueueSize: 8, MaxRetries: 3, BaseBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
}

func startSyncer(t *testing.T, s *Syncer) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, s.Run(ctx))
	}()
	return func() {
		cancel()
		<-done
	}
}

func TestSyncer_RetriesThenSaves(t *testing.T) {
	store := &flakyStore{MemoryStore: NewMemoryStore(), failures: 2}
	pub := &recordingPublisher{}
	s := NewSyncer(store, pub, fastConfig(), zerolog.Nop())
	stop := startSyncer(t, s)

	b := testBooking("b1")
	require.NoError(t, s.Persist(context.Background(), b))
	require.Eventually(t, func() bool { return s.Stats().Saved == 1 }, time.Second, 5*time.Millisecond)
	stop()

	got, ok := store.Get("b1")
	require.True(t, ok)
	assert.Equal(t, b, got)
	assert.Equal(t, 3, store.attempts)
	assert.Equal(t, []string{queue.EventBookingConfirmed}, pub.types())
}

func TestSyncer_GivesUpAfterMaxRetries(t *testing.T) {
	store := &flakyStore{MemoryStore: NewMemoryStore(), failures: 100}
	pub := &recordingPublisher{}
	s := NewSyncer(store, pub, fastConfig(), zerolog.Nop())
	stop := startSyncer(t, s)

	require.NoError(t, s.Persist(context.Background(), testBooking("b1")))
	require.Eventually(t, func() bool { return s.Stats().Failed == 1 }, time.Second, 5*time.Millisecond)
	stop()

	assert.Equal(t, 4, store.attempts)
	assert.Empty(t, pub.types())
}

func TestSyncer_ZeroRetriesMeansOneAttempt(t *testing.T) {
	store := &flakyStore{MemoryStore: NewMemoryStore(), failures: 100}
	cfg := fastConfig()
	cfg.MaxRetries = 0
	s := NewSyncer(store, nil, cfg, zerolog.Nop())
	stop := startSyncer(t, s)

	require.NoError(t, s.Persist(context.Background(), testBooking("b1")))
	require.Eventually(t, func() bool { return s.Stats().Failed == 1 }, time.Second, 5*time.Millisecond)
	stop()

	assert.Equal(t, 1, store.attempts)
}

func TestSyncer_KeepsCommitOrder(t *testing.T) {
	store := NewMemoryStore()
	pub := &recordingPublisher{}
	s := NewSyncer(store, pub, fastConfig(), zerolog.Nop())

	b := testBooking("b1")
	require.NoError(t, s.Persist(context.Background(), b))
	require.NoError(t, s.Persist(context.Background(), b.Cancel(b.CreatedAt.Add(time.Minute))))

	// Run on an already cancelled context only drains the buffer.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Run(ctx))

	got, ok := store.Get("b1")
	require.True(t, ok)
	assert.Equal(t, model.BookingCancelled, got.Status)
	assert.Equal(t, []string{queue.EventBookingConfirmed, queue.EventBookingCancelled}, pub.types())

	active, err := s.FetchActiveBookings(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestSyncer_QueueFull(t *testing.T) {
	cfg := fastConfig()
	cfg.QueueSize = 1
	s := NewSyncer(NewMemoryStore(), nil, cfg, zerolog.Nop())

	require.NoError(t, s.Persist(context.Background(), testBooking("b1")))
	err := s.Persist(context.Background(), testBooking("b2"))
	assert.ErrorIs(t, err, ErrQueueFull)

	st := s.Stats()
	assert.Equal(t, uint64(1), st.Enqueued)
	assert.Equal(t, uint64(1), st.Dropped)
	assert.Equal(t, 1, st.Pending)
}

func TestMemoryStore_ActiveBookings(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	a := testBooking("a")
	c := testBooking("c")
	c.CreatedAt = a.CreatedAt.Add(-time.Minute)
	other := testBooking("o")
	other.ShowID = 2

	for _, b := range []model.Booking{a, c, other, testBooking("x").Cancel(time.Now())} {
		require.NoError(t, store.SaveBooking(ctx, b))
	}

	got, err := store.ActiveBookings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
}

func TestSyncer_FetchBookingAndHistory(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := NewSyncer(store, nil, fastConfig(), zerolog.Nop())

	older := testBooking("old").Cancel(time.Now())
	newer := testBooking("new")
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	stranger := testBooking("other")
	stranger.OwnerID = 99
	for _, b := range []model.Booking{older, newer, stranger} {
		require.NoError(t, store.SaveBooking(ctx, b))
	}

	got, err := s.FetchBooking(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, got.Status)

	_, err = s.FetchBooking(ctx, "missing")
	assert.ErrorIs(t, err, reservation.ErrNotFound)

	history, err := s.FetchOwnerBookings(ctx, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "new", history[0].ID)
	assert.Equal(t, "old", history[1].ID)
}
