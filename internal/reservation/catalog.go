package reservation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// Catalog resolves show metadata.  Implementations return ErrShowNotFound
// for unknown ids.
type Catalog interface {
	Show(ctx context.Context, showID uint64) (model.Show, error)
}

// Gateway is the backend the ledger syncs with.  Persist is fire and
// forget from the ledger's point of view.  FetchActiveBookings seeds a show
// the first time it is touched; FetchBooking locates a booking whose show
// has not been touched yet and reports ErrNotFound when the backend has no
// such booking.  FetchOwnerBookings returns the owner's stored history.
type Gateway interface {
	Persist(ctx context.Context, b model.Booking) error
	FetchActiveBookings(ctx context.Context, showID uint64) ([]model.Booking, error)
	FetchBooking(ctx context.Context, bookingID string) (model.Booking, error)
	FetchOwnerBookings(ctx context.Context, ownerID uint64) ([]model.Booking, error)
}

// MemoryCatalog is a Catalog backed by a map.  It is used in local mode
// and in tests.
type MemoryCatalog struct {
	mu    sync.RWMutex
	shows map[uint64]model.Show
}

// NewMemoryCatalog returns a catalog holding the given shows.
func NewMemoryCatalog(shows ...model.Show) *MemoryCatalog {
	c := &MemoryCatalog{shows: make(map[uint64]model.Show, len(shows))}
	for _, s := range shows {
		c.Put(s)
	}
	return c
}

// Put adds or replaces a show.
func (c *MemoryCatalog) Put(s model.Show) {
	c.mu.Lock()
	c.shows[s.ID] = s.WithDefaults()
	c.mu.Unlock()
}

// Show implements Catalog.
func (c *MemoryCatalog) Show(_ context.Context, showID uint64) (model.Show, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.shows[showID]
	if !ok {
		return model.Show{}, ErrShowNotFound
	}
	return s, nil
}

// Upcoming lists shows scheduled at or after from, soonest first.  A
// non-positive limit or one above 100 is clamped to 100.
func (c *MemoryCatalog) Upcoming(_ context.Context, from time.Time, limit int) ([]model.Show, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	c.mu.RLock()
	out := make([]model.Show, 0, len(c.shows))
	for _, s := range c.shows {
		if !s.ScheduledAt.Before(from) {
			out = append(out, s)
		}
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledAt.Equal(out[j].ScheduledAt) {
			return out[i].ScheduledAt.Before(out[j].ScheduledAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
