package gateway

import (
	"context"
	"sort"
	"sync"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/reservation"
)

// MemoryStore is a Store kept in process memory.  It backs local mode and
// tests.
type MemoryStore struct {
	mu       sync.RWMutex
	bookings map[string]model.Booking
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bookings: make(map[string]model.Booking)}
}

// SaveBooking inserts or replaces the booking.
func (m *MemoryStore) SaveBooking(_ context.Context, b model.Booking) error {
	m.mu.Lock()
	m.bookings[b.ID] = b.Clone()
	m.mu.Unlock()
	return nil
}

// ActiveBookings returns the show's active bookings ordered by creation.
func (m *MemoryStore) ActiveBookings(_ context.Context, showID uint64) ([]model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Booking
	for _, b := range m.bookings {
		if b.ShowID == showID && b.Active() {
			out = append(out, b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Booking returns a stored booking or reservation.ErrNotFound.
func (m *MemoryStore) Booking(_ context.Context, id string) (model.Booking, error) {
	b, ok := m.Get(id)
	if !ok {
		return model.Booking{}, reservation.ErrNotFound
	}
	return b, nil
}

// ListByOwner returns the owner's bookings, newest first.
func (m *MemoryStore) ListByOwner(_ context.Context, ownerID uint64) ([]model.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.Booking
	for _, b := range m.bookings {
		if b.OwnerID == ownerID {
			out = append(out, b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Get returns a stored booking.
func (m *MemoryStore) Get(id string) (model.Booking, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bookings[id]
	return b.Clone(), ok
}
