package reservation

import (
	"context"
	"fmt"
	"maps"
	"strings"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// Resolve returns, in row-major order, every seat of the proposal that is
// already covered by an active booking in the snapshot.  The owner of the
// covering booking is irrelevant: a seat belongs to at most one active
// booking, including the requester's own earlier bookings.
func Resolve(snap *Snapshot, seats []model.SeatKey) []model.SeatKey {
	var out []model.SeatKey
	for _, k := range seats {
		if _, ok := snap.Claim(k); ok {
			out = append(out, k)
		}
	}
	return model.SortSeats(out)
}

// Confirm commits the pending selection as a new active booking owned by
// ownerID.  The selection is validated against the ledger while holding
// the show's write lock, so of two confirms racing for a seat exactly one
// succeeds and the other receives a *SeatConflictError naming every
// colliding seat.  A rejected confirm commits nothing.
func (l *Ledger) Confirm(ctx context.Context, show model.Show, ownerID uint64, pending Selection) (model.Booking, error) {
	if pending.Len() == 0 {
		return model.Booking{}, ErrEmptySelection
	}
	seats := pending.Seats()
	var outside []string
	for _, k := range seats {
		if !show.Contains(k) {
			outside = append(outside, k.Label())
		}
	}
	if len(outside) > 0 {
		return model.Booking{}, fmt.Errorf("%w: %s", ErrSeatOutOfRange, strings.Join(outside, ","))
	}

	sl := l.show(show.ID)
	// Doomed requests fail without queueing for the lock.
	if conflicts := Resolve(sl.snap.Load(), seats); len(conflicts) > 0 {
		return model.Booking{}, &SeatConflictError{Seats: conflicts}
	}

	if err := l.lock(ctx, sl); err != nil {
		return model.Booking{}, err
	}
	defer sl.unlock()

	cur := sl.snap.Load()
	if conflicts := Resolve(cur, seats); len(conflicts) > 0 {
		return model.Booking{}, &SeatConflictError{Seats: conflicts}
	}

	b := model.Booking{
		ID:        l.opts.NewID(),
		ShowID:    show.ID,
		OwnerID:   ownerID,
		Seats:     seats,
		Status:    model.BookingActive,
		CreatedAt: l.opts.Now().UTC(),
	}
	next := maps.Clone(cur.bookings)
	next[b.ID] = b
	sl.publish(next)

	l.mu.Lock()
	l.index[b.ID] = show.ID
	l.mu.Unlock()
	return b.Clone(), nil
}
