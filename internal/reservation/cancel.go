package reservation

import (
	"context"
	"maps"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// Cancel moves an active booking to CANCELLED and releases its seats for
// every later confirm.  Only the owner may cancel.  A repeated cancel is
// answered according to the ledger's CancelPolicy.
func (l *Ledger) Cancel(ctx context.Context, bookingID string, requesterID uint64) (model.Booking, error) {
	b, _, err := l.cancel(ctx, bookingID, requesterID)
	return b, err
}

// cancel additionally reports whether this call performed the transition.
func (l *Ledger) cancel(ctx context.Context, bookingID string, requesterID uint64) (model.Booking, bool, error) {
	l.mu.RLock()
	showID, ok := l.index[bookingID]
	l.mu.RUnlock()
	if !ok {
		return model.Booking{}, false, ErrNotFound
	}
	sl := l.show(showID)

	check := func(s *Snapshot) (model.Booking, error) {
		b, ok := s.bookings[bookingID]
		if !ok {
			return model.Booking{}, ErrNotFound
		}
		if b.OwnerID != requesterID {
			return model.Booking{}, ErrForbidden
		}
		if !b.Active() && l.opts.CancelPolicy == CancelStrict {
			return model.Booking{}, ErrAlreadyCancelled
		}
		return b, nil
	}

	b, err := check(sl.snap.Load())
	if err != nil {
		return model.Booking{}, false, err
	}
	if !b.Active() {
		return b.Clone(), false, nil
	}

	if err := l.lock(ctx, sl); err != nil {
		return model.Booking{}, false, err
	}
	defer sl.unlock()

	cur := sl.snap.Load()
	if b, err = check(cur); err != nil {
		return model.Booking{}, false, err
	}
	if !b.Active() {
		return b.Clone(), false, nil
	}

	cancelled := b.Cancel(l.opts.Now())
	next := maps.Clone(cur.bookings)
	next[bookingID] = cancelled
	sl.publish(next)
	return cancelled.Clone(), true, nil
}
