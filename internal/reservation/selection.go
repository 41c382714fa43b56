package reservation

import (
	"maps"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// Selection is a viewer's local, uncommitted set of seats.  Values are
// immutable: Toggle and Without return new selections and leave the
// receiver untouched, so a previous selection can always be restored.
// The zero value is an empty selection.
type Selection struct {
	seats map[model.SeatKey]struct{}
}

// NewSelection builds a selection from the given seats, dropping
// duplicates.
func NewSelection(seats ...model.SeatKey) Selection {
	m := make(map[model.SeatKey]struct{}, len(seats))
	for _, k := range seats {
		m[k] = struct{}{}
	}
	return Selection{seats: m}
}

// Has reports whether the seat is pending.
func (s Selection) Has(k model.SeatKey) bool {
	_, ok := s.seats[k]
	return ok
}

// Len is the number of pending seats.
func (s Selection) Len() int { return len(s.seats) }

// Seats returns the pending seats in row-major order.
func (s Selection) Seats() []model.SeatKey {
	out := make([]model.SeatKey, 0, len(s.seats))
	for k := range s.seats {
		out = append(out, k)
	}
	return model.SortSeats(out)
}

// Equal reports whether both selections hold the same seats.
func (s Selection) Equal(o Selection) bool {
	return maps.Equal(s.seats, o.seats)
}

// Toggle flips the seat's membership given the viewer's current grid.
// Booked seats are rejected and the selection is returned unchanged:
// BookedByOther with ErrSeatUnavailable, BookedBySelf with
// ErrAlreadyBooked.  Seats outside the grid yield ErrSeatOutOfRange.
func (s Selection) Toggle(k model.SeatKey, grid model.Grid) (Selection, error) {
	status, ok := grid.Status(k)
	if !ok {
		return s, ErrSeatOutOfRange
	}
	switch status {
	case model.SeatBookedByOther:
		return s, ErrSeatUnavailable
	case model.SeatBookedBySelf:
		return s, ErrAlreadyBooked
	}
	next := maps.Clone(s.seats)
	if next == nil {
		next = make(map[model.SeatKey]struct{}, 1)
	}
	if _, held := next[k]; held {
		delete(next, k)
	} else {
		next[k] = struct{}{}
	}
	return Selection{seats: next}, nil
}

// Without returns a copy of the selection minus the given seats.  Callers
// use it after a SeatConflict to keep the seats that did not collide.
func (s Selection) Without(seats ...model.SeatKey) Selection {
	next := maps.Clone(s.seats)
	for _, k := range seats {
		delete(next, k)
	}
	return Selection{seats: next}
}
