package model

import (
	"slices"
	"time"
)

// BookingStatus is the lifecycle state of a booking.  ACTIVE is the only
// state a booking is created in; CANCELLED is terminal.
type BookingStatus string

const (
	BookingActive    BookingStatus = "ACTIVE"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Booking records the seats a user committed for a specific show.  It is
// the only persisted reservation unit; seat availability is always
// derived from the set of active bookings.
//
// Fields:
//  ID          – globally unique identifier generated at confirm time.
//  ShowID      – show the seats belong to.
//  OwnerID     – user who confirmed the booking.
//  Seats       – non-empty, sorted set of seats.
//  Status      – ACTIVE or CANCELLED.
//  CreatedAt   – confirmation timestamp (UTC).
//  CancelledAt – cancellation timestamp, nil while active.
type Booking struct {
	ID          string        `json:"id"`                     // bookings.id
	ShowID      uint64        `json:"show_id"`                // bookings.show_id
	OwnerID     uint64        `json:"owner_id"`               // bookings.owner_id
	Seats       []SeatKey     `json:"seats"`                  // booking_seats rows
	Status      BookingStatus `json:"status"`                 // bookings.status
	CreatedAt   time.Time     `json:"created_at"`             // bookings.created_at
	CancelledAt *time.Time    `json:"cancelled_at,omitempty"` // bookings.cancelled_at (nullable)
}

// Active reports whether the booking still claims its seats.
func (b Booking) Active() bool { return b.Status == BookingActive }

// Cancel returns a cancelled copy of the booking.  Seats and owner are
// never altered.  Cancelling an already cancelled booking returns it
// unchanged.
func (b Booking) Cancel(at time.Time) Booking {
	if b.Status == BookingCancelled {
		return b
	}
	out := b.Clone()
	out.Status = BookingCancelled
	ts := at.UTC()
	out.CancelledAt = &ts
	return out
}

// Clone returns a deep copy so callers cannot alias the seat slice held
// by the ledger.
func (b Booking) Clone() Booking {
	out := b
	out.Seats = slices.Clone(b.Seats)
	if b.CancelledAt != nil {
		ts := *b.CancelledAt
		out.CancelledAt = &ts
	}
	return out
}

// Holds reports whether the booking lists the given seat.
func (b Booking) Holds(k SeatKey) bool { return slices.Contains(b.Seats, k) }
