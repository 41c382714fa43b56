// Package queue carries booking events over RabbitMQ: the payload type, a
// publisher used by the sync gateway and the audit consumer.
package queue

import (
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// BookingQueue is the durable queue every booking event is routed to.
const BookingQueue = "booking.events"

// Event types.
const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is published after a booking change has been stored by the
// backend.  It carries enough information for downstream consumers to log
// or notify without querying the primary database.
type BookingEvent struct {
	Type       string   `json:"type"`
	BookingID  string   `json:"booking_id"`
	ShowID     uint64   `json:"show_id"`
	OwnerID    uint64   `json:"owner_id"`
	Seats      []string `json:"seats"`
	OccurredAt string   `json:"occurred_at"` // RFC3339, UTC
}

// NewBookingEvent derives the event for the booking's current state.
func NewBookingEvent(b model.Booking) BookingEvent {
	ev := BookingEvent{
		Type:       EventBookingConfirmed,
		BookingID:  b.ID,
		ShowID:     b.ShowID,
		OwnerID:    b.OwnerID,
		Seats:      model.SeatLabels(b.Seats),
		OccurredAt: b.CreatedAt.UTC().Format(time.RFC3339),
	}
	if !b.Active() {
		ev.Type = EventBookingCancelled
		if b.CancelledAt != nil {
			ev.OccurredAt = b.CancelledAt.UTC().Format(time.RFC3339)
		}
	}
	return ev
}
