// Package reservation implements the seat reservation core: the ledger of
// bookings, the per-viewer seat grid projection, local pending selections,
// the conflict resolver that commits bookings and booking cancellation.
//
// Every rejection is returned as an error value that callers can match
// with errors.Is; SeatConflict additionally carries the colliding seats
// through *SeatConflictError.
package reservation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-booking/internal/model"
)

var (
	// ErrSeatUnavailable rejects toggling a seat booked by another user.
	ErrSeatUnavailable = errors.New("seat unavailable")
	// ErrAlreadyBooked rejects toggling a seat the viewer already booked.
	ErrAlreadyBooked = errors.New("seat already booked by you")
	// ErrEmptySelection rejects confirming an empty pending selection.
	ErrEmptySelection = errors.New("empty selection")
	// ErrSeatConflict is matched by every *SeatConflictError.
	ErrSeatConflict = errors.New("seat conflict")
	// ErrSeatOutOfRange rejects seats outside the show's grid.
	ErrSeatOutOfRange = errors.New("seat outside grid")
	// ErrNotFound is returned when no booking has the requested id.
	ErrNotFound = errors.New("booking not found")
	// ErrForbidden is returned when the requester does not own the booking.
	ErrForbidden = errors.New("forbidden")
	// ErrAlreadyCancelled is returned by strict cancellation of a
	// cancelled booking.
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	// ErrBusy is returned when the show's write lock could not be taken
	// in time.  Callers may retry.
	ErrBusy = errors.New("ledger busy")
	// ErrShowNotFound is returned by catalogs for unknown show ids.
	ErrShowNotFound = errors.New("show not found")
)

// SeatConflictError names the pending seats that are already covered by
// an active booking at confirm time.
type SeatConflictError struct {
	Seats []model.SeatKey
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("%s: %s", ErrSeatConflict, strings.Join(model.SeatLabels(e.Seats), ","))
}

// Is makes errors.Is(err, ErrSeatConflict) hold.
func (e *SeatConflictError) Is(target error) bool { return target == ErrSeatConflict }

// ConflictingSeats extracts the colliding seats from err, or nil when err
// is not a seat conflict.
func ConflictingSeats(err error) []model.SeatKey {
	var ce *SeatConflictError
	if errors.As(err, &ce) {
		return ce.Seats
	}
	return nil
}
