package reservation

import "github.com/iliyamo/cinema-booking/internal/model"

// SeatClaim records which active booking covers a seat.
type SeatClaim struct {
	BookingID string
	OwnerID   uint64
}

// Snapshot is an immutable view of one show's bookings at a given ledger
// version.  Snapshots are shared between goroutines and are never
// mutated after publication; writers build a fresh one per commit.
type Snapshot struct {
	ShowID   uint64
	Version  uint64
	claims   map[model.SeatKey]SeatClaim
	bookings map[string]model.Booking
}

// emptySnapshot is the state of a show nobody has booked yet.
func emptySnapshot(showID uint64) *Snapshot {
	return &Snapshot{
		ShowID:   showID,
		claims:   map[model.SeatKey]SeatClaim{},
		bookings: map[string]model.Booking{},
	}
}

// buildSnapshot indexes the seats of every active booking.  It takes
// ownership of the bookings map.
func buildSnapshot(showID, version uint64, bookings map[string]model.Booking) *Snapshot {
	claims := make(map[model.SeatKey]SeatClaim)
	for _, b := range bookings {
		if !b.Active() {
			continue
		}
		for _, k := range b.Seats {
			claims[k] = SeatClaim{BookingID: b.ID, OwnerID: b.OwnerID}
		}
	}
	return &Snapshot{ShowID: showID, Version: version, claims: claims, bookings: bookings}
}

// Claim returns the active booking covering the seat, if any.
func (s *Snapshot) Claim(k model.SeatKey) (SeatClaim, bool) {
	c, ok := s.claims[k]
	return c, ok
}

// Booked returns the number of seats claimed by active bookings.
func (s *Snapshot) Booked() int { return len(s.claims) }

// Booking returns a copy of the booking with the given id.
func (s *Snapshot) Booking(id string) (model.Booking, bool) {
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, false
	}
	return b.Clone(), true
}

// Bookings returns copies of every booking of the show, active and
// cancelled, in no particular order.
func (s *Snapshot) Bookings() []model.Booking {
	out := make([]model.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b.Clone())
	}
	return out
}

// ActiveBookings returns copies of the show's active bookings.
func (s *Snapshot) ActiveBookings() []model.Booking {
	out := make([]model.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		if b.Active() {
			out = append(out, b.Clone())
		}
	}
	return out
}
