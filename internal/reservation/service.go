package reservation

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// Service is the application layer in front of the ledger.  It resolves
// shows through the catalog, seeds a show from the gateway the first time
// it is touched and hands every committed change back to the gateway.
type Service struct {
	ledger  *Ledger
	catalog Catalog
	gateway Gateway
	log     zerolog.Logger
	seeds   singleflight.Group
}

// NewService wires a service.  gateway may be nil, in which case the
// ledger neither seeds nor persists.
func NewService(ledger *Ledger, catalog Catalog, gateway Gateway, log zerolog.Logger) *Service {
	return &Service{
		ledger:  ledger,
		catalog: catalog,
		gateway: gateway,
		log:     log.With().Str("component", "reservation").Logger(),
	}
}

// Ledger exposes the underlying ledger.
func (s *Service) Ledger() *Ledger { return s.ledger }

// Show returns the show with default dimensions applied, seeding its
// ledger on first access.
func (s *Service) Show(ctx context.Context, showID uint64) (model.Show, error) {
	show, err := s.catalog.Show(ctx, showID)
	if err != nil {
		return model.Show{}, err
	}
	s.ensureSeeded(ctx, showID)
	return show.WithDefaults(), nil
}

// ensureSeeded merges the backend's active bookings into a show's ledger
// once.  Concurrent first requests for the same show share one fetch.  A
// failed fetch is logged and retried on the next request; the show keeps
// serving from local state meanwhile.
func (s *Service) ensureSeeded(ctx context.Context, showID uint64) {
	if s.gateway == nil || s.ledger.Seeded(showID) {
		return
	}
	_, _, _ = s.seeds.Do(strconv.FormatUint(showID, 10), func() (any, error) {
		if s.ledger.Seeded(showID) {
			return nil, nil
		}
		bookings, err := s.gateway.FetchActiveBookings(ctx, showID)
		if err != nil {
			s.log.Warn().Err(err).Uint64("show_id", showID).Msg("seed fetch failed; serving local state")
			return nil, err
		}
		res, err := s.ledger.Seed(ctx, showID, bookings)
		if err != nil {
			s.log.Warn().Err(err).Uint64("show_id", showID).Msg("seed failed")
			return nil, err
		}
		lvl := zerolog.InfoLevel
		if len(res.Skipped) > 0 {
			lvl = zerolog.WarnLevel
		}
		s.log.WithLevel(lvl).Uint64("show_id", showID).Int("added", res.Added).
			Strs("skipped", res.Skipped).Msg("show seeded")
		return nil, nil
	})
}

// Grid projects the show for the viewer.  viewerID 0 is an anonymous
// viewer who owns nothing.
func (s *Service) Grid(ctx context.Context, showID, viewerID uint64, pending Selection) (model.Grid, error) {
	show, err := s.Show(ctx, showID)
	if err != nil {
		return model.Grid{}, err
	}
	return ComputeGrid(show, s.ledger.Snapshot(showID), viewerID, pending), nil
}

// Toggle flips a seat in the viewer's pending selection against the
// current grid and returns the new selection with the refreshed grid.
// On rejection the original selection is returned alongside the error.
func (s *Service) Toggle(ctx context.Context, showID, viewerID uint64, pending Selection, seat model.SeatKey) (Selection, model.Grid, error) {
	show, err := s.Show(ctx, showID)
	if err != nil {
		return pending, model.Grid{}, err
	}
	snap := s.ledger.Snapshot(showID)
	grid := ComputeGrid(show, snap, viewerID, pending)
	next, err := pending.Toggle(seat, grid)
	if err != nil {
		return pending, grid, err
	}
	return next, ComputeGrid(show, snap, viewerID, next), nil
}

// Confirm commits the pending selection for the owner.
func (s *Service) Confirm(ctx context.Context, showID, ownerID uint64, pending Selection) (model.Booking, error) {
	show, err := s.Show(ctx, showID)
	if err != nil {
		return model.Booking{}, err
	}
	b, err := s.ledger.Confirm(ctx, show, ownerID, pending)
	if err != nil {
		s.log.Debug().Err(err).Uint64("show_id", showID).Uint64("owner_id", ownerID).
			Strs("seats", model.SeatLabels(pending.Seats())).Msg("confirm rejected")
		return model.Booking{}, err
	}
	s.log.Info().Str("booking_id", b.ID).Uint64("show_id", showID).Uint64("owner_id", ownerID).
		Strs("seats", model.SeatLabels(b.Seats)).Msg("booking confirmed")
	s.persist(ctx, b)
	return b, nil
}

// Cancel cancels a booking on behalf of the requester.
func (s *Service) Cancel(ctx context.Context, bookingID string, requesterID uint64) (model.Booking, error) {
	b, changed, err := s.ledger.cancel(ctx, bookingID, requesterID)
	if errors.Is(err, ErrNotFound) {
		if err = s.recall(ctx, bookingID); err == nil {
			b, changed, err = s.ledger.cancel(ctx, bookingID, requesterID)
		}
	}
	if err != nil {
		s.log.Debug().Err(err).Str("booking_id", bookingID).Uint64("requester_id", requesterID).Msg("cancel rejected")
		return model.Booking{}, err
	}
	if changed {
		s.log.Info().Str("booking_id", b.ID).Uint64("show_id", b.ShowID).Msg("booking cancelled")
		s.persist(ctx, b)
	}
	return b, nil
}

func (s *Service) persist(ctx context.Context, b model.Booking) {
	if s.gateway == nil {
		return
	}
	if err := s.gateway.Persist(ctx, b); err != nil {
		s.log.Error().Err(err).Str("booking_id", b.ID).Msg("persist booking")
	}
}

// recall brings a booking the ledger does not hold into it from the
// backend.  The booking's show is seeded first, so its active bookings
// arrive together; a cancelled or compacted booking is restored on its
// own.  It returns ErrNotFound when neither side knows the booking.
func (s *Service) recall(ctx context.Context, bookingID string) error {
	if s.gateway == nil {
		return ErrNotFound
	}
	stored, err := s.gateway.FetchBooking(ctx, bookingID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn().Err(err).Str("booking_id", bookingID).Msg("booking lookup failed")
		}
		return err
	}
	s.ensureSeeded(ctx, stored.ShowID)
	if _, ok := s.ledger.Booking(bookingID); ok {
		return nil
	}
	ok, err := s.ledger.Restore(ctx, stored)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Warn().Str("booking_id", bookingID).Uint64("show_id", stored.ShowID).Msg("stored booking rejected by ledger")
		return ErrNotFound
	}
	return nil
}

// Booking returns a booking visible to the requester.
func (s *Service) Booking(ctx context.Context, bookingID string, requesterID uint64) (model.Booking, error) {
	b, ok := s.ledger.Booking(bookingID)
	if !ok {
		if err := s.recall(ctx, bookingID); err != nil {
			return model.Booking{}, err
		}
		if b, ok = s.ledger.Booking(bookingID); !ok {
			return model.Booking{}, ErrNotFound
		}
	}
	if b.OwnerID != requesterID {
		return model.Booking{}, ErrForbidden
	}
	return b, nil
}

// MyBookings lists the owner's bookings, newest first.  The stored history
// is overlaid with the ledger, whose copy of a booking is never older than
// the store's.  When the backend cannot be read only the ledger is listed.
func (s *Service) MyBookings(ctx context.Context, ownerID uint64) []model.Booking {
	live := s.ledger.ListByOwner(ownerID)
	if s.gateway == nil {
		return live
	}
	stored, err := s.gateway.FetchOwnerBookings(ctx, ownerID)
	if err != nil {
		s.log.Warn().Err(err).Uint64("owner_id", ownerID).Msg("booking history unavailable; listing ledger only")
		return live
	}
	seen := make(map[string]bool, len(live))
	for _, b := range live {
		seen[b.ID] = true
	}
	out := live
	for _, b := range stored {
		if !seen[b.ID] && b.OwnerID == ownerID {
			out = append(out, b.Clone())
		}
	}
	newestFirst(out)
	return out
}

// Subscribe registers for change signals of an existing show.
func (s *Service) Subscribe(ctx context.Context, showID uint64) (<-chan uint64, func(), error) {
	if _, err := s.Show(ctx, showID); err != nil {
		return nil, nil, err
	}
	ch, stop := s.ledger.Subscribe(showID)
	return ch, stop, nil
}

// Compact drops bookings cancelled before the cutoff.
func (s *Service) Compact(ctx context.Context, before time.Time) (int, error) {
	n, err := s.ledger.Compact(ctx, before)
	if err != nil {
		return n, err
	}
	if n > 0 {
		s.log.Info().Int("removed", n).Time("before", before).Msg("ledger compacted")
	}
	return n, nil
}
