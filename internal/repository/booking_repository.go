package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/reservation"
)

// bookingRecord mirrors the bookings table.
type bookingRecord struct {
	ID          string       `db:"id"`
	ShowID      uint64       `db:"show_id"`
	OwnerID     uint64       `db:"owner_id"`
	Status      string       `db:"status"`
	CreatedAt   time.Time    `db:"created_at"`
	CancelledAt sql.NullTime `db:"cancelled_at"`
}

// bookingSeatRecord mirrors the booking_seats table.
type bookingSeatRecord struct {
	BookingID string `db:"booking_id"`
	ShowID    uint64 `db:"show_id"`
	Row       int    `db:"seat_row"`
	Col       int    `db:"seat_col"`
}

func (r bookingRecord) toModel() model.Booking {
	b := model.Booking{
		ID:        r.ID,
		ShowID:    r.ShowID,
		OwnerID:   r.OwnerID,
		Status:    model.BookingStatus(r.Status),
		CreatedAt: r.CreatedAt.UTC(),
	}
	if r.CancelledAt.Valid {
		ts := r.CancelledAt.Time.UTC()
		b.CancelledAt = &ts
	}
	return b
}

// BookingRepo stores bookings and their seats.  It is the gateway's
// Store in mysql mode.
type BookingRepo struct {
	db *sqlx.DB
}

func NewBookingRepo(db *sqlx.DB) *BookingRepo { return &BookingRepo{db: db} }

// SaveBooking upserts the booking row and writes its seats once.  Saving
// the same booking again only updates status and cancelled_at, so the
// sync gateway may retry freely.
func (r *BookingRepo) SaveBooking(ctx context.Context, b model.Booking) error {
	if b.ID == "" || len(b.Seats) == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidBooking, b.ID)
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var cancelledAt sql.NullTime
	if b.CancelledAt != nil {
		cancelledAt = sql.NullTime{Time: b.CancelledAt.UTC(), Valid: true}
	}
	const q = `INSERT INTO bookings (id, show_id, owner_id, status, created_at, cancelled_at)
	           VALUES (?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE status = VALUES(status), cancelled_at = VALUES(cancelled_at)`
	if _, err := tx.ExecContext(ctx, q, b.ID, b.ShowID, b.OwnerID, string(b.Status), b.CreatedAt.UTC(), cancelledAt); err != nil {
		return fmt.Errorf("upsert booking %s: %w", b.ID, err)
	}

	query := `INSERT IGNORE INTO booking_seats (booking_id, show_id, seat_row, seat_col) VALUES `
	args := make([]interface{}, 0, len(b.Seats)*4)
	for i, k := range b.Seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, b.ID, b.ShowID, k.Row, k.Col)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert seats of booking %s: %w", b.ID, err)
	}
	return tx.Commit()
}

// ActiveBookings returns the show's active bookings with their seats,
// ordered by creation time.
func (r *BookingRepo) ActiveBookings(ctx context.Context, showID uint64) ([]model.Booking, error) {
	var recs []bookingRecord
	const q = `SELECT id, show_id, owner_id, status, created_at, cancelled_at
	           FROM bookings WHERE show_id = ? AND status = ? ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &recs, q, showID, string(model.BookingActive)); err != nil {
		return nil, fmt.Errorf("select bookings: %w", err)
	}
	return r.withSeats(ctx, recs)
}

// Booking returns one booking with its seats, or reservation.ErrNotFound.
func (r *BookingRepo) Booking(ctx context.Context, id string) (model.Booking, error) {
	var rec bookingRecord
	const q = `SELECT id, show_id, owner_id, status, created_at, cancelled_at
	           FROM bookings WHERE id = ? LIMIT 1`
	if err := r.db.GetContext(ctx, &rec, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Booking{}, reservation.ErrNotFound
		}
		return model.Booking{}, fmt.Errorf("select booking %s: %w", id, err)
	}
	out, err := r.withSeats(ctx, []bookingRecord{rec})
	if err != nil {
		return model.Booking{}, err
	}
	return out[0], nil
}

// ListByOwner returns every booking of the user, newest first.
func (r *BookingRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Booking, error) {
	var recs []bookingRecord
	const q = `SELECT id, show_id, owner_id, status, created_at, cancelled_at
	           FROM bookings WHERE owner_id = ? ORDER BY created_at DESC, id`
	if err := r.db.SelectContext(ctx, &recs, q, ownerID); err != nil {
		return nil, fmt.Errorf("select bookings: %w", err)
	}
	return r.withSeats(ctx, recs)
}

// withSeats loads the seats of all records in one query.
func (r *BookingRepo) withSeats(ctx context.Context, recs []bookingRecord) ([]model.Booking, error) {
	out := make([]model.Booking, len(recs))
	if len(recs) == 0 {
		return out, nil
	}
	index := make(map[string]int, len(recs))
	ids := make([]string, len(recs))
	for i, rec := range recs {
		out[i] = rec.toModel()
		index[rec.ID] = i
		ids[i] = rec.ID
	}

	q, args, err := sqlx.In(`SELECT booking_id, show_id, seat_row, seat_col FROM booking_seats
	                         WHERE booking_id IN (?) ORDER BY booking_id, seat_row, seat_col`, ids)
	if err != nil {
		return nil, err
	}
	var seats []bookingSeatRecord
	if err := r.db.SelectContext(ctx, &seats, r.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("select booking seats (%s): %w", strings.Join(ids, ","), err)
	}
	for _, s := range seats {
		if i, ok := index[s.BookingID]; ok {
			out[i].Seats = append(out[i].Seats, model.SeatKey{Row: s.Row, Col: s.Col})
		}
	}
	return out, nil
}
