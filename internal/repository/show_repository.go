package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql.ErrNoRows
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/reservation"
)

// showRecord mirrors the shows table.
// NOTE: scheduled_at is stored in UTC.
type showRecord struct {
	ID          uint64    `db:"id"`
	MovieID     uint64    `db:"movie_id"`
	Title       string    `db:"title"`
	ScheduledAt time.Time `db:"scheduled_at"`
	Rows        int       `db:"seat_rows"`
	Cols        int       `db:"seat_cols"`
}

func (r showRecord) toModel() model.Show {
	return model.Show{
		ID:          r.ID,
		MovieID:     r.MovieID,
		Title:       r.Title,
		ScheduledAt: r.ScheduledAt.UTC(),
		Rows:        r.Rows,
		Cols:        r.Cols,
	}.WithDefaults()
}

// ShowRepo manages persistence for shows and serves as the catalog in
// mysql mode.
type ShowRepo struct {
	db *sqlx.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sqlx.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// Create inserts a new show and assigns the generated ID back to it.
// Missing dimensions are stored as the defaults.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	*s = s.WithDefaults()
	const q = `INSERT INTO shows (movie_id, title, scheduled_at, seat_rows, seat_cols) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.MovieID, s.Title, s.ScheduledAt.UTC(), s.Rows, s.Cols)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId() // obtain the auto-incremented ID
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// Show retrieves a show by its ID.  It returns
// reservation.ErrShowNotFound if there is no matching row.
func (r *ShowRepo) Show(ctx context.Context, id uint64) (model.Show, error) {
	const q = `SELECT id, movie_id, title, scheduled_at, seat_rows, seat_cols FROM shows WHERE id = ?`
	var rec showRecord
	if err := r.db.GetContext(ctx, &rec, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Show{}, reservation.ErrShowNotFound
		}
		return model.Show{}, err
	}
	return rec.toModel(), nil
}

// Upcoming lists shows scheduled at or after the given time, soonest
// first.
func (r *ShowRepo) Upcoming(ctx context.Context, from time.Time, limit int) ([]model.Show, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	const q = `SELECT id, movie_id, title, scheduled_at, seat_rows, seat_cols
	           FROM shows WHERE scheduled_at >= ? ORDER BY scheduled_at, id LIMIT ?`
	var recs []showRecord
	if err := r.db.SelectContext(ctx, &recs, q, from.UTC(), limit); err != nil {
		return nil, err
	}
	out := make([]model.Show, len(recs))
	for i, rec := range recs {
		out[i] = rec.toModel()
	}
	return out, nil
}
