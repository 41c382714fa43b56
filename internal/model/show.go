package model

import "time"

// Default grid dimensions used when the catalog does not specify a
// layout for a show.
const (
	DefaultRows = 5
	DefaultCols = 6
)

// Show represents a scheduled screening of a movie.  It is the unit a
// seat grid is scoped to and never changes once created.  The seat
// layout is always a Rows x Cols rectangle.
//
// Fields:
//  ID          – primary key identifier.
//  MovieID     – catalog identifier of the movie being screened.
//  Title       – movie title for display purposes.
//  ScheduledAt – when the screening starts (UTC).
//  Rows        – number of seat rows in the grid.
//  Cols        – number of seats per row.
type Show struct {
	ID          uint64    `json:"id"`           // shows.id
	MovieID     uint64    `json:"movie_id"`     // shows.movie_id
	Title       string    `json:"title"`        // shows.title
	ScheduledAt time.Time `json:"scheduled_at"` // shows.scheduled_at
	Rows        int       `json:"rows"`         // shows.seat_rows
	Cols        int       `json:"cols"`         // shows.seat_cols
}

// WithDefaults returns a copy of the show whose missing dimensions have
// been replaced by DefaultRows and DefaultCols.
func (s Show) WithDefaults() Show {
	if s.Rows <= 0 {
		s.Rows = DefaultRows
	}
	if s.Cols <= 0 {
		s.Cols = DefaultCols
	}
	return s
}

// Capacity is the total number of seats in the grid.
func (s Show) Capacity() int { return s.Rows * s.Cols }

// Contains reports whether the seat lies inside the show's rectangle.
func (s Show) Contains(k SeatKey) bool {
	return k.Row >= 0 && k.Row < s.Rows && k.Col >= 0 && k.Col < s.Cols
}

// Seats enumerates every seat of the grid in row-major order.
func (s Show) Seats() []SeatKey {
	out := make([]SeatKey, 0, s.Capacity())
	for r := 0; r < s.Rows; r++ {
		for c := 0; c < s.Cols; c++ {
			out = append(out, SeatKey{Row: r, Col: c})
		}
	}
	return out
}
