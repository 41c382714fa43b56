package model

import "fmt"

// SeatStatus is the derived state of a seat as seen by one viewer.  It is
// never stored; it is recomputed from the ledger and the viewer's pending
// selection.
type SeatStatus int

const (
	SeatFree SeatStatus = iota
	SeatHeldBySelf
	SeatBookedBySelf
	SeatBookedByOther
)

var seatStatusNames = [...]string{
	SeatFree:          "FREE",
	SeatHeldBySelf:    "HELD_BY_SELF",
	SeatBookedBySelf:  "BOOKED_BY_SELF",
	SeatBookedByOther: "BOOKED_BY_OTHER",
}

func (s SeatStatus) String() string {
	if s < 0 || int(s) >= len(seatStatusNames) {
		return fmt.Sprintf("SeatStatus(%d)", int(s))
	}
	return seatStatusNames[s]
}

func (s SeatStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Grid is the per-viewer projection of a show's seats.  Cells is indexed
// [row][col].  Version is the ledger version the grid was computed from.
type Grid struct {
	ShowID  uint64         `json:"show_id"`
	Version uint64         `json:"version"`
	Rows    int            `json:"rows"`
	Cols    int            `json:"cols"`
	Cells   [][]SeatStatus `json:"cells"`
}

// Status returns the status of a seat.  Seats outside the grid report
// false.
func (g Grid) Status(k SeatKey) (SeatStatus, bool) {
	if k.Row < 0 || k.Row >= g.Rows || k.Col < 0 || k.Col >= g.Cols {
		return SeatFree, false
	}
	return g.Cells[k.Row][k.Col], true
}

// Count returns how many cells carry the given status.
func (g Grid) Count(status SeatStatus) int {
	n := 0
	for _, row := range g.Cells {
		for _, s := range row {
			if s == status {
				n++
			}
		}
	}
	return n
}
