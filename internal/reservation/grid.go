package reservation

import "github.com/iliyamo/cinema-booking/internal/model"

// ComputeGrid projects the snapshot and the viewer's pending selection
// onto the show's seat rectangle.  A seat covered by an active booking is
// BookedBySelf or BookedByOther depending on its owner; otherwise it is
// HeldBySelf when pending and Free when not.  Pending seats outside the
// rectangle are ignored.  The function has no side effects.
func ComputeGrid(show model.Show, snap *Snapshot, viewerID uint64, pending Selection) model.Grid {
	if snap == nil {
		snap = emptySnapshot(show.ID)
	}
	g := model.Grid{
		ShowID:  show.ID,
		Version: snap.Version,
		Rows:    show.Rows,
		Cols:    show.Cols,
		Cells:   make([][]model.SeatStatus, show.Rows),
	}
	for r := 0; r < show.Rows; r++ {
		row := make([]model.SeatStatus, show.Cols)
		for c := 0; c < show.Cols; c++ {
			k := model.SeatKey{Row: r, Col: c}
			switch claim, ok := snap.Claim(k); {
			case ok && claim.OwnerID == viewerID:
				row[c] = model.SeatBookedBySelf
			case ok:
				row[c] = model.SeatBookedByOther
			case pending.Has(k):
				row[c] = model.SeatHeldBySelf
			default:
				row[c] = model.SeatFree
			}
		}
		g.Cells[r] = row
	}
	return g
}
