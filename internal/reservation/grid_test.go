package reservation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
)

func TestComputeGrid(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(Options{})
	_, err := l.Confirm(ctx, testShow, 1, pick(t, "A1", "A2"))
	require.NoError(t, err)
	_, err = l.Confirm(ctx, testShow, 2, pick(t, "B3"))
	require.NoError(t, err)

	g := ComputeGrid(testShow, l.Snapshot(testShow.ID), 1, pick(t, "C1", "A1", "Z9"))

	assert.Equal(t, uint64(2), g.Version)
	assert.Equal(t, 5, g.Rows)
	assert.Equal(t, 6, g.Cols)
	require.Len(t, g.Cells, 5)

	status := func(label string) model.SeatStatus {
		s, ok := g.Status(seatKeys(t, label)[0])
		require.True(t, ok)
		return s
	}
	assert.Equal(t, model.SeatBookedBySelf, status("A1"), "booked beats pending")
	assert.Equal(t, model.SeatBookedBySelf, status("A2"))
	assert.Equal(t, model.SeatBookedByOther, status("B3"))
	assert.Equal(t, model.SeatHeldBySelf, status("C1"))
	assert.Equal(t, model.SeatFree, status("E6"))

	assert.Equal(t, 1, g.Count(model.SeatHeldBySelf))
	assert.Equal(t, testShow.Capacity()-4, g.Count(model.SeatFree))

	// The same snapshot seen by another viewer.
	g2 := ComputeGrid(testShow, l.Snapshot(testShow.ID), 2, Selection{})
	s, _ := g2.Status(seatKeys(t, "A1")[0])
	assert.Equal(t, model.SeatBookedByOther, s)
	s, _ = g2.Status(seatKeys(t, "B3")[0])
	assert.Equal(t, model.SeatBookedBySelf, s)
}

func TestComputeGrid_NilSnapshot(t *testing.T) {
	g := ComputeGrid(testShow, nil, 0, Selection{})
	assert.Equal(t, testShow.Capacity(), g.Count(model.SeatFree))
	assert.Zero(t, g.Version)

	_, ok := g.Status(model.SeatKey{Row: 5, Col: 0})
	assert.False(t, ok)
}

func TestSelection_Toggle(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(Options{})
	_, err := l.Confirm(ctx, testShow, 1, pick(t, "A1"))
	require.NoError(t, err)
	_, err = l.Confirm(ctx, testShow, 2, pick(t, "A2"))
	require.NoError(t, err)

	var sel Selection
	grid := ComputeGrid(testShow, l.Snapshot(testShow.ID), 1, sel)

	tests := []struct {
		name    string
		seat    string
		wantErr error
	}{
		{name: "booked by other", seat: "A2", wantErr: ErrSeatUnavailable},
		{name: "booked by self", seat: "A1", wantErr: ErrAlreadyBooked},
		{name: "outside grid", seat: "A7", wantErr: ErrSeatOutOfRange},
		{name: "free", seat: "B2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := sel.Toggle(seatKeys(t, tt.seat)[0], grid)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, next.Equal(sel))
				return
			}
			require.NoError(t, err)
			assert.True(t, next.Has(seatKeys(t, tt.seat)[0]))
			assert.Zero(t, sel.Len(), "receiver must not change")
		})
	}
}

func TestSelection_ToggleTwiceRestores(t *testing.T) {
	grid := ComputeGrid(testShow, nil, 1, Selection{})
	start := pick(t, "C4", "D5")

	for _, k := range testShow.Seats() {
		once, err := start.Toggle(k, grid)
		require.NoError(t, err)
		twice, err := once.Toggle(k, grid)
		require.NoError(t, err)
		assert.True(t, twice.Equal(start), k.Label())
	}
}

func TestSelection_Without(t *testing.T) {
	sel := pick(t, "A1", "A2", "A3")
	rest := sel.Without(seatKeys(t, "A2", "E5")...)

	assert.Equal(t, seatKeys(t, "A1", "A3"), rest.Seats())
	assert.Equal(t, 3, sel.Len())
	assert.Equal(t, 0, Selection{}.Without(seatKeys(t, "A1")...).Len())
}
