package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowLabel(t *testing.T) {
	tests := map[int]string{0: "A", 4: "E", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA", -1: ""}
	for in, want := range tests {
		assert.Equal(t, want, RowLabel(in), "row %d", in)
	}
}

func TestParseSeatKey(t *testing.T) {
	tests := []struct {
		in      string
		want    SeatKey
		wantErr bool
	}{
		{in: "A1", want: SeatKey{Row: 0, Col: 0}},
		{in: "e6", want: SeatKey{Row: 4, Col: 5}},
		{in: " B12 ", want: SeatKey{Row: 1, Col: 11}},
		{in: "AA3", want: SeatKey{Row: 26, Col: 2}},
		{in: "2-3", want: SeatKey{Row: 2, Col: 3}},
		{in: "", wantErr: true},
		{in: "A0", wantErr: true},
		{in: "12", wantErr: true},
		{in: "A", wantErr: true},
		{in: "-1-2", wantErr: true},
		{in: "A1B", wantErr: true},
		{in: "ZZZ1", want: SeatKey{Row: 18277, Col: 0}},
		{in: "ZZZZ1", wantErr: true},
		{in: "ZZZZZZZZZZZZZZ1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSeatKey(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSeat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSeatKey_LabelRoundTrip(t *testing.T) {
	show := Show{Rows: 30, Cols: 12}
	for _, k := range show.Seats() {
		got, err := ParseSeatKey(k.Label())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
}

func TestUniqueSeats(t *testing.T) {
	in := []SeatKey{{1, 2}, {0, 3}, {1, 2}, {0, 1}}
	assert.Equal(t, []SeatKey{{0, 1}, {0, 3}, {1, 2}}, UniqueSeats(in))
	assert.Equal(t, []string{"A2", "A4", "B3"}, SeatLabels(UniqueSeats(in)))
}

func TestBooking_JSON(t *testing.T) {
	b := Booking{
		ID:        "b1",
		ShowID:    1,
		OwnerID:   2,
		Seats:     []SeatKey{{0, 0}, {1, 1}},
		Status:    BookingActive,
		CreatedAt: time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC),
	}
	raw, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"seats":["A1","B2"]`)
	assert.NotContains(t, string(raw), "cancelled_at")
}

func TestBooking_Cancel(t *testing.T) {
	b := Booking{ID: "b1", Seats: []SeatKey{{0, 0}}, Status: BookingActive}
	at := time.Date(2025, 2, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))

	c := b.Cancel(at)
	assert.True(t, b.Active(), "receiver is untouched")
	assert.False(t, c.Active())
	require.NotNil(t, c.CancelledAt)
	assert.Equal(t, time.UTC, c.CancelledAt.Location())

	again := c.Cancel(at.Add(time.Hour))
	assert.Equal(t, c.CancelledAt, again.CancelledAt)

	c.Seats[0] = SeatKey{Row: 3, Col: 3}
	assert.Equal(t, SeatKey{}, b.Seats[0])
}

func TestGrid_StatusJSON(t *testing.T) {
	g := Grid{Rows: 1, Cols: 2, Cells: [][]SeatStatus{{SeatFree, SeatBookedByOther}}}
	raw, err := json.Marshal(g)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"cells":[["FREE","BOOKED_BY_OTHER"]]`)
}
