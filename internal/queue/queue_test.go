package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
)

func TestNewBookingEvent(t *testing.T) {
	created := time.Date(2025, 4, 2, 19, 30, 0, 0, time.UTC)
	b := model.Booking{
		ID:        "b-1",
		ShowID:    3,
		OwnerID:   7,
		Seats:     []model.SeatKey{{Row: 0, Col: 0}, {Row: 1, Col: 4}},
		Status:    model.BookingActive,
		CreatedAt: created,
	}

	ev := NewBookingEvent(b)
	assert.Equal(t, EventBookingConfirmed, ev.Type)
	assert.Equal(t, []string{"A1", "B5"}, ev.Seats)
	assert.Equal(t, "2025-04-02T19:30:00Z", ev.OccurredAt)

	cancelled := NewBookingEvent(b.Cancel(created.Add(time.Hour)))
	assert.Equal(t, EventBookingCancelled, cancelled.Type)
	assert.Equal(t, "2025-04-02T20:30:00Z", cancelled.OccurredAt)
}

func TestFormatAuditLine(t *testing.T) {
	line, err := FormatAuditLine(BookingEvent{
		Type: EventBookingConfirmed, BookingID: "b-1", ShowID: 3, OwnerID: 7,
		Seats: []string{"A1", "A2"}, OccurredAt: "2025-04-02T19:30:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, "[2025-04-02T19:30:00Z] Booking confirmed | booking_id=b-1 | owner_id=7 | show_id=3 | seats=[A1,A2]\n", line)

	_, err = FormatAuditLine(BookingEvent{Type: "booking.refunded", BookingID: "b-1"})
	assert.Error(t, err)
	_, err = FormatAuditLine(BookingEvent{Type: EventBookingCancelled})
	assert.Error(t, err)
}

func TestConsumer_HandleMessageAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit", "booking.log")
	c := NewConsumer("", path, zerolog.Nop())

	for _, typ := range []string{EventBookingConfirmed, EventBookingCancelled} {
		body, err := json.Marshal(BookingEvent{Type: typ, BookingID: "b-9", ShowID: 1, OwnerID: 2, Seats: []string{"C3"}})
		require.NoError(t, err)
		require.NoError(t, c.handleMessage(body))
	}
	assert.Error(t, c.handleMessage([]byte("{not json")))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Booking confirmed | booking_id=b-9")
	assert.Contains(t, string(raw), "Booking cancelled | booking_id=b-9")
}
