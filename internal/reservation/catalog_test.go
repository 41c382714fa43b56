package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
)

func TestMemoryCatalog(t *testing.T) {
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	cat := NewMemoryCatalog(
		model.Show{ID: 3, Title: "late", ScheduledAt: base.Add(4 * time.Hour)},
		model.Show{ID: 1, Title: "past", ScheduledAt: base.Add(-time.Hour)},
		model.Show{ID: 2, Title: "early", ScheduledAt: base, Rows: 2, Cols: 3},
	)
	ctx := context.Background()

	s, err := cat.Show(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultRows, s.Rows)
	assert.Equal(t, model.DefaultCols, s.Cols)

	_, err = cat.Show(ctx, 42)
	assert.ErrorIs(t, err, ErrShowNotFound)

	up, err := cat.Upcoming(ctx, base, 0)
	require.NoError(t, err)
	require.Len(t, up, 2)
	assert.Equal(t, uint64(2), up[0].ID)
	assert.Equal(t, uint64(3), up[1].ID)

	up, err = cat.Upcoming(ctx, base, 1)
	require.NoError(t, err)
	assert.Len(t, up, 1)
}
