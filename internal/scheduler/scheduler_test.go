package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockCompactor struct {
	mock.Mock
}

func (m *mockCompactor) Compact(ctx context.Context, before time.Time) (int, error) {
	args := m.Called(ctx, before)
	return args.Int(0), args.Error(1)
}

func newTestLogger(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.ErrorLevel)
}

func TestScheduler_Tick_UsesRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	c := new(mockCompactor)
	c.On("Compact", mock.Anything, now.Add(-time.Hour)).Return(2, nil).Once()

	s := New(c, time.Minute, time.Hour, newTestLogger(t))
	s.now = func() time.Time { return now }
	s.tick(context.Background())

	c.AssertExpectations(t)
}

func TestScheduler_Start_Ticks(t *testing.T) {
	c := new(mockCompactor)
	c.On("Compact", mock.Anything, mock.Anything).Return(0, nil)

	s := New(c, 20*time.Millisecond, time.Hour, newTestLogger(t))
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Millisecond)
	defer cancel()
	s.Start(ctx)

	assert.GreaterOrEqual(t, len(c.Calls), 1)
}

func TestScheduler_Start_KeepsGoingAfterError(t *testing.T) {
	c := new(mockCompactor)
	c.On("Compact", mock.Anything, mock.Anything).Return(0, errors.New("busy"))

	s := New(c, 20*time.Millisecond, time.Hour, zerolog.Nop())
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Millisecond)
	defer cancel()
	s.Start(ctx)

	assert.GreaterOrEqual(t, len(c.Calls), 2)
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	s := New(new(mockCompactor), time.Second, time.Hour, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on context cancel")
	}
}

func TestScheduler_DisabledInterval(t *testing.T) {
	c := new(mockCompactor)
	New(c, 0, time.Hour, zerolog.Nop()).Start(context.Background())
	c.AssertNotCalled(t, "Compact", mock.Anything, mock.Anything)
}
