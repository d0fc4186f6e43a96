package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pharmadash/internal/company"
)

type countingSource struct{ calls int }

func (c *countingSource) Name() string { return "counting" }
func (c *countingSource) Price(context.Context, company.Company) (float64, error) {
	c.calls++
	return 1, nil
}

func TestTokenBucket_BurstThenDeadline(t *testing.T) {
	t.Parallel()

	src := &countingSource{}
	limited := Wrap(src, 1, 2, 0) // one per minute, burst of two

	for i := 0; i < 2; i++ {
		_, err := limited.Price(t.Context(), company.Company{})
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()
	_, err := limited.Price(ctx, company.Company{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 2, src.calls)
}

func TestMinInterval_Spaces(t *testing.T) {
	t.Parallel()

	m := &MinInterval{Interval: 30 * time.Millisecond}
	start := time.Now()
	require.NoError(t, m.Wait(t.Context()))
	require.NoError(t, m.Wait(t.Context()))
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestMinInterval_Canceled(t *testing.T) {
	t.Parallel()

	m := &MinInterval{Interval: time.Hour}
	require.NoError(t, m.Wait(t.Context()))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	require.ErrorIs(t, m.Wait(ctx), context.Canceled)
}

func TestWrap_NoLimits(t *testing.T) {
	t.Parallel()

	src := &countingSource{}
	require.Same(t, src, Wrap(src, 0, 0, 0))
}

func TestTokenBucket_RefillsOneSlotPerInterval(t *testing.T) {
	t.Parallel()

	// Arrange
	clock := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	tb := NewTokenBucket(12*time.Second, 1)
	tb.now = func() time.Time { return clock }
	tb.updated = clock

	// Act / Assert
	_, ok := tb.take()
	require.True(t, ok)

	wait, ok := tb.take()
	require.False(t, ok)
	require.Equal(t, 12*time.Second, wait)

	clock = clock.Add(9 * time.Second)
	wait, ok = tb.take()
	require.False(t, ok)
	require.Equal(t, 3*time.Second, wait)

	clock = clock.Add(3 * time.Second)
	_, ok = tb.take()
	require.True(t, ok)
}
