package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/i474232898/airport-board/internal/cache"
	"github.com/i474232898/airport-board/internal/clock"
	"github.com/i474232898/airport-board/internal/flights"
	"github.com/i474232898/airport-board/internal/logger"
)

func newScheduler(t *testing.T, interval time.Duration, at time.Time) (*Scheduler, *cache.TTL, *clock.Manual) {
	t.Helper()
	loc, err := flights.LoadAirportLocation()
	require.NoError(t, err)
	clk := clock.NewManual(at.In(loc))
	c := cache.New(clk)
	return New(interval, loc, flights.NewGate(loc), c, clk, logger.NewNop()), c, clk
}

func TestSweep_ClearsOnlyWhenClosed(t *testing.T) {
	// Wednesday 2025-03-05 12:00 CST.
	s, c, clk := newScheduler(t, time.Minute, time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC))
	c.Set(flights.CacheKey, "board", time.Hour)

	require.False(t, s.Sweep())
	require.Equal(t, 1, c.Len())

	// 21:30 CST.
	clk.Advance(9*time.Hour + 30*time.Minute)
	require.True(t, s.Sweep())
	require.Equal(t, 0, c.Len())
}

func TestStart_DisabledWithZeroInterval(t *testing.T) {
	s, _, _ := newScheduler(t, 0, time.Now())
	require.NoError(t, s.Start())
	s.Stop()
}

func TestStart_RunsSweep(t *testing.T) {
	// Sunday 2025-03-09 23:00 CDT is closed.
	s, c, _ := newScheduler(t, 10*time.Millisecond, time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC))
	c.Set(flights.CacheKey, "board", time.Hour)

	require.NoError(t, s.Start())
	defer s.Stop()

	require.Eventually(t, func() bool { return c.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
