package flights

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func chicago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := LoadAirportLocation()
	require.NoError(t, err)
	return loc
}

func TestGate_IsOpen(t *testing.T) {
	loc := chicago(t)
	g := NewGate(loc)

	cases := []struct {
		name string
		at   time.Time
		open bool
	}{
		{"wednesday 06:00", time.Date(2025, 3, 5, 6, 0, 0, 0, loc), true},
		{"wednesday 05:59", time.Date(2025, 3, 5, 5, 59, 0, 0, loc), false},
		{"wednesday 20:59", time.Date(2025, 3, 5, 20, 59, 0, 0, loc), true},
		{"wednesday 21:00", time.Date(2025, 3, 5, 21, 0, 0, 0, loc), false},
		{"saturday 07:00", time.Date(2025, 3, 8, 7, 0, 0, 0, loc), true},
		{"saturday 06:59", time.Date(2025, 3, 8, 6, 59, 0, 0, loc), false},
		{"sunday 18:59", time.Date(2025, 3, 9, 18, 59, 0, 0, loc), true},
		{"sunday 19:00", time.Date(2025, 3, 9, 19, 0, 0, 0, loc), false},
		{"monday 06:30", time.Date(2025, 3, 10, 6, 30, 0, 0, loc), true},
		{"friday 20:00", time.Date(2025, 3, 7, 20, 0, 0, 0, loc), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.open, g.IsOpen(tc.at))
		})
	}
}

func TestGate_UsesAirportZone(t *testing.T) {
	g := NewGate(chicago(t))

	// 11:30 UTC on a Wednesday in March is 05:30 CST.
	require.False(t, g.IsOpen(time.Date(2025, 3, 5, 11, 30, 0, 0, time.UTC)))
	// 12:00 UTC is 06:00 CST.
	require.True(t, g.IsOpen(time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)))
}
