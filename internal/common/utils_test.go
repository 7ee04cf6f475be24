package common

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFoldSet(t *testing.T) {
	s := NewFoldSet("Arrived", " landed ", "")
	require.True(t, s.Contains("arrived"))
	require.True(t, s.Contains("LANDED"))
	require.False(t, s.Contains(""))
	require.False(t, s.Contains("Departed"))
}

func TestFirstNonEmpty(t *testing.T) {
	require.Equal(t, "b", FirstNonEmpty("", "  ", "b", "c"))
	require.Equal(t, "", FirstNonEmpty())
}
