package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRatchetLongTighteningAllowed(t *testing.T) {
	r := NewRatchetWithLevel(SideLong, 95.0)
	require.Equal(t, 100.0, r.Apply(100.0))
}

func TestRatchetLongLooseningBlocked(t *testing.T) {
	r := NewRatchetWithLevel(SideLong, 100.0)
	require.Equal(t, 100.0, r.Apply(90.0))
}

func TestRatchetShortTighteningAllowed(t *testing.T) {
	r := NewRatchetWithLevel(SideShort, 105.0)
	require.Equal(t, 100.0, r.Apply(100.0))
}

func TestRatchetShortLooseningBlocked(t *testing.T) {
	r := NewRatchetWithLevel(SideShort, 100.0)
	require.Equal(t, 100.0, r.Apply(110.0))
}

func TestRatchetFirstApplyInitializes(t *testing.T) {
	r := NewRatchet(SideLong)
	require.Equal(t, 95.0, r.Apply(95.0))
}

func TestRatchetDisabledAllowsLoosening(t *testing.T) {
	r := NewDisabledRatchet(SideLong)
	require.Equal(t, 100.0, r.Apply(100.0))
	require.Equal(t, 90.0, r.Apply(90.0))
}

func TestRatchetVolatilityTrapScenario(t *testing.T) {
	r := NewRatchetWithLevel(SideLong, 95.0)
	// ATR expands; proposed stop loosens to 90. Blocked.
	require.Equal(t, 95.0, r.Apply(90.0))
}
