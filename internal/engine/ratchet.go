package engine

import "math"

// Ratchet enforces the stop-management invariant: a managed stop may
// only tighten, never loosen.
type Ratchet struct {
	currentLevel float64 // NaN when unset
	side         Side
	enabled      bool
}

// Side mirrors domain.PositionSide for the two directions a ratchet
// can guard (Flat never owns a ratchet).
type Side int

const (
	SideLong Side = iota
	SideShort
)

// NewRatchet returns an enabled ratchet with no level set yet.
func NewRatchet(side Side) *Ratchet {
	return &Ratchet{currentLevel: math.NaN(), side: side, enabled: true}
}

// NewRatchetWithLevel seeds the ratchet at an initial level.
func NewRatchetWithLevel(side Side, level float64) *Ratchet {
	return &Ratchet{currentLevel: level, side: side, enabled: true}
}

// NewDisabledRatchet returns a ratchet that allows loosening (used
// for unmanaged stop behavior; the default
// path through the engine always uses an enabled ratchet).
func NewDisabledRatchet(side Side) *Ratchet {
	return &Ratchet{currentLevel: math.NaN(), side: side, enabled: false}
}

// Apply clamps proposed against the current level and returns the
// effective level: for Long, max(current, proposed); for Short,
// min(current, proposed). The very first call simply adopts proposed.
func (r *Ratchet) Apply(proposed float64) float64 {
	if !r.enabled {
		r.currentLevel = proposed
		return proposed
	}
	if math.IsNaN(r.currentLevel) {
		r.currentLevel = proposed
		return proposed
	}
	var effective float64
	if r.side == SideLong {
		effective = math.Max(r.currentLevel, proposed)
	} else {
		effective = math.Min(r.currentLevel, proposed)
	}
	r.currentLevel = effective
	return effective
}

// CurrentLevel returns the current stop level, or NaN if unset.
func (r *Ratchet) CurrentLevel() float64 { return r.currentLevel }

// Reset forces a new level unconditionally, bypassing the ratchet
// clamp.
func (r *Ratchet) Reset(level float64) { r.currentLevel = level }

// Clear drops the current level back to unset.
func (r *Ratchet) Clear() { r.currentLevel = math.NaN() }
