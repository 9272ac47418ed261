package execmodel

import "math"

// ParticipationImpact is a square-root market-impact model: the extra
// slippage (in bps) a fill incurs as a function of how large it is
// relative to the bar's volume, usable as an optional cost
// refinement layered on top of a preset's flat SlippageBps.
type ParticipationImpact struct {
	// ImpactCoefficient (k in impact = k * sqrt(participation)) scales
	// the curve; participation is fillQuantity/barVolume.
	ImpactCoefficient float64
}

func NewParticipationImpact(coefficient float64) ParticipationImpact {
	return ParticipationImpact{ImpactCoefficient: coefficient}
}

// ExtraSlippageBps returns the additional bps of slippage to layer on
// top of a model's flat SlippageBps for a fill of fillQuantity against
// a bar with the given volume. Returns 0 when volume is non-positive
// (no participation basis to compute against).
func (p ParticipationImpact) ExtraSlippageBps(fillQuantity, barVolume float64) float64 {
	if barVolume <= 0 || fillQuantity <= 0 {
		return 0
	}
	participation := fillQuantity / barVolume
	if participation <= 0 {
		return 0
	}
	return p.ImpactCoefficient * math.Sqrt(participation) * 10_000
}
