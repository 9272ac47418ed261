package posmanager

import "github.com/trendlab-go/trendlab/internal/domain"

// FixedStopLoss places a stop at entry*(1-pct) for a long (entry*(1+pct)
// for a short) exactly once, then Holds forever.
type FixedStopLoss struct {
	Pct float64
}

func NewFixedStopLoss(pct float64) FixedStopLoss { return FixedStopLoss{Pct: pct} }
func (p FixedStopLoss) Name() string             { return "fixed_stop_loss" }

func (p FixedStopLoss) OnBar(position domain.Position, bar domain.Bar, barIndex int, status MarketStatus, values *domain.IndicatorValues) domain.OrderIntent {
	if position.IsFlat() || position.HasStop() {
		return domain.Hold()
	}
	if position.Side == domain.PositionLong {
		return domain.AdjustStop(position.AvgEntryPrice * (1 - p.Pct))
	}
	return domain.AdjustStop(position.AvgEntryPrice * (1 + p.Pct))
}

// FrozenReference is mechanically identical to FixedStopLoss: a stop
// fixed relative to the entry reference price, placed once and never
// revisited. Kept as a distinct named variant for composition and
// hashing purposes even though the formula is shared.
type FrozenReference struct {
	Pct float64
}

func NewFrozenReference(pct float64) FrozenReference { return FrozenReference{Pct: pct} }
func (p FrozenReference) Name() string                { return "frozen_reference" }

func (p FrozenReference) OnBar(position domain.Position, bar domain.Bar, barIndex int, status MarketStatus, values *domain.IndicatorValues) domain.OrderIntent {
	return FixedStopLoss{Pct: p.Pct}.OnBar(position, bar, barIndex, status, values)
}
