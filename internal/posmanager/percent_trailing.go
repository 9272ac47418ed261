package posmanager

import "github.com/trendlab-go/trendlab/internal/domain"

// PercentTrailing trails at highest_price_since_entry*(1-pct) for a
// long (lowest_price_since_entry*(1+pct) for a short). The engine's
// ratchet clamp makes this monotonic even though the raw formula here
// can momentarily propose a looser level after a pullback.
type PercentTrailing struct {
	Pct float64
}

func NewPercentTrailing(pct float64) PercentTrailing { return PercentTrailing{Pct: pct} }
func (p PercentTrailing) Name() string               { return "percent_trailing" }

func (p PercentTrailing) OnBar(position domain.Position, bar domain.Bar, barIndex int, status MarketStatus, values *domain.IndicatorValues) domain.OrderIntent {
	if position.IsFlat() {
		return domain.Hold()
	}
	if position.Side == domain.PositionLong {
		return domain.AdjustStop(position.HighestPriceSinceEntry * (1 - p.Pct))
	}
	return domain.AdjustStop(position.LowestPriceSinceEntry * (1 + p.Pct))
}
