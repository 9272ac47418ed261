package posmanager

import "github.com/trendlab-go/trendlab/internal/domain"

// BreakevenThenTrail runs in two phases, detected purely from the
// position's CurrentStop (the PM itself is stateless):
//
//   - Phase 1 (no stop yet at/past breakeven): once unrealized return
//     reaches TriggerPct, move the stop to entry.
//   - Phase 2 (CurrentStop already >= entry for a long, or <= entry
//     for a short): trail at highest/lowest_price_since_entry *
//     (1 -/+ TrailPct).
//
// Before TriggerPct is reached, Hold (no stop placed yet).
type BreakevenThenTrail struct {
	TriggerPct float64
	TrailPct   float64
}

func NewBreakevenThenTrail(triggerPct, trailPct float64) BreakevenThenTrail {
	return BreakevenThenTrail{TriggerPct: triggerPct, TrailPct: trailPct}
}

func (p BreakevenThenTrail) Name() string { return "breakeven_then_trail" }

func (p BreakevenThenTrail) OnBar(position domain.Position, bar domain.Bar, barIndex int, status MarketStatus, values *domain.IndicatorValues) domain.OrderIntent {
	if position.IsFlat() || position.AvgEntryPrice <= 0 {
		return domain.Hold()
	}

	entry := position.AvgEntryPrice
	long := position.Side == domain.PositionLong

	inPhase2 := position.HasStop() &&
		((long && position.CurrentStop >= entry) || (!long && position.CurrentStop <= entry))

	if inPhase2 {
		if long {
			return domain.AdjustStop(position.HighestPriceSinceEntry * (1 - p.TrailPct))
		}
		return domain.AdjustStop(position.LowestPriceSinceEntry * (1 + p.TrailPct))
	}

	var unrealizedPct float64
	if long {
		unrealizedPct = (bar.Close - entry) / entry
	} else {
		unrealizedPct = (entry - bar.Close) / entry
	}
	if unrealizedPct >= p.TriggerPct {
		return domain.AdjustStop(entry)
	}
	return domain.Hold()
}
