package posmanager

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// Chandelier trails at highest_price_since_entry - multiplier*ATR for
// a long (lowest_price_since_entry + multiplier*ATR for a short).
// Like AtrTrailing, returns Hold rather than place a stop off a
// non-finite or non-positive ATR reading.
type Chandelier struct {
	AtrPeriod  int
	Multiplier float64
}

func NewChandelier(atrPeriod int, multiplier float64) Chandelier {
	return Chandelier{AtrPeriod: atrPeriod, Multiplier: multiplier}
}

func (p Chandelier) Name() string { return "chandelier" }
func (p Chandelier) key() string  { return fmt.Sprintf("atr_%d", p.AtrPeriod) }

func (p Chandelier) OnBar(position domain.Position, bar domain.Bar, barIndex int, status MarketStatus, values *domain.IndicatorValues) domain.OrderIntent {
	if position.IsFlat() {
		return domain.Hold()
	}
	if values == nil || !values.Has(p.key()) {
		return domain.Hold()
	}
	atr := values.At(p.key(), barIndex)
	if math.IsNaN(atr) || atr <= 0 {
		return domain.Hold()
	}
	if position.Side == domain.PositionLong {
		return domain.AdjustStop(position.HighestPriceSinceEntry - p.Multiplier*atr)
	}
	return domain.AdjustStop(position.LowestPriceSinceEntry + p.Multiplier*atr)
}
