package posmanager

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// AtrTrailing trails at close - multiplier*ATR for a long (close +
// multiplier*ATR for a short). Returns Hold when ATR is unavailable,
// NaN, or non-positive — an ATR-dependent PM never attempts a stop
// placement without a finite positive reading.
type AtrTrailing struct {
	AtrPeriod  int
	Multiplier float64
}

func NewAtrTrailing(atrPeriod int, multiplier float64) AtrTrailing {
	return AtrTrailing{AtrPeriod: atrPeriod, Multiplier: multiplier}
}

func (p AtrTrailing) Name() string { return "atr_trailing" }
func (p AtrTrailing) key() string  { return fmt.Sprintf("atr_%d", p.AtrPeriod) }

func (p AtrTrailing) OnBar(position domain.Position, bar domain.Bar, barIndex int, status MarketStatus, values *domain.IndicatorValues) domain.OrderIntent {
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
		return domain.AdjustStop(bar.Close - p.Multiplier*atr)
	}
	return domain.AdjustStop(bar.Close + p.Multiplier*atr)
}
