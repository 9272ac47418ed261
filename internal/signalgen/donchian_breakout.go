package signalgen

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// DonchianBreakout goes long when close breaks above the prior
// EntryLookback-bar high, short when it breaks below the prior
// ExitLookback-bar low. It is the textbook trend-following entry.
type DonchianBreakout struct {
	EntryLookback int
	ExitLookback  int
}

func NewDonchianBreakout(entryLookback, exitLookback int) DonchianBreakout {
	return DonchianBreakout{EntryLookback: entryLookback, ExitLookback: exitLookback}
}

func (d DonchianBreakout) Name() string { return "donchian_breakout" }
func (d DonchianBreakout) WarmupBars() int {
	if d.EntryLookback > d.ExitLookback {
		return d.EntryLookback
	}
	return d.ExitLookback
}

func (d DonchianBreakout) upperKey() string { return fmt.Sprintf("donchian_upper_%d", d.EntryLookback) }
func (d DonchianBreakout) lowerKey() string { return fmt.Sprintf("donchian_lower_%d", d.ExitLookback) }

func (d DonchianBreakout) Evaluate(bars []domain.Bar, barIndex int, values *domain.IndicatorValues) (domain.SignalEvent, bool) {
	if barIndex < d.WarmupBars() || bars[barIndex].IsVoid() {
		return domain.SignalEvent{}, false
	}
	// Breakout must be measured against the PRIOR window, so read the
	// indicator at barIndex-1 and compare to today's close.
	if barIndex == 0 {
		return domain.SignalEvent{}, false
	}
	upper := values.At(d.upperKey(), barIndex-1)
	lower := values.At(d.lowerKey(), barIndex-1)
	close := bars[barIndex].Close

	switch {
	case !math.IsNaN(upper) && close > upper:
		return domain.SignalEvent{
			BarIndex:  barIndex,
			Date:      bars[barIndex].Date,
			Symbol:    bars[barIndex].Symbol,
			Direction: domain.DirectionLong,
			Strength:  1.0,
			Metadata: map[string]float64{
				"breakout_level":  upper,
				"reference_price": close,
				"signal_bar_low":  bars[barIndex].Low,
			},
		}, true
	case !math.IsNaN(lower) && close < lower:
		return domain.SignalEvent{
			BarIndex:  barIndex,
			Date:      bars[barIndex].Date,
			Symbol:    bars[barIndex].Symbol,
			Direction: domain.DirectionShort,
			Strength:  1.0,
			Metadata: map[string]float64{
				"breakout_level":  lower,
				"reference_price": close,
				"signal_bar_low":  bars[barIndex].Low,
			},
		}, true
	default:
		return domain.SignalEvent{}, false
	}
}
