package signalgen

import (
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// MomentumROC signals on every bar where the rate of change over
// Lookback bars is at or beyond Threshold (long at or above it, short
// at or below the negated threshold).
// It reads closes directly rather than a precomputed series; the
// window ends at barIndex, so the look-ahead contract holds.
type MomentumROC struct {
	Lookback  int
	Threshold float64 // fractional, e.g. 0.05 for 5%
}

func NewMomentumROC(lookback int, threshold float64) MomentumROC {
	return MomentumROC{Lookback: lookback, Threshold: threshold}
}

func (m MomentumROC) Name() string    { return "momentum_roc" }
func (m MomentumROC) WarmupBars() int { return m.Lookback }

func (m MomentumROC) Evaluate(bars []domain.Bar, barIndex int, values *domain.IndicatorValues) (domain.SignalEvent, bool) {
	if barIndex < m.Lookback || bars[barIndex].IsVoid() {
		return domain.SignalEvent{}, false
	}
	ref := bars[barIndex-m.Lookback].Close
	now := bars[barIndex].Close
	if math.IsNaN(ref) || math.IsNaN(now) || ref == 0 {
		return domain.SignalEvent{}, false
	}
	roc := (now - ref) / ref

	var direction domain.Direction
	switch {
	case roc >= m.Threshold:
		direction = domain.DirectionLong
	case roc <= -m.Threshold:
		direction = domain.DirectionShort
	default:
		return domain.SignalEvent{}, false
	}

	bar := bars[barIndex]
	strength := math.Abs(roc) / (2 * m.Threshold)
	if strength > 1 {
		strength = 1
	}
	return domain.SignalEvent{
		BarIndex:  barIndex,
		Date:      bar.Date,
		Symbol:    bar.Symbol,
		Direction: direction,
		Strength:  strength,
		Metadata: map[string]float64{
			"roc_value":       roc,
			"momentum_value":  now - ref,
			"breakout_level":  now,
			"reference_price": now,
			"signal_bar_low":  bar.Low,
		},
	}, true
}
