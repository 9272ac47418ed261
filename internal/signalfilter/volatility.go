package signalfilter

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// VolatilityBand rejects signals whose ATR-implied volatility falls
// outside [MinAtrPct, MaxAtrPct] of the signal bar's close: too quiet a
// market rarely sustains a breakout, too violent a market blows through
// stops before the trade can develop.
type VolatilityBand struct {
	AtrPeriod int
	MinAtrPct float64
	MaxAtrPct float64
}

func NewVolatilityBand(atrPeriod int, minAtrPct, maxAtrPct float64) VolatilityBand {
	return VolatilityBand{AtrPeriod: atrPeriod, MinAtrPct: minAtrPct, MaxAtrPct: maxAtrPct}
}

func (f VolatilityBand) Name() string { return "volatility_band" }
func (f VolatilityBand) key() string  { return fmt.Sprintf("atr_%d", f.AtrPeriod) }

func (f VolatilityBand) Evaluate(signal domain.SignalEvent, bars []domain.Bar, barIndex int, values *domain.IndicatorValues) domain.SignalEvaluation {
	if !values.Has(f.key()) {
		return rejected(signal, f.Name(), domain.VerdictFilteredByVolatility, nil)
	}
	atr := values.At(f.key(), barIndex)
	close := bars[barIndex].Close
	state := map[string]float64{"atr": atr, "close": close}

	if math.IsNaN(atr) || close == 0 {
		return rejected(signal, f.Name(), domain.VerdictFilteredByVolatility, state)
	}
	atrPct := atr / math.Abs(close)
	state["atr_pct"] = atrPct
	if atrPct < f.MinAtrPct || atrPct > f.MaxAtrPct {
		return rejected(signal, f.Name(), domain.VerdictFilteredByVolatility, state)
	}
	return passed(signal, f.Name(), state)
}

// MinStrength rejects signals whose Strength falls below Threshold.
// Not indicator-dependent, so it never fails unsafe on NaN indicators
// (there are none to read), only on the signal's own strength field.
type MinStrength struct {
	Threshold float64
}

func NewMinStrength(threshold float64) MinStrength { return MinStrength{Threshold: threshold} }

func (f MinStrength) Name() string { return "min_strength" }

func (f MinStrength) Evaluate(signal domain.SignalEvent, bars []domain.Bar, barIndex int, values *domain.IndicatorValues) domain.SignalEvaluation {
	state := map[string]float64{"strength": signal.Strength, "threshold": f.Threshold}
	if signal.Strength < f.Threshold {
		return rejectedCustom(signal, f.Name(), "min_strength", state)
	}
	return passed(signal, f.Name(), state)
}
