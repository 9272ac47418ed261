package signalfilter

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// Regime is the market state a RegimeGate classifies bars into: the
// handful of states a moving-average/ATR classifier can derive
// deterministically from already-precomputed indicators.
type Regime int

const (
	RegimeTrending Regime = iota
	RegimeMeanReverting
	RegimeHighVolatility
)

// RegimeGate rejects breakout-style signals raised while the market is
// classified as mean-reverting or abnormally volatile: a fast/slow SMA
// spread below SlopeThreshold (fraction of price) marks mean-reversion;
// an ATR-to-price ratio above VolThreshold marks high volatility.
// Fails safe on any missing or NaN indicator.
type RegimeGate struct {
	FastPeriod    int
	SlowPeriod    int
	AtrPeriod     int
	SlopeThreshold float64
	VolThreshold   float64
}

func NewRegimeGate(fast, slow, atrPeriod int, slopeThreshold, volThreshold float64) RegimeGate {
	return RegimeGate{FastPeriod: fast, SlowPeriod: slow, AtrPeriod: atrPeriod, SlopeThreshold: slopeThreshold, VolThreshold: volThreshold}
}

func (f RegimeGate) Name() string { return "regime_gate" }

func (f RegimeGate) fastKey() string { return fmt.Sprintf("sma_%d", f.FastPeriod) }
func (f RegimeGate) slowKey() string { return fmt.Sprintf("sma_%d", f.SlowPeriod) }
func (f RegimeGate) atrKey() string  { return fmt.Sprintf("atr_%d", f.AtrPeriod) }

func (f RegimeGate) Evaluate(signal domain.SignalEvent, bars []domain.Bar, barIndex int, values *domain.IndicatorValues) domain.SignalEvaluation {
	if !values.Has(f.fastKey()) || !values.Has(f.slowKey()) || !values.Has(f.atrKey()) {
		return rejected(signal, f.Name(), domain.VerdictFilteredByRegime, nil)
	}
	fast := values.At(f.fastKey(), barIndex)
	slow := values.At(f.slowKey(), barIndex)
	atr := values.At(f.atrKey(), barIndex)
	close := bars[barIndex].Close

	state := map[string]float64{"fast_sma": fast, "slow_sma": slow, "atr": atr, "close": close}
	if math.IsNaN(fast) || math.IsNaN(slow) || math.IsNaN(atr) || close == 0 {
		return rejected(signal, f.Name(), domain.VerdictFilteredByRegime, state)
	}

	volRatio := atr / math.Abs(close)
	if volRatio > f.VolThreshold {
		return rejected(signal, f.Name(), domain.VerdictFilteredByVolatility, state)
	}

	slopeFrac := math.Abs(fast-slow) / math.Abs(close)
	if slopeFrac < f.SlopeThreshold {
		return rejected(signal, f.Name(), domain.VerdictFilteredByRegime, state)
	}
	return passed(signal, f.Name(), state)
}
