package signalfilter

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// AdxTrendStrength rejects signals when the ADX reading at the signal
// bar is below Threshold: a weak-trend regime where trend-following
// entries tend to whipsaw. Fails safe (rejects) on NaN or a missing
// indicator key.
type AdxTrendStrength struct {
	Period    int
	Threshold float64
}

func NewAdxTrendStrength(period int, threshold float64) AdxTrendStrength {
	return AdxTrendStrength{Period: period, Threshold: threshold}
}

func (f AdxTrendStrength) Name() string { return "adx_trend_strength" }

func (f AdxTrendStrength) key() string { return fmt.Sprintf("adx_%d", f.Period) }

func (f AdxTrendStrength) Evaluate(signal domain.SignalEvent, bars []domain.Bar, barIndex int, values *domain.IndicatorValues) domain.SignalEvaluation {
	if !values.Has(f.key()) {
		return rejected(signal, f.Name(), domain.VerdictFilteredByAdx, map[string]float64{"threshold": f.Threshold})
	}
	adx := values.At(f.key(), barIndex)
	state := map[string]float64{"adx_value": adx, "threshold": f.Threshold}
	if math.IsNaN(adx) || adx < f.Threshold {
		return rejected(signal, f.Name(), domain.VerdictFilteredByAdx, state)
	}
	return passed(signal, f.Name(), state)
}
