package indicators

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// KeltnerUpper/KeltnerLower are EMA(Period) +/- Multiplier*ATR(Period).
type KeltnerUpper struct {
	Period     int
	Multiplier float64
}

func NewKeltnerUpper(period int, mult float64) KeltnerUpper { return KeltnerUpper{period, mult} }
func (k KeltnerUpper) Name() string                         { return fmt.Sprintf("keltner_upper_%d", k.Period) }
func (k KeltnerUpper) Lookback() int                        { return k.Period }
func (k KeltnerUpper) Compute(bars []domain.Bar) []float64 {
	return keltnerBand(bars, k.Period, k.Multiplier, true)
}

type KeltnerLower struct {
	Period     int
	Multiplier float64
}

func NewKeltnerLower(period int, mult float64) KeltnerLower { return KeltnerLower{period, mult} }
func (k KeltnerLower) Name() string                         { return fmt.Sprintf("keltner_lower_%d", k.Period) }
func (k KeltnerLower) Lookback() int                        { return k.Period }
func (k KeltnerLower) Compute(bars []domain.Bar) []float64 {
	return keltnerBand(bars, k.Period, k.Multiplier, false)
}

func keltnerBand(bars []domain.Bar, period int, mult float64, upper bool) []float64 {
	ema := EMA{Period: period}.Compute(bars)
	atr := ATR{Period: period}.Compute(bars)
	out := make([]float64, len(bars))
	for i := range out {
		if math.IsNaN(ema[i]) || math.IsNaN(atr[i]) {
			out[i] = math.NaN()
			continue
		}
		if upper {
			out[i] = ema[i] + mult*atr[i]
		} else {
			out[i] = ema[i] - mult*atr[i]
		}
	}
	return out
}
