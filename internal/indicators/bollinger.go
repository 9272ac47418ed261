package indicators

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// BollingerUpper/BollingerLower are SMA +/- K standard deviations
// (population, not sample) of close over Period bars.
type BollingerUpper struct {
	Period int
	K      float64
}

func NewBollingerUpper(period int, k float64) BollingerUpper { return BollingerUpper{period, k} }
func (b BollingerUpper) Name() string                        { return fmt.Sprintf("bollinger_upper_%d", b.Period) }
func (b BollingerUpper) Lookback() int                       { return b.Period - 1 }
func (b BollingerUpper) Compute(bars []domain.Bar) []float64 {
	mid, sd := bollingerMidAndStdDev(bars, b.Period)
	out := make([]float64, len(mid))
	for i := range out {
		if math.IsNaN(mid[i]) {
			out[i] = math.NaN()
			continue
		}
		out[i] = mid[i] + b.K*sd[i]
	}
	return out
}

type BollingerLower struct {
	Period int
	K      float64
}

func NewBollingerLower(period int, k float64) BollingerLower { return BollingerLower{period, k} }
func (b BollingerLower) Name() string                        { return fmt.Sprintf("bollinger_lower_%d", b.Period) }
func (b BollingerLower) Lookback() int                       { return b.Period - 1 }
func (b BollingerLower) Compute(bars []domain.Bar) []float64 {
	mid, sd := bollingerMidAndStdDev(bars, b.Period)
	out := make([]float64, len(mid))
	for i := range out {
		if math.IsNaN(mid[i]) {
			out[i] = math.NaN()
			continue
		}
		out[i] = mid[i] - b.K*sd[i]
	}
	return out
}

func bollingerMidAndStdDev(bars []domain.Bar, period int) (mid, sd []float64) {
	sma := SMA{Period: period}
	mid = sma.Compute(bars)
	c := closes(bars)
	sd = make([]float64, len(c))
	for i := range c {
		if i < period-1 || math.IsNaN(mid[i]) {
			sd[i] = math.NaN()
			continue
		}
		var sumSq float64
		for j := i - period + 1; j <= i; j++ {
			d := c[j] - mid[i]
			sumSq += d * d
		}
		sd[i] = math.Sqrt(sumSq / float64(period))
	}
	return mid, sd
}
