package indicators

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// Supertrend is a stateful trend-following band: the upper band may
// only ratchet down while close stays above it, the lower band may
// only ratchet up while close stays below it, and direction flips when
// close crosses the opposite band.
type Supertrend struct {
	Period     int
	Multiplier float64
}

func NewSupertrend(period int, mult float64) Supertrend { return Supertrend{period, mult} }
func (s Supertrend) Name() string                       { return fmt.Sprintf("supertrend_%d", s.Period) }
func (s Supertrend) Lookback() int                       { return s.Period }

func (s Supertrend) Compute(bars []domain.Bar) []float64 {
	n := len(bars)
	out := make([]float64, n)
	atr := ATR{Period: s.Period}.Compute(bars)

	finalUpper := math.NaN()
	finalLower := math.NaN()
	trendUp := true
	started := false

	for i := 0; i < n; i++ {
		if math.IsNaN(atr[i]) || math.IsNaN(bars[i].High) || math.IsNaN(bars[i].Low) || math.IsNaN(bars[i].Close) {
			out[i] = math.NaN()
			started = false
			continue
		}
		mid := (bars[i].High + bars[i].Low) / 2
		basicUpper := mid + s.Multiplier*atr[i]
		basicLower := mid - s.Multiplier*atr[i]

		if !started {
			finalUpper, finalLower = basicUpper, basicLower
			trendUp = bars[i].Close >= mid
			started = true
		} else {
			prevClose := bars[i-1].Close
			if prevClose <= finalUpper {
				finalUpper = math.Min(basicUpper, finalUpper)
			} else {
				finalUpper = basicUpper
			}
			if prevClose >= finalLower {
				finalLower = math.Max(basicLower, finalLower)
			} else {
				finalLower = basicLower
			}

			if trendUp && bars[i].Close < finalLower {
				trendUp = false
			} else if !trendUp && bars[i].Close > finalUpper {
				trendUp = true
			}
		}

		if trendUp {
			out[i] = finalLower
		} else {
			out[i] = finalUpper
		}
	}
	return out
}
