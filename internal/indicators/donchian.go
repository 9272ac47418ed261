package indicators

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// DonchianUpper is the rolling max of high over Period bars.
type DonchianUpper struct{ Period int }

func NewDonchianUpper(period int) DonchianUpper { return DonchianUpper{Period: period} }
func (d DonchianUpper) Name() string            { return fmt.Sprintf("donchian_upper_%d", d.Period) }
func (d DonchianUpper) Lookback() int           { return d.Period - 1 }
func (d DonchianUpper) Compute(bars []domain.Bar) []float64 {
	return rollingExtreme(highs(bars), d.Period, true)
}

// DonchianLower is the rolling min of low over Period bars.
type DonchianLower struct{ Period int }

func NewDonchianLower(period int) DonchianLower { return DonchianLower{Period: period} }
func (d DonchianLower) Name() string            { return fmt.Sprintf("donchian_lower_%d", d.Period) }
func (d DonchianLower) Lookback() int           { return d.Period - 1 }
func (d DonchianLower) Compute(bars []domain.Bar) []float64 {
	return rollingExtreme(lows(bars), d.Period, false)
}

func rollingExtreme(v []float64, period int, wantMax bool) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		best := v[i-period+1]
		ok := !math.IsNaN(best)
		for j := i - period + 2; j <= i; j++ {
			if math.IsNaN(v[j]) {
				ok = false
				break
			}
			if wantMax && v[j] > best {
				best = v[j]
			}
			if !wantMax && v[j] < best {
				best = v[j]
			}
		}
		if !ok {
			out[i] = math.NaN()
			continue
		}
		out[i] = best
	}
	return out
}
