package indicators

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// AroonUp/AroonDown measure bars since the most recent high/low
// extremum within the trailing Period window: 100*(p -
// bars_since_extremum)/p. Ties favor the most recent occurrence.
type AroonUp struct{ Period int }

func NewAroonUp(period int) AroonUp { return AroonUp{Period: period} }
func (a AroonUp) Name() string      { return fmt.Sprintf("aroon_up_%d", a.Period) }
func (a AroonUp) Lookback() int     { return a.Period }
func (a AroonUp) Compute(bars []domain.Bar) []float64 {
	return aroonSeries(highs(bars), a.Period, true)
}

type AroonDown struct{ Period int }

func NewAroonDown(period int) AroonDown { return AroonDown{Period: period} }
func (a AroonDown) Name() string        { return fmt.Sprintf("aroon_down_%d", a.Period) }
func (a AroonDown) Lookback() int       { return a.Period }
func (a AroonDown) Compute(bars []domain.Bar) []float64 {
	return aroonSeries(lows(bars), a.Period, false)
}

func aroonSeries(v []float64, period int, wantMax bool) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		if i < period {
			out[i] = math.NaN()
			continue
		}
		window := v[i-period : i+1]
		ok := true
		bestIdx := 0
		best := window[0]
		for j, val := range window {
			if math.IsNaN(val) {
				ok = false
				break
			}
			if wantMax {
				if val >= best {
					best = val
					bestIdx = j
				}
			} else {
				if val <= best {
					best = val
					bestIdx = j
				}
			}
		}
		if !ok {
			out[i] = math.NaN()
			continue
		}
		barsSince := period - bestIdx
		out[i] = 100 * (float64(period) - float64(barsSince)) / float64(period)
	}
	return out
}
