package indicators

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// trueRange computes the true range series for bars. tr[0] is forced
// to NaN since bar 0 has no previous close to compare against; with
// the first value dropped, ATR's lookback is precisely Period rather
// than Period+1.
func trueRange(bars []domain.Bar) []float64 {
	out := make([]float64, len(bars))
	if len(out) == 0 {
		return out
	}
	out[0] = math.NaN()
	for i := 1; i < len(bars); i++ {
		h, l, prevClose := bars[i].High, bars[i].Low, bars[i-1].Close
		if math.IsNaN(h) || math.IsNaN(l) || math.IsNaN(prevClose) {
			out[i] = math.NaN()
			continue
		}
		tr := h - l
		tr = math.Max(tr, math.Abs(h-prevClose))
		tr = math.Max(tr, math.Abs(l-prevClose))
		out[i] = tr
	}
	return out
}

// ATR is Wilder's average true range.
type ATR struct {
	Period int
}

func NewATR(period int) ATR { return ATR{Period: period} }

func (a ATR) Name() string  { return fmt.Sprintf("atr_%d", a.Period) }
func (a ATR) Lookback() int { return a.Period }

func (a ATR) Compute(bars []domain.Bar) []float64 {
	tr := trueRange(bars)
	return wilderSmooth(tr, a.Period)
}
