package indicators

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// SMA is the rolling arithmetic mean of close over Period bars. A
// single NaN (void bar) anywhere in the window contaminates that
// window's output, matching the "no look-ahead, no silent skip"
// contract used throughout C1.
type SMA struct {
	Period int
}

func NewSMA(period int) SMA { return SMA{Period: period} }

func (s SMA) Name() string  { return fmt.Sprintf("sma_%d", s.Period) }
func (s SMA) Lookback() int { return s.Period - 1 }

func (s SMA) Compute(bars []domain.Bar) []float64 {
	c := closes(bars)
	out := make([]float64, len(c))
	for i := range c {
		if i < s.Period-1 {
			out[i] = math.NaN()
			continue
		}
		sum := 0.0
		for j := i - s.Period + 1; j <= i; j++ {
			sum += c[j]
		}
		out[i] = sum / float64(s.Period)
	}
	return out
}
