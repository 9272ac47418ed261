package indicators

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// EMA is the exponential moving average of close, seeded by the SMA of
// the first Period closes, alpha = 2/(Period+1). A NaN contaminates
// every subsequent value, matching Wilder-family propagation rather
// than silently resetting.
type EMA struct {
	Period int
}

func NewEMA(period int) EMA { return EMA{Period: period} }

func (e EMA) Name() string  { return fmt.Sprintf("ema_%d", e.Period) }
func (e EMA) Lookback() int { return e.Period - 1 }

func (e EMA) Compute(bars []domain.Bar) []float64 {
	c := closes(bars)
	out := make([]float64, len(c))
	alpha := 2.0 / (float64(e.Period) + 1.0)

	for i := range c {
		out[i] = math.NaN()
	}
	if len(c) < e.Period {
		return out
	}

	seed := 0.0
	seedValid := true
	for j := 0; j < e.Period; j++ {
		if math.IsNaN(c[j]) {
			seedValid = false
		}
		seed += c[j]
	}
	seed /= float64(e.Period)

	if seedValid {
		out[e.Period-1] = seed
	}

	for i := e.Period; i < len(c); i++ {
		prev := out[i-1]
		if math.IsNaN(prev) || math.IsNaN(c[i]) {
			out[i] = math.NaN()
			continue
		}
		out[i] = alpha*c[i] + (1-alpha)*prev
	}
	return out
}
