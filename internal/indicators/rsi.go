package indicators

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// RSI is Wilder's relative strength index: Wilder-smoothed average
// gain and average loss over Period bars, with the standard
// boundary rules (avg_loss==0 -> 100, avg_gain==0 -> 0, both zero ->
// 50).
type RSI struct{ Period int }

func NewRSI(period int) RSI { return RSI{Period: period} }
func (r RSI) Name() string  { return fmt.Sprintf("rsi_%d", r.Period) }
func (r RSI) Lookback() int { return r.Period }

func (r RSI) Compute(bars []domain.Bar) []float64 {
	c := closes(bars)
	gains := make([]float64, len(c))
	losses := make([]float64, len(c))
	gains[0], losses[0] = math.NaN(), math.NaN()
	for i := 1; i < len(c); i++ {
		if math.IsNaN(c[i]) || math.IsNaN(c[i-1]) {
			gains[i], losses[i] = math.NaN(), math.NaN()
			continue
		}
		delta := c[i] - c[i-1]
		if delta > 0 {
			gains[i], losses[i] = delta, 0
		} else {
			gains[i], losses[i] = 0, -delta
		}
	}

	avgGain := wilderSmooth(gains, r.Period)
	avgLoss := wilderSmooth(losses, r.Period)

	out := make([]float64, len(c))
	for i := range c {
		g, l := avgGain[i], avgLoss[i]
		if math.IsNaN(g) || math.IsNaN(l) {
			out[i] = math.NaN()
			continue
		}
		switch {
		case g == 0 && l == 0:
			out[i] = 50
		case l == 0:
			out[i] = 100
		case g == 0:
			out[i] = 0
		default:
			rs := g / l
			out[i] = 100 - 100/(1+rs)
		}
	}
	return out
}
