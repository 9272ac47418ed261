package indicators

import (
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// ParabolicSAR is Wilder's stop-and-reverse trend indicator. AFStep is
// the acceleration-factor increment applied on each new extreme point,
// capped at AFMax.
type ParabolicSAR struct {
	AFStep float64
	AFMax  float64
}

func NewParabolicSAR(afStep, afMax float64) ParabolicSAR {
	return ParabolicSAR{AFStep: afStep, AFMax: afMax}
}

func (p ParabolicSAR) Name() string  { return "parabolic_sar" }
func (p ParabolicSAR) Lookback() int { return 1 }

func (p ParabolicSAR) Compute(bars []domain.Bar) []float64 {
	n := len(bars)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	out[0] = math.NaN()
	if n == 1 {
		return out
	}

	uptrend := bars[1].Close >= bars[0].Close
	af := p.AFStep
	var sar, extreme float64
	if uptrend {
		sar = bars[0].Low
		extreme = bars[1].High
	} else {
		sar = bars[0].High
		extreme = bars[1].Low
	}
	out[1] = sar

	for i := 2; i < n; i++ {
		b := bars[i]
		if math.IsNaN(b.High) || math.IsNaN(b.Low) || math.IsNaN(b.Close) {
			out[i] = math.NaN()
			continue
		}
		nextSAR := sar + af*(extreme-sar)

		if uptrend {
			nextSAR = math.Min(nextSAR, bars[i-1].Low)
			nextSAR = math.Min(nextSAR, bars[i-2].Low)
			if b.Low < nextSAR {
				uptrend = false
				nextSAR = extreme
				extreme = b.Low
				af = p.AFStep
			} else if b.High > extreme {
				extreme = b.High
				af = math.Min(af+p.AFStep, p.AFMax)
			}
		} else {
			nextSAR = math.Max(nextSAR, bars[i-1].High)
			nextSAR = math.Max(nextSAR, bars[i-2].High)
			if b.High > nextSAR {
				uptrend = true
				nextSAR = extreme
				extreme = b.High
				af = p.AFStep
			} else if b.Low < extreme {
				extreme = b.Low
				af = math.Min(af+p.AFStep, p.AFMax)
			}
		}

		sar = nextSAR
		out[i] = sar
	}
	return out
}
