package indicators

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// ADX is the average directional index: directional movement is
// Wilder-smoothed into +DI/-DI, combined into DX, then Wilder-smoothed
// again. Two smoothing passes give it a lookback of 2*Period.
type ADX struct{ Period int }

func NewADX(period int) ADX { return ADX{Period: period} }
func (a ADX) Name() string  { return fmt.Sprintf("adx_%d", a.Period) }
func (a ADX) Lookback() int { return 2 * a.Period }

func (a ADX) Compute(bars []domain.Bar) []float64 {
	n := len(bars)
	dmPlus := make([]float64, n)
	dmMinus := make([]float64, n)
	tr := trueRange(bars)
	if n > 0 {
		dmPlus[0], dmMinus[0] = math.NaN(), math.NaN()
	}
	for i := 1; i < n; i++ {
		h, pHigh := bars[i].High, bars[i-1].High
		l, pLow := bars[i].Low, bars[i-1].Low
		if math.IsNaN(h) || math.IsNaN(pHigh) || math.IsNaN(l) || math.IsNaN(pLow) {
			dmPlus[i], dmMinus[i] = math.NaN(), math.NaN()
			continue
		}
		upMove := h - pHigh
		downMove := pLow - l
		switch {
		case upMove > downMove && upMove > 0:
			dmPlus[i], dmMinus[i] = upMove, 0
		case downMove > upMove && downMove > 0:
			dmPlus[i], dmMinus[i] = 0, downMove
		default:
			dmPlus[i], dmMinus[i] = 0, 0
		}
	}

	smDMPlus := wilderSmooth(dmPlus, a.Period)
	smDMMinus := wilderSmooth(dmMinus, a.Period)
	smTR := wilderSmooth(tr, a.Period)

	diPlus := make([]float64, n)
	diMinus := make([]float64, n)
	dx := make([]float64, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(smDMPlus[i]) || math.IsNaN(smDMMinus[i]) || math.IsNaN(smTR[i]) || smTR[i] == 0 {
			diPlus[i], diMinus[i], dx[i] = math.NaN(), math.NaN(), math.NaN()
			continue
		}
		diPlus[i] = 100 * smDMPlus[i] / smTR[i]
		diMinus[i] = 100 * smDMMinus[i] / smTR[i]
		sum := diPlus[i] + diMinus[i]
		if sum == 0 {
			dx[i] = 0
			continue
		}
		dx[i] = 100 * math.Abs(diPlus[i]-diMinus[i]) / sum
	}

	// Drop the first DX value, as true range drops its first entry, so
	// the second pass seeds over the next Period values and the first
	// ADX lands at index 2*Period.
	for i := range dx {
		if !math.IsNaN(dx[i]) {
			dx[i] = math.NaN()
			break
		}
	}
	return wilderSmooth(dx, a.Period)
}
