// Package metrics computes the scalar performance metrics a RunResult
// feeds into the robustness ladder's fitness selection: Sharpe,
// Sortino, Calmar, CAGR, win rate, profit factor, and max drawdown.
//
// Drawdown is stored as a non-positive fraction so "higher is better"
// numeric comparison ranks shallower drawdowns correctly (-0.05 >
// -0.20).
package metrics

import (
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

const tradingDaysPerYear = 252

// Performance is the computed metric set for one run.
type Performance struct {
	TotalReturn  float64
	CAGR         float64
	Sharpe       float64
	Sortino      float64
	Calmar       float64
	MaxDrawdown  float64 // non-positive fraction
	WinRate      float64
	ProfitFactor float64
	Expectancy   float64
	TotalTrades  int
	WinningTrades int
	LosingTrades  int
}

// Compute derives the full metric set from a run's equity curve and
// closed trades.
func Compute(result *domain.RunResult, initialCapital float64) Performance {
	p := Performance{}
	if result == nil || len(result.EquityCurve) == 0 || initialCapital <= 0 {
		return p
	}

	final := result.FinalEquity
	p.TotalReturn = (final - initialCapital) / initialCapital

	returns := dailyReturns(result.EquityCurve)
	years := float64(len(result.EquityCurve)) / tradingDaysPerYear
	if years > 0 && final > 0 {
		p.CAGR = math.Pow(final/initialCapital, 1/years) - 1
	}

	if len(returns) > 1 {
		avg := mean(returns)
		if sd := stdDev(returns, avg); sd > 0 {
			p.Sharpe = avg / sd * math.Sqrt(tradingDaysPerYear)
		}
		if dd := downsideDev(returns); dd > 0 {
			p.Sortino = avg / dd * math.Sqrt(tradingDaysPerYear)
		}
	}

	p.MaxDrawdown = maxDrawdown(result.EquityCurve)
	if p.MaxDrawdown < 0 {
		p.Calmar = p.CAGR / -p.MaxDrawdown
	}

	p.TotalTrades = len(result.Trades)
	var wins, losses int
	var totalWin, totalLoss float64
	for _, tr := range result.Trades {
		switch {
		case tr.NetPnL > 0:
			wins++
			totalWin += tr.NetPnL
		case tr.NetPnL < 0:
			losses++
			totalLoss += -tr.NetPnL
		}
	}
	p.WinningTrades = wins
	p.LosingTrades = losses
	if p.TotalTrades > 0 {
		p.WinRate = float64(wins) / float64(p.TotalTrades)
	}
	if totalLoss > 0 {
		p.ProfitFactor = totalWin / totalLoss
	} else if totalWin > 0 {
		p.ProfitFactor = math.Inf(1)
	}
	if p.TotalTrades > 0 {
		avgWin, avgLoss := 0.0, 0.0
		if wins > 0 {
			avgWin = totalWin / float64(wins)
		}
		if losses > 0 {
			avgLoss = totalLoss / float64(losses)
		}
		p.Expectancy = p.WinRate*avgWin - (1-p.WinRate)*avgLoss
	}
	return p
}

// dailyReturns converts an equity curve into simple per-bar returns,
// skipping zero-equity points.
func dailyReturns(curve []domain.EquityPoint) []float64 {
	var out []float64
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			continue
		}
		out = append(out, (curve[i].Equity-prev)/prev)
	}
	return out
}

// maxDrawdown returns the deepest peak-to-trough fraction as a
// non-positive value.
func maxDrawdown(curve []domain.EquityPoint) float64 {
	peak := math.Inf(-1)
	worst := 0.0
	for _, pt := range curve {
		if pt.Equity > peak {
			peak = pt.Equity
		}
		if peak > 0 {
			dd := (pt.Equity - peak) / peak
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stdDev(xs []float64, avg float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	ss := 0.0
	for _, x := range xs {
		d := x - avg
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)-1))
}

// downsideDev is the standard deviation of negative returns only,
// against a zero target (Sortino's denominator).
func downsideDev(xs []float64) float64 {
	ss := 0.0
	n := 0
	for _, x := range xs {
		if x < 0 {
			ss += x * x
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(ss / float64(n))
}
