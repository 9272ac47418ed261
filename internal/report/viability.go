// Package report renders run outcomes for humans: a viability grade
// over the computed metrics and money-formatted summaries. Everything
// here is presentation; nothing feeds back into ladder promotion or a
// hashed value.
package report

import (
	"fmt"

	"github.com/trendlab-go/trendlab/internal/metrics"
)

// ViabilityThresholds define the floor a strategy must clear per
// metric to be considered worth trading.
type ViabilityThresholds struct {
	MinSharpe       float64
	MaxDrawdown     float64 // positive fraction, e.g. 0.20
	MinProfitFactor float64
	MinWinRate      float64
	MinTrades       int
	MinSortino      float64
	MinCalmar       float64
	MinExpectancy   float64
}

// DefaultThresholds are moderate floors.
func DefaultThresholds() ViabilityThresholds {
	return ViabilityThresholds{
		MinSharpe:       0.5,
		MaxDrawdown:     0.20,
		MinProfitFactor: 1.5,
		MinWinRate:      0.40,
		MinTrades:       30,
		MinSortino:      0.8,
		MinCalmar:       0.5,
		MinExpectancy:   0,
	}
}

// AggressiveThresholds tolerate more risk.
func AggressiveThresholds() ViabilityThresholds {
	return ViabilityThresholds{
		MinSharpe:       0.3,
		MaxDrawdown:     0.30,
		MinProfitFactor: 1.2,
		MinWinRate:      0.35,
		MinTrades:       20,
		MinSortino:      0.5,
		MinCalmar:       0.3,
		MinExpectancy:   0,
	}
}

// ConservativeThresholds demand more evidence.
func ConservativeThresholds() ViabilityThresholds {
	return ViabilityThresholds{
		MinSharpe:       1.0,
		MaxDrawdown:     0.10,
		MinProfitFactor: 2.0,
		MinWinRate:      0.50,
		MinTrades:       50,
		MinSortino:      1.5,
		MinCalmar:       1.0,
		MinExpectancy:   0.001,
	}
}

// Issue is one threshold the performance failed to clear.
type Issue struct {
	Metric   string
	Actual   float64
	Required float64
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %.3f vs required %.3f", i.Metric, i.Actual, i.Required)
}

// Viability is the graded verdict over one run's performance.
type Viability struct {
	Grade  string // A..F
	Viable bool
	Issues []Issue
}

// Assess grades perf against thresholds: each failed check costs one
// letter grade, and a strategy is viable only with grade C or better.
func Assess(perf metrics.Performance, t ViabilityThresholds) Viability {
	var issues []Issue
	check := func(metric string, actual, required float64, pass bool) {
		if !pass {
			issues = append(issues, Issue{Metric: metric, Actual: actual, Required: required})
		}
	}
	check("sharpe", perf.Sharpe, t.MinSharpe, perf.Sharpe >= t.MinSharpe)
	check("max_drawdown", -perf.MaxDrawdown, t.MaxDrawdown, -perf.MaxDrawdown <= t.MaxDrawdown)
	check("profit_factor", perf.ProfitFactor, t.MinProfitFactor, perf.ProfitFactor >= t.MinProfitFactor)
	check("win_rate", perf.WinRate, t.MinWinRate, perf.WinRate >= t.MinWinRate)
	check("trades", float64(perf.TotalTrades), float64(t.MinTrades), perf.TotalTrades >= t.MinTrades)
	check("sortino", perf.Sortino, t.MinSortino, perf.Sortino >= t.MinSortino)
	check("calmar", perf.Calmar, t.MinCalmar, perf.Calmar >= t.MinCalmar)
	check("expectancy", perf.Expectancy, t.MinExpectancy, perf.Expectancy >= t.MinExpectancy)

	grades := []string{"A", "B", "C", "D", "E", "F"}
	idx := len(issues)
	if idx >= len(grades) {
		idx = len(grades) - 1
	}
	return Viability{
		Grade:  grades[idx],
		Viable: idx <= 2,
		Issues: issues,
	}
}
