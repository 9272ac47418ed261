package ladder

import (
	"fmt"

	"github.com/trendlab-go/trendlab/internal/metrics"
)

// FitnessMetric selects which scalar from a run's performance feeds
// the stability score. All variants are "higher is better" under
// plain numeric comparison; MaxDrawdown is stored non-positive so
// -0.05 ranks above -0.20.
type FitnessMetric int

const (
	FitnessSharpe FitnessMetric = iota
	FitnessSortino
	FitnessCalmar
	FitnessCAGR
	FitnessWinRate
	FitnessProfitFactor
	FitnessMaxDrawdown
)

func (m FitnessMetric) String() string {
	switch m {
	case FitnessSortino:
		return "sortino"
	case FitnessCalmar:
		return "calmar"
	case FitnessCAGR:
		return "cagr"
	case FitnessWinRate:
		return "win_rate"
	case FitnessProfitFactor:
		return "profit_factor"
	case FitnessMaxDrawdown:
		return "max_drawdown"
	default:
		return "sharpe"
	}
}

// ParseFitnessMetric maps a config string onto a FitnessMetric.
func ParseFitnessMetric(s string) (FitnessMetric, error) {
	switch s {
	case "sharpe", "":
		return FitnessSharpe, nil
	case "sortino":
		return FitnessSortino, nil
	case "calmar":
		return FitnessCalmar, nil
	case "cagr":
		return FitnessCAGR, nil
	case "win_rate":
		return FitnessWinRate, nil
	case "profit_factor":
		return FitnessProfitFactor, nil
	case "max_drawdown":
		return FitnessMaxDrawdown, nil
	default:
		return FitnessSharpe, fmt.Errorf("ladder: unknown fitness metric %q", s)
	}
}

// Value extracts the selected scalar from a computed performance set.
func (m FitnessMetric) Value(p metrics.Performance) float64 {
	switch m {
	case FitnessSortino:
		return p.Sortino
	case FitnessCalmar:
		return p.Calmar
	case FitnessCAGR:
		return p.CAGR
	case FitnessWinRate:
		return p.WinRate
	case FitnessProfitFactor:
		return p.ProfitFactor
	case FitnessMaxDrawdown:
		return p.MaxDrawdown
	default:
		return p.Sharpe
	}
}
