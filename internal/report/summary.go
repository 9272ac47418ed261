package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/metrics"
)

// money renders a float64 as a two-decimal currency string via
// decimal, which rounds half-up the way a human expects on a report
// (the engine itself stays float64 end to end).
func money(f float64) string {
	return "$" + decimal.NewFromFloat(f).StringFixed(2)
}

func pct(f float64) string {
	return decimal.NewFromFloat(f * 100).StringFixed(2) + "%"
}

// Summary renders a run's outcome as a fixed-width text block for the
// CLI.
func Summary(result *domain.RunResult, perf metrics.Performance, initialCapital float64) string {
	var b strings.Builder
	w := func(format string, args ...any) { fmt.Fprintf(&b, format+"\n", args...) }

	w("Backtest summary")
	w("  bars:            %d (%d warmup)", result.BarCount, result.WarmupBars)
	w("  initial capital: %s", money(initialCapital))
	w("  final equity:    %s", money(result.FinalEquity))
	w("  total return:    %s", pct(perf.TotalReturn))
	w("  CAGR:            %s", pct(perf.CAGR))
	w("  sharpe:          %.3f", perf.Sharpe)
	w("  sortino:         %.3f", perf.Sortino)
	w("  max drawdown:    %s", pct(perf.MaxDrawdown))
	w("  trades:          %d (%d win / %d loss, win rate %s)",
		perf.TotalTrades, perf.WinningTrades, perf.LosingTrades, pct(perf.WinRate))
	w("  profit factor:   %.3f", perf.ProfitFactor)
	w("  signals:         %d", result.SignalCount)

	if s := result.Stickiness; s != nil {
		w("  holding bars:    median %.0f, p95 %.0f", s.MedianHoldingBars, s.P95HoldingBars)
		w("  exit trigger:    %.3f (chase ratio %.1f)", s.ExitTriggerRate, s.ReferenceChaseRatio)
	}
	if len(result.IdealEquityCurve) > 0 {
		w("  execution drag:  %s%s", pct(result.ExecutionDrag), deathFlag(result.DeathCrossing))
	}
	for _, warn := range result.DataQualityWarnings {
		w("  warning:         %s", warn.Message)
	}
	return b.String()
}

func deathFlag(death bool) string {
	if death {
		return "  [death crossing]"
	}
	return ""
}
