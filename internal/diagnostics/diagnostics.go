// Package diagnostics derives the per-run health signals: void-bar
// quality warnings and the stickiness metrics that catch trailing
// stops chasing price forever.
package diagnostics

import (
	"fmt"
	"sort"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// voidRateThreshold is the void-bar fraction above which a symbol is
// flagged in the run's data-quality warnings.
const voidRateThreshold = 0.10

// QualityWarnings flags every symbol whose void-bar rate exceeds the
// threshold.
func QualityWarnings(voidRates map[string]float64) []domain.DataQualityWarning {
	symbols := make([]string, 0, len(voidRates))
	for s := range voidRates {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	var warnings []domain.DataQualityWarning
	for _, sym := range symbols {
		rate := voidRates[sym]
		if rate > voidRateThreshold {
			warnings = append(warnings, domain.DataQualityWarning{
				Symbol:  sym,
				Message: fmt.Sprintf("%s: %.0f%% void bars exceeds %.0f%%", sym, rate*100, voidRateThreshold*100),
			})
		}
	}
	return warnings
}

// Stickiness computes the holding-time distribution and exit-trigger
// rate over closed trades. Returns nil when no trade has closed (the
// metrics are undefined then).
func Stickiness(trades []domain.TradeRecord, pmCallsActive, pmCallsTotal int) *domain.StickinessMetrics {
	if len(trades) == 0 {
		return nil
	}

	holds := make([]float64, len(trades))
	over60, over120 := 0, 0
	for i, tr := range trades {
		holds[i] = float64(tr.BarsHeld)
		if tr.BarsHeld > 60 {
			over60++
		}
		if tr.BarsHeld > 120 {
			over120++
		}
	}
	sort.Float64s(holds)

	m := &domain.StickinessMetrics{
		MedianHoldingBars: quantile(holds, 0.5),
		P95HoldingBars:    quantile(holds, 0.95),
		PctOver60Bars:     float64(over60) / float64(len(trades)),
		PctOver120Bars:    float64(over120) / float64(len(trades)),
	}

	if pmCallsTotal > 0 {
		m.ExitTriggerRate = float64(pmCallsActive) / float64(pmCallsTotal)
	}
	if m.ExitTriggerRate > 0 {
		ratio := 1 / m.ExitTriggerRate
		if ratio > 100 {
			ratio = 100
		}
		m.ReferenceChaseRatio = ratio
	} else {
		m.ReferenceChaseRatio = 100
	}
	return m
}

// quantile reads the q-quantile of sorted values with linear
// interpolation.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(pos)
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}
