// Package signalgen implements the C2 signal generators: pure
// functions from bars + precomputed indicators to an optional,
// portfolio-agnostic SignalEvent.
package signalgen

import "github.com/trendlab-go/trendlab/internal/domain"

// Generator produces at most one signal per bar. Evaluate must
// read only bars[0..=barIndex] and indicator values at indices <=
// barIndex, and must never touch portfolio or position state.
type Generator interface {
	Name() string
	WarmupBars() int
	Evaluate(bars []domain.Bar, barIndex int, values *domain.IndicatorValues) (domain.SignalEvent, bool)
}
