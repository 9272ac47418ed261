// Package signalfilter implements the C3 signal filters: stateless
// gates that veto a SignalEvent based on regime, volatility, or
// strength, never mutating portfolio state. A filter that needs an
// indicator which is NaN or absent must reject (fail safe).
package signalfilter

import "github.com/trendlab-go/trendlab/internal/domain"

// Filter passes judgment on a signal without mutating anything.
type Filter interface {
	Name() string
	Evaluate(signal domain.SignalEvent, bars []domain.Bar, barIndex int, values *domain.IndicatorValues) domain.SignalEvaluation
}

// passed builds a Passed evaluation with the given state snapshot.
func passed(signal domain.SignalEvent, filterName string, state map[string]float64) domain.SignalEvaluation {
	return domain.SignalEvaluation{
		SignalEventID: signal.ID,
		FilterName:    filterName,
		Verdict:       domain.VerdictPassed,
		FilterState:   state,
	}
}

func rejected(signal domain.SignalEvent, filterName string, verdict domain.FilterVerdict, state map[string]float64) domain.SignalEvaluation {
	return domain.SignalEvaluation{
		SignalEventID: signal.ID,
		FilterName:    filterName,
		Verdict:       verdict,
		FilterState:   state,
	}
}

// rejectedCustom builds a FilteredByCustom evaluation carrying tag.
func rejectedCustom(signal domain.SignalEvent, filterName, tag string, state map[string]float64) domain.SignalEvaluation {
	return domain.SignalEvaluation{
		SignalEventID: signal.ID,
		FilterName:    filterName,
		Verdict:       domain.VerdictFilteredByCustom,
		CustomTag:     tag,
		FilterState:   state,
	}
}
