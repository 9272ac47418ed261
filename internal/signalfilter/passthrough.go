package signalfilter

import "github.com/trendlab-go/trendlab/internal/domain"

// Passthrough accepts every signal. It exists so compositions that
// want no gating still carry a filter slot (and hash distinctly from
// compositions that do).
type Passthrough struct{}

func NewPassthrough() Passthrough { return Passthrough{} }

func (Passthrough) Name() string { return "passthrough" }

func (Passthrough) Evaluate(signal domain.SignalEvent, bars []domain.Bar, barIndex int, values *domain.IndicatorValues) domain.SignalEvaluation {
	return passed(signal, "passthrough", nil)
}
