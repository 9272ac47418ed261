// Package sizer implements the C5 position sizers: pure functions
// from (equity, intent, bar) to a non-negative order quantity. Every
// variant returns 0 on a Flat intent or non-positive equity.
package sizer

import "github.com/trendlab-go/trendlab/internal/domain"

// Intent is the sizing-relevant subset of a signal/PM decision: the
// direction being sized for. Flat means "do not size a position".
type Intent int

const (
	IntentFlat Intent = iota
	IntentLong
	IntentShort
)

// Sizer turns an equity figure and a directional intent into an
// order quantity.
type Sizer interface {
	Name() string
	Size(equity float64, intent Intent, bar domain.Bar, values *domain.IndicatorValues, barIndex int) float64
}
