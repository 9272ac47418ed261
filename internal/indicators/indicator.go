// Package indicators implements the C1 indicator set: pure
// bars-to-numeric-series transforms with a documented lookback. Every
// Compute implementation must satisfy the look-ahead contract: for any
// cut point k <= len(bars), Compute(bars[:k])[:k] == Compute(bars)[:k].
package indicators

import "github.com/trendlab-go/trendlab/internal/domain"

// Indicator is one named, pure bars-to-series transform.
type Indicator interface {
	// Name is the key this indicator's series is stored under, e.g.
	// "atr_14".
	Name() string
	// Lookback is the number of leading NaN positions Compute
	// produces.
	Lookback() int
	// Compute is a pure function of bars; it must read only bars[i]
	// for i <= the index being produced.
	Compute(bars []domain.Bar) []float64
}

func closes(bars []domain.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

func highs(bars []domain.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}
	return out
}

func lows(bars []domain.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}
	return out
}
