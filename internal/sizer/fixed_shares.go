package sizer

import "github.com/trendlab-go/trendlab/internal/domain"

// FixedShares always orders the same share count, regardless of
// equity or price; a degenerate request sizes to zero rather than a
// negative or NaN quantity.
type FixedShares struct {
	Shares float64
}

func NewFixedShares(shares float64) FixedShares { return FixedShares{Shares: shares} }

func (s FixedShares) Name() string { return "fixed_shares" }

func (s FixedShares) Size(equity float64, intent Intent, bar domain.Bar, values *domain.IndicatorValues, barIndex int) float64 {
	if intent == IntentFlat || equity <= 0 || s.Shares <= 0 {
		return 0
	}
	return s.Shares
}
