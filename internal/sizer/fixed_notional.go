package sizer

import "github.com/trendlab-go/trendlab/internal/domain"

// FixedNotional orders quantity = Amount / close, returning 0 if close
// <= 0.
type FixedNotional struct {
	Amount float64
}

func NewFixedNotional(amount float64) FixedNotional { return FixedNotional{Amount: amount} }

func (s FixedNotional) Name() string { return "fixed_notional" }

func (s FixedNotional) Size(equity float64, intent Intent, bar domain.Bar, values *domain.IndicatorValues, barIndex int) float64 {
	if intent == IntentFlat || equity <= 0 || s.Amount <= 0 || bar.Close <= 0 {
		return 0
	}
	return s.Amount / bar.Close
}
