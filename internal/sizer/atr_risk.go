package sizer

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// AtrRisk sizes so that a stop ATRMultiplier ATRs away risks exactly
// RiskPct of equity: quantity = (equity * RiskPct) / (ATRMultiplier *
// ATR). Returns 0 when ATR is unavailable, NaN, or non-positive.
type AtrRisk struct {
	AtrPeriod     int
	RiskPct       float64
	AtrMultiplier float64
}

func NewAtrRisk(atrPeriod int, riskPct, atrMultiplier float64) AtrRisk {
	return AtrRisk{AtrPeriod: atrPeriod, RiskPct: riskPct, AtrMultiplier: atrMultiplier}
}

func (s AtrRisk) Name() string { return "atr_risk" }
func (s AtrRisk) key() string  { return fmt.Sprintf("atr_%d", s.AtrPeriod) }

func (s AtrRisk) Size(equity float64, intent Intent, bar domain.Bar, values *domain.IndicatorValues, barIndex int) float64 {
	if intent == IntentFlat || equity <= 0 {
		return 0
	}
	if values == nil || !values.Has(s.key()) {
		return 0
	}
	atr := values.At(s.key(), barIndex)
	if math.IsNaN(atr) || atr <= 0 || s.AtrMultiplier <= 0 {
		return 0
	}
	return (equity * s.RiskPct) / (s.AtrMultiplier * atr)
}
