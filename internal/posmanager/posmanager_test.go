package posmanager

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trendlab-go/trendlab/internal/domain"
)

func longPosition(entry, close float64) domain.Position {
	p := domain.NewFlatPosition("TEST")
	p.Side = domain.PositionLong
	p.Quantity = 10
	p.AvgEntryPrice = entry
	p.HighestPriceSinceEntry = close
	p.LowestPriceSinceEntry = entry
	return p
}

func realBar(close float64) domain.Bar {
	return domain.Bar{Symbol: "TEST", Open: close, High: close + 1, Low: close - 1, Close: close}
}

// Fixed stop is placed exactly once; once the position has a stop,
// every subsequent call Holds.
func TestFixedStopPlacedOnce(t *testing.T) {
	pm := NewFixedStopLoss(0.05)
	pos := longPosition(100, 102)

	intent := pm.OnBar(pos, realBar(102), 5, MarketOpen, nil)
	require.Equal(t, domain.IntentAdjustStop, intent.Action)
	require.InDelta(t, 95.0, intent.StopPrice, 1e-10)

	pos.CurrentStop = 95
	intent = pm.OnBar(pos, realBar(104), 6, MarketOpen, nil)
	require.Equal(t, domain.IntentHold, intent.Action)
}

func TestFixedStopShortSide(t *testing.T) {
	pm := NewFixedStopLoss(0.05)
	pos := longPosition(100, 98)
	pos.Side = domain.PositionShort

	intent := pm.OnBar(pos, realBar(98), 5, MarketOpen, nil)
	require.Equal(t, domain.IntentAdjustStop, intent.Action)
	require.InDelta(t, 105.0, intent.StopPrice, 1e-10)
}

func TestPercentTrailingTracksWatermark(t *testing.T) {
	pm := NewPercentTrailing(0.10)
	pos := longPosition(100, 120)
	pos.HighestPriceSinceEntry = 120

	intent := pm.OnBar(pos, realBar(118), 9, MarketOpen, nil)
	require.Equal(t, domain.IntentAdjustStop, intent.Action)
	require.InDelta(t, 108.0, intent.StopPrice, 1e-10)
}

// An ATR-dependent PM without a finite positive ATR must Hold, never
// attempt a stop.
func TestAtrTrailingHoldsWithoutATR(t *testing.T) {
	pm := NewAtrTrailing(14, 3)
	pos := longPosition(100, 105)

	// No indicator values at all.
	require.Equal(t, domain.IntentHold, pm.OnBar(pos, realBar(105), 20, MarketOpen, nil).Action)

	// NaN ATR (warmup region).
	values := domain.NewIndicatorValues()
	values.Set("atr_14", []float64{math.NaN(), math.NaN(), math.NaN()})
	require.Equal(t, domain.IntentHold, pm.OnBar(pos, realBar(105), 1, MarketOpen, values).Action)
}

func TestChandelierStopFormula(t *testing.T) {
	pm := NewChandelier(14, 3)
	pos := longPosition(100, 118)
	pos.HighestPriceSinceEntry = 120

	values := domain.NewIndicatorValues()
	series := make([]float64, 25)
	for i := range series {
		series[i] = 2.0
	}
	values.Set("atr_14", series)

	intent := pm.OnBar(pos, realBar(118), 20, MarketOpen, values)
	require.Equal(t, domain.IntentAdjustStop, intent.Action)
	require.InDelta(t, 114.0, intent.StopPrice, 1e-10) // 120 - 3*2
}

func TestSinceEntryTrailingForcesExitOnGiveback(t *testing.T) {
	pm := NewSinceEntryTrailing(0.10)
	pos := longPosition(100, 107)
	pos.HighestPriceSinceEntry = 120

	// Drawdown from peak: (120-107)/120 = 10.8% >= 10%.
	intent := pm.OnBar(pos, realBar(107), 30, MarketOpen, nil)
	require.Equal(t, domain.IntentForceExit, intent.Action)

	// Shallower giveback holds.
	intent = pm.OnBar(pos, realBar(115), 31, MarketOpen, nil)
	require.Equal(t, domain.IntentHold, intent.Action)
}

func TestBreakevenThenTrailPhases(t *testing.T) {
	pm := NewBreakevenThenTrail(0.05, 0.08)

	// Below the trigger: no stop yet.
	pos := longPosition(100, 103)
	require.Equal(t, domain.IntentHold, pm.OnBar(pos, realBar(103), 5, MarketOpen, nil).Action)

	// Trigger reached: stop to entry.
	pos = longPosition(100, 106)
	intent := pm.OnBar(pos, realBar(106), 6, MarketOpen, nil)
	require.Equal(t, domain.IntentAdjustStop, intent.Action)
	require.InDelta(t, 100.0, intent.StopPrice, 1e-10)

	// Phase 2 detected via CurrentStop >= entry: trail the watermark.
	pos = longPosition(100, 115)
	pos.CurrentStop = 100
	pos.HighestPriceSinceEntry = 115
	intent = pm.OnBar(pos, realBar(115), 7, MarketOpen, nil)
	require.Equal(t, domain.IntentAdjustStop, intent.Action)
	require.InDelta(t, 105.8, intent.StopPrice, 1e-10) // 115 * 0.92
}

func TestTimeDecayTightensWithAge(t *testing.T) {
	pm := NewTimeDecay(0.10, 0.005, 0.02)

	pos := longPosition(100, 100)
	pos.BarsHeld = 0
	early := pm.OnBar(pos, realBar(100), 1, MarketOpen, nil)
	require.Equal(t, domain.IntentAdjustStop, early.Action)
	require.InDelta(t, 90.0, early.StopPrice, 1e-10)

	pos.BarsHeld = 10
	mid := pm.OnBar(pos, realBar(100), 11, MarketOpen, nil)
	require.InDelta(t, 95.0, mid.StopPrice, 1e-10) // pct = 0.10 - 0.05

	pos.BarsHeld = 100
	late := pm.OnBar(pos, realBar(100), 101, MarketOpen, nil)
	require.InDelta(t, 98.0, late.StopPrice, 1e-10) // floor at min_pct
}

func TestMaxHoldingPeriodBoundary(t *testing.T) {
	pm := NewMaxHoldingPeriod(10)

	pos := longPosition(100, 105)
	pos.BarsHeld = 9
	require.Equal(t, domain.IntentHold, pm.OnBar(pos, realBar(105), 9, MarketOpen, nil).Action)

	pos.BarsHeld = 10
	require.Equal(t, domain.IntentForceExit, pm.OnBar(pos, realBar(105), 10, MarketOpen, nil).Action)
}

func TestFlatPositionAlwaysHolds(t *testing.T) {
	flat := domain.NewFlatPosition("TEST")
	managers := []Manager{
		NewFixedStopLoss(0.05),
		NewFrozenReference(0.05),
		NewPercentTrailing(0.10),
		NewAtrTrailing(14, 3),
		NewChandelier(22, 3),
		NewSinceEntryTrailing(0.10),
		NewBreakevenThenTrail(0.05, 0.08),
		NewTimeDecay(0.10, 0.005, 0.02),
		NewMaxHoldingPeriod(10),
	}
	for _, pm := range managers {
		require.Equal(t, domain.IntentHold, pm.OnBar(flat, realBar(100), 5, MarketOpen, nil).Action, pm.Name())
	}
}
