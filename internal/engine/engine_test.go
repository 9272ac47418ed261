package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/execmodel"
	"github.com/trendlab-go/trendlab/internal/posmanager"
	"github.com/trendlab-go/trendlab/internal/sizer"
)

// barsFromCloses builds a flat-bodied synthetic series: open = prior
// close, high/low bracket both.
func barsFromCloses(closes []float64) []domain.Bar {
	bars := make([]domain.Bar, len(closes))
	prev := closes[0]
	for i, c := range closes {
		hi := math.Max(prev, c) + 0.5
		lo := math.Min(prev, c) - 0.5
		bars[i] = domain.Bar{
			Symbol: "TEST",
			Date:   time.Date(2021, 1, 4, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Open:   prev,
			High:   hi,
			Low:    lo,
			Close:  c,
			Volume: 1_000_000,
		}
		prev = c
	}
	return bars
}

func voidBar(symbol string, date time.Time) domain.Bar {
	nan := math.NaN()
	return domain.Bar{Symbol: symbol, Date: date, Open: nan, High: nan, Low: nan, Close: nan}
}

// scriptedSignal emits a long at each index in buys and a short at
// each index in sells.
type scriptedSignal struct {
	buys  map[int]bool
	sells map[int]bool
}

func (s scriptedSignal) Name() string    { return "scripted" }
func (s scriptedSignal) WarmupBars() int { return 0 }

func (s scriptedSignal) Evaluate(bars []domain.Bar, barIndex int, values *domain.IndicatorValues) (domain.SignalEvent, bool) {
	direction := domain.DirectionLong
	switch {
	case s.buys[barIndex]:
	case s.sells[barIndex]:
		direction = domain.DirectionShort
	default:
		return domain.SignalEvent{}, false
	}
	bar := bars[barIndex]
	return domain.SignalEvent{
		BarIndex:  barIndex,
		Date:      bar.Date,
		Symbol:    bar.Symbol,
		Direction: direction,
		Strength:  1,
		Metadata: map[string]float64{
			"breakout_level":  bar.Close,
			"reference_price": bar.Close,
			"signal_bar_low":  bar.Low,
		},
	}, true
}

type passFilter struct{}

func (passFilter) Name() string { return "pass" }
func (passFilter) Evaluate(signal domain.SignalEvent, bars []domain.Bar, barIndex int, values *domain.IndicatorValues) domain.SignalEvaluation {
	return domain.SignalEvaluation{SignalEventID: signal.ID, FilterName: "pass", Verdict: domain.VerdictPassed}
}

type holdPM struct{}

func (holdPM) Name() string { return "hold" }
func (holdPM) OnBar(position domain.Position, bar domain.Bar, barIndex int, status posmanager.MarketStatus, values *domain.IndicatorValues) domain.OrderIntent {
	return domain.Hold()
}

// scriptedPM replays a fixed sequence of intents, one per call,
// Holding once the script runs out.
type scriptedPM struct {
	intents []domain.OrderIntent
	calls   *int
}

func (scriptedPM) Name() string { return "scripted_pm" }
func (p scriptedPM) OnBar(position domain.Position, bar domain.Bar, barIndex int, status posmanager.MarketStatus, values *domain.IndicatorValues) domain.OrderIntent {
	i := *p.calls
	*p.calls++
	if i >= len(p.intents) {
		return domain.Hold()
	}
	return p.intents[i]
}

func newTestEngine(strategy Strategy, capital float64) *Engine {
	return New(strategy, Config{InitialCapital: capital, TradingMode: domain.TradingLongShort}, 0)
}

// Smoke scenario: buy bar 3 at close 110 for $100 notional, sell bar
// 7 at close 120, frictionless. Expected final equity 10009.09 and a
// single round trip with PnL ~ 9.09.
func TestSmokeSingleRoundTrip(t *testing.T) {
	bars := barsFromCloses([]float64{100, 105, 107, 110, 112, 115, 118, 120, 119, 120})
	strategy := Strategy{
		Signal:          scriptedSignal{buys: map[int]bool{3: true}, sells: map[int]bool{7: true}},
		Filter:          passFilter{},
		PositionManager: holdPM{},
		ExecutionModel:  execmodel.NewCloseOnSignal(execmodel.Frictionless()),
		Sizer:           sizer.NewFixedNotional(100),
	}
	e := newTestEngine(strategy, 10_000)

	result, err := e.Run(bars, domain.NewIndicatorValues(), nil)
	require.NoError(t, err)

	require.InDelta(t, 10_009.09, result.FinalEquity, 0.01)
	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	require.InDelta(t, 9.09, trade.NetPnL, 0.01)
	require.Equal(t, 3, trade.EntryBar)
	require.Equal(t, 7, trade.ExitBar)
	require.InDelta(t, 110.0, trade.EntryPrice, 1e-10)
	require.InDelta(t, 120.0, trade.ExitPrice, 1e-10)
}

// Ratchet scenario: current stop 95, AdjustStop(90) is clamped back
// to 95, a later AdjustStop(100) raises it.
func TestRatchetClampsLooseningIntent(t *testing.T) {
	bars := barsFromCloses([]float64{100, 110, 112, 114, 116, 118})
	calls := 0
	strategy := Strategy{
		Signal: scriptedSignal{buys: map[int]bool{0: true}},
		Filter: passFilter{},
		PositionManager: scriptedPM{calls: &calls, intents: []domain.OrderIntent{
			domain.AdjustStop(95),
			domain.AdjustStop(90),
			domain.AdjustStop(100),
		}},
		ExecutionModel: execmodel.NewCloseOnSignal(execmodel.Frictionless()),
		Sizer:          sizer.NewFixedShares(10),
	}
	e := newTestEngine(strategy, 10_000)

	result, err := e.Run(bars, domain.NewIndicatorValues(), nil)
	require.NoError(t, err)

	require.InDelta(t, 100.0, e.position.CurrentStop, 1e-10)

	require.Len(t, result.RejectedIntents, 1)
	ri := result.RejectedIntents[0]
	require.Equal(t, "ratchet_clamped", ri.Reason)
	require.InDelta(t, 90.0, ri.Proposed, 1e-10)
	require.InDelta(t, 95.0, ri.Applied, 1e-10)
}

// No stopless window: once the PM has placed a stop, every subsequent
// bar of the open position has an Active stop order in the book.
func TestManagedStopAlwaysActive(t *testing.T) {
	bars := barsFromCloses([]float64{100, 104, 108, 112, 116, 120})
	calls := 0
	strategy := Strategy{
		Signal: scriptedSignal{buys: map[int]bool{0: true}},
		Filter: passFilter{},
		PositionManager: scriptedPM{calls: &calls, intents: []domain.OrderIntent{
			domain.AdjustStop(90),
			domain.AdjustStop(92),
			domain.AdjustStop(94),
			domain.AdjustStop(96),
		}},
		ExecutionModel: execmodel.NewCloseOnSignal(execmodel.Frictionless()),
		Sizer:          sizer.NewFixedShares(10),
	}
	e := newTestEngine(strategy, 10_000)

	_, err := e.Run(bars, domain.NewIndicatorValues(), nil)
	require.NoError(t, err)

	stopID, ok := e.book.StopOrderID("TEST")
	require.True(t, ok)
	stop, ok := e.book.Order(stopID)
	require.True(t, ok)
	require.Equal(t, domain.OrderActive, stop.State)
	require.InDelta(t, 96.0, stop.Trigger, 1e-10)
}

// Void-bar scenario: 10-bar max holding period with void bars in the
// middle. bars_held advances through the voids and the MOO exit fills
// on the first real bar after the threshold.
func TestMaxHoldingPeriodAcrossVoidBars(t *testing.T) {
	real := barsFromCloses([]float64{100, 101, 102, 103, 104, 105, 106, 107, 108, 109, 110, 111, 112})
	bars := make([]domain.Bar, 0, len(real)+3)
	bars = append(bars, real[0])
	// Three void bars right after entry.
	for i := 1; i <= 3; i++ {
		bars = append(bars, voidBar("TEST", real[0].Date.AddDate(0, 0, i)))
	}
	for _, b := range real[1:] {
		b.Date = b.Date.AddDate(0, 0, 3)
		bars = append(bars, b)
	}

	strategy := Strategy{
		Signal:          scriptedSignal{buys: map[int]bool{0: true}},
		Filter:          passFilter{},
		PositionManager: posmanager.NewMaxHoldingPeriod(10),
		ExecutionModel:  execmodel.NewCloseOnSignal(execmodel.Frictionless()),
		Sizer:           sizer.NewFixedShares(10),
	}
	e := newTestEngine(strategy, 10_000)

	result, err := e.Run(bars, domain.NewIndicatorValues(), nil)
	require.NoError(t, err)

	require.Len(t, result.Trades, 1)
	trade := result.Trades[0]
	// Entry at bar 0; bars_held reaches 10 at bar index 9 (3 void + 6
	// real bars later), so the ForceExit MOO fills at bar index 10 —
	// a real bar, never a void one.
	require.Equal(t, 10, trade.ExitBar)
	require.False(t, bars[trade.ExitBar].IsVoid())
	require.Equal(t, 10, trade.BarsHeld)
}

// Warmup silence: nothing fires before warmup_bars.
func TestWarmupSuppressesSignalsAndFills(t *testing.T) {
	bars := barsFromCloses([]float64{100, 101, 102, 103, 104, 105, 106, 107})
	strategy := Strategy{
		Signal:          scriptedSignal{buys: map[int]bool{1: true, 5: true}},
		Filter:          passFilter{},
		PositionManager: holdPM{},
		ExecutionModel:  execmodel.NewCloseOnSignal(execmodel.Frictionless()),
		Sizer:           sizer.NewFixedShares(1),
	}
	e := New(strategy, Config{InitialCapital: 10_000, TradingMode: domain.TradingLongShort}, 4)

	result, err := e.Run(bars, domain.NewIndicatorValues(), nil)
	require.NoError(t, err)

	require.Equal(t, 1, result.SignalCount) // only the bar-5 signal
	for _, fill := range result.Fills {
		require.GreaterOrEqual(t, fill.CreatedBar, 4)
	}
	require.Len(t, result.Trades, 0)
}

// Equity identity holds on every bar of a multi-trade run.
func TestEquityIdentityThroughout(t *testing.T) {
	closes := []float64{100, 103, 101, 106, 104, 109, 107, 112, 110, 115}
	bars := barsFromCloses(closes)
	strategy := Strategy{
		Signal:          scriptedSignal{buys: map[int]bool{1: true, 6: true}, sells: map[int]bool{4: true, 8: true}},
		Filter:          passFilter{},
		PositionManager: holdPM{},
		ExecutionModel:  execmodel.NewCloseOnSignal(execmodel.Frictionless()),
		Sizer:           sizer.NewFixedShares(5),
	}
	e := newTestEngine(strategy, 10_000)

	result, err := e.Run(bars, domain.NewIndicatorValues(), nil)
	require.NoError(t, err)
	require.Equal(t, len(bars), len(result.EquityCurve))
	// Run would have errored if the identity broke; spot-check the
	// curve is finite and starts at par.
	require.InDelta(t, 10_000, result.EquityCurve[0].Equity, 1e-9)
	for _, pt := range result.EquityCurve {
		require.False(t, math.IsNaN(pt.Equity))
	}
}

// Determinism: identical inputs produce identical results, including
// order and trade IDs.
func TestRunDeterminism(t *testing.T) {
	closes := []float64{100, 103, 101, 106, 104, 109, 107, 112, 110, 115}
	build := func() (*Engine, []domain.Bar) {
		bars := barsFromCloses(closes)
		strategy := Strategy{
			Signal:          scriptedSignal{buys: map[int]bool{1: true}, sells: map[int]bool{7: true}},
			Filter:          passFilter{},
			PositionManager: posmanager.NewPercentTrailing(0.05),
			ExecutionModel:  execmodel.NewNextBarOpen(execmodel.Realistic()),
			Sizer:           sizer.NewFixedNotional(5_000),
		}
		return newTestEngine(strategy, 10_000), bars
	}

	e1, bars1 := build()
	r1, err := e1.Run(bars1, domain.NewIndicatorValues(), nil)
	require.NoError(t, err)
	e2, bars2 := build()
	r2, err := e2.Run(bars2, domain.NewIndicatorValues(), nil)
	require.NoError(t, err)

	require.Equal(t, r1.FinalEquity, r2.FinalEquity)
	require.Equal(t, r1.Trades, r2.Trades)
	require.Equal(t, r1.Fills, r2.Fills)
	require.Equal(t, r1.EquityCurve, r2.EquityCurve)
}
