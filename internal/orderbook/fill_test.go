package orderbook

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/execmodel"
)

func testBar(open, high, low, close, volume float64) domain.Bar {
	return domain.Bar{
		Symbol: "TEST",
		Date:   time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
		Open:   open, High: high, Low: low, Close: close, Volume: volume,
	}
}

func submitActive(b *Book, o domain.Order) string {
	o.State = domain.OrderActive
	return b.Submit(o)
}

// Gap-through: buy-stop trigger 100, bar opens
// at 105 above it. FillAtOpen gives raw 105; 5 bps slippage and a
// 0.01 tick round the price up to 105.06.
func TestGapThroughFillAtOpenWithCosts(t *testing.T) {
	b := New(nil)
	submitActive(b, domain.Order{
		Symbol: "TEST", Type: domain.OrderStopMarket, Side: domain.SideBuy,
		Quantity: 10, Trigger: 100, CreatedBar: 0,
	})

	bar := testBar(105, 106, 104.5, 105.5, 1_000_000)
	fills := b.ResolveIntrabar(bar, 1, execmodel.PathWorstCase, execmodel.GapFillAtOpen,
		CostParams{SlippageBps: 5, CommissionBps: 0, TickSize: 0.01})

	require.Len(t, fills, 1)
	require.True(t, fills[0].Gapped)
	require.InDelta(t, 105.0, fills[0].RawPrice, 1e-10)
	require.InDelta(t, 105.06, fills[0].Price, 1e-10)
}

func TestGapPolicyTable(t *testing.T) {
	cases := []struct {
		name   string
		policy execmodel.GapPolicy
		want   float64
	}{
		{"trigger", execmodel.GapFillAtTrigger, 100.0},
		{"open", execmodel.GapFillAtOpen, 105.0},
		{"worst", execmodel.GapFillAtWorst, 105.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := New(nil)
			submitActive(b, domain.Order{
				Symbol: "TEST", Type: domain.OrderStopMarket, Side: domain.SideBuy,
				Quantity: 1, Trigger: 100,
			})
			bar := testBar(105, 106, 104.5, 105.5, 1_000_000)
			fills := b.ResolveIntrabar(bar, 0, execmodel.PathDeterministic, tc.policy, CostParams{})
			require.Len(t, fills, 1)
			require.InDelta(t, tc.want, fills[0].RawPrice, 1e-10)
		})
	}
}

// Non-gapped stop fills at its trigger.
func TestStopFillsAtTrigger(t *testing.T) {
	b := New(nil)
	submitActive(b, domain.Order{
		Symbol: "TEST", Type: domain.OrderStopMarket, Side: domain.SideSell,
		Quantity: 5, Trigger: 95,
	})
	bar := testBar(100, 101, 94, 96, 1_000_000)
	fills := b.ResolveIntrabar(bar, 0, execmodel.PathDeterministic, execmodel.GapFillAtOpen, CostParams{})
	require.Len(t, fills, 1)
	require.False(t, fills[0].Gapped)
	require.InDelta(t, 95.0, fills[0].RawPrice, 1e-10)
}

// Tick rounding is adverse to the signer: buys round up, sells round
// down.
func TestTickRoundingAdverse(t *testing.T) {
	buy, _, _ := applyCosts(100.001, domain.SideBuy, 1, 0, 0, 0.01)
	require.InDelta(t, 100.01, buy, 1e-10)
	sell, _, _ := applyCosts(100.009, domain.SideSell, 1, 0, 0, 0.01)
	require.InDelta(t, 100.00, sell, 1e-10)
}

// OCO: when both the stop and the target could fire on one bar,
// WorstCase fills the stop and cancels the target in the same bar.
func TestOCOWorstCaseFillsStopFirst(t *testing.T) {
	b := New(nil)
	stopID := submitActive(b, domain.Order{
		Symbol: "TEST", Type: domain.OrderStopMarket, Side: domain.SideSell,
		Quantity: 10, Trigger: 95,
	})
	targetID := submitActive(b, domain.Order{
		Symbol: "TEST", Type: domain.OrderLimit, Side: domain.SideSell,
		Quantity: 10, Price: 110,
	})
	b.LinkOCO(stopID, targetID)

	// The bar spans both levels.
	bar := testBar(100, 112, 94, 100, 1_000_000)
	fills := b.ResolveIntrabar(bar, 3, execmodel.PathWorstCase, execmodel.GapFillAtTrigger, CostParams{})

	require.Len(t, fills, 1)
	require.Equal(t, stopID, fills[0].OrderID)

	target, _ := b.Order(targetID)
	require.Equal(t, domain.OrderCancelled, target.State)
	require.Equal(t, 3, target.ClosedBar)

	stop, _ := b.Order(stopID)
	require.Equal(t, domain.OrderFilled, stop.State)
}

func TestOCOBestCaseFillsTargetFirst(t *testing.T) {
	b := New(nil)
	stopID := submitActive(b, domain.Order{
		Symbol: "TEST", Type: domain.OrderStopMarket, Side: domain.SideSell,
		Quantity: 10, Trigger: 95,
	})
	targetID := submitActive(b, domain.Order{
		Symbol: "TEST", Type: domain.OrderLimit, Side: domain.SideSell,
		Quantity: 10, Price: 110,
	})
	b.LinkOCO(stopID, targetID)

	bar := testBar(100, 112, 94, 100, 1_000_000)
	fills := b.ResolveIntrabar(bar, 0, execmodel.PathBestCase, execmodel.GapFillAtTrigger, CostParams{})

	require.Len(t, fills, 1)
	require.Equal(t, targetID, fills[0].OrderID)
	stop, _ := b.Order(stopID)
	require.Equal(t, domain.OrderCancelled, stop.State)
}

// Filling one OCO leg alone still cancels its sibling the same bar.
func TestOCOSiblingCancelledOnSoloFill(t *testing.T) {
	b := New(nil)
	stopID := submitActive(b, domain.Order{
		Symbol: "TEST", Type: domain.OrderStopMarket, Side: domain.SideSell,
		Quantity: 10, Trigger: 95,
	})
	targetID := submitActive(b, domain.Order{
		Symbol: "TEST", Type: domain.OrderLimit, Side: domain.SideSell,
		Quantity: 10, Price: 110,
	})
	b.LinkOCO(stopID, targetID)

	// Only the stop level trades this bar.
	bar := testBar(100, 101, 94, 96, 1_000_000)
	fills := b.ResolveIntrabar(bar, 5, execmodel.PathWorstCase, execmodel.GapFillAtTrigger, CostParams{})

	require.Len(t, fills, 1)
	require.Equal(t, stopID, fills[0].OrderID)
	target, _ := b.Order(targetID)
	require.Equal(t, domain.OrderCancelled, target.State)
}

// Liquidity: zero volume fills zero.
func TestLiquidityZeroVolumeFillsNothing(t *testing.T) {
	b := New(&LiquidityPolicy{MaxParticipation: 0.1, Remainder: RemainderCarry})
	submitActive(b, domain.Order{
		Symbol: "TEST", Type: domain.OrderStopMarket, Side: domain.SideBuy,
		Quantity: 100, Trigger: 100,
	})
	bar := testBar(99, 101, 98, 100, 0)
	fills := b.ResolveIntrabar(bar, 0, execmodel.PathDeterministic, execmodel.GapFillAtTrigger, CostParams{})
	require.Empty(t, fills)
}

// Liquidity: FIFO by submission bar with a shared pool.
func TestLiquidityFIFOAllocation(t *testing.T) {
	b := New(&LiquidityPolicy{MaxParticipation: 0.1, Remainder: RemainderCarry})
	early := submitActive(b, domain.Order{
		Symbol: "TEST", Type: domain.OrderStopMarket, Side: domain.SideBuy,
		Quantity: 80, Trigger: 100, CreatedBar: 1,
	})
	late := submitActive(b, domain.Order{
		Symbol: "TEST", Type: domain.OrderStopMarket, Side: domain.SideBuy,
		Quantity: 80, Trigger: 100, CreatedBar: 2,
	})

	// Pool = floor(1000 * 0.1) = 100: 80 to the early order, 20 to
	// the late one.
	bar := testBar(99, 101, 98, 100, 1000)
	fills := b.ResolveIntrabar(bar, 3, execmodel.PathDeterministic, execmodel.GapFillAtTrigger, CostParams{})

	got := map[string]float64{}
	for _, f := range fills {
		got[f.OrderID] = f.Quantity
	}
	require.InDelta(t, 80, got[early], 1e-10)
	require.InDelta(t, 20, got[late], 1e-10)

	lateOrder, _ := b.Order(late)
	require.Equal(t, domain.OrderPartiallyFilled, lateOrder.State)
	require.InDelta(t, 60, lateOrder.Remaining(), 1e-10)
}

// Liquidity: RemainderCancel terminates the shorted order.
func TestLiquidityRemainderCancel(t *testing.T) {
	b := New(&LiquidityPolicy{MaxParticipation: 0.05, Remainder: RemainderCancel})
	id := submitActive(b, domain.Order{
		Symbol: "TEST", Type: domain.OrderStopMarket, Side: domain.SideBuy,
		Quantity: 100, Trigger: 100, CreatedBar: 0,
	})
	bar := testBar(99, 101, 98, 100, 1000) // pool = 50
	fills := b.ResolveIntrabar(bar, 1, execmodel.PathDeterministic, execmodel.GapFillAtTrigger, CostParams{})
	require.Len(t, fills, 1)
	require.InDelta(t, 50, fills[0].Quantity, 1e-10)

	o, _ := b.Order(id)
	require.Equal(t, domain.OrderCancelled, o.State)
}

// NaN prices skip the order; it stays Active for the next bar.
func TestVoidBarLeavesOrdersActive(t *testing.T) {
	b := New(nil)
	id := submitActive(b, domain.Order{
		Symbol: "TEST", Type: domain.OrderStopMarket, Side: domain.SideBuy,
		Quantity: 1, Trigger: 100,
	})
	nan := math.NaN()
	void := domain.Bar{Symbol: "TEST", Open: nan, High: nan, Low: nan, Close: nan}
	fills := b.ResolveIntrabar(void, 0, execmodel.PathDeterministic, execmodel.GapFillAtTrigger, CostParams{})
	require.Empty(t, fills)
	o, _ := b.Order(id)
	require.Equal(t, domain.OrderActive, o.State)
}

// Filling more than remaining is a programming error.
func TestOverfillPanics(t *testing.T) {
	b := New(nil)
	id := submitActive(b, domain.Order{Symbol: "TEST", Type: domain.OrderMarketOnOpen, Side: domain.SideBuy, Quantity: 1})
	require.Panics(t, func() { b.fillRemaining(id, 2, 0) })
}
