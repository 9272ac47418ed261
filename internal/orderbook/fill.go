package orderbook

import (
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/execmodel"
)

// Fill is one execution against an order, with costs already applied.
type Fill struct {
	OrderID        string
	Symbol         string
	Side           domain.Side
	Quantity       float64
	Price          float64 // post-slippage, post-tick-rounding
	RawPrice       float64 // pre-cost price, used by ghost-curve diagnostics
	Commission     float64
	SlippageCost   float64
	BarIndex       int
	Gapped         bool
}

// roundToTick rounds price to the nearest tickSize, biased adversely
// to the signer: a buy rounds up, a sell rounds down. tickSize <= 0
// disables rounding.
func roundToTick(price, tickSize float64, side domain.Side) float64 {
	if tickSize <= 0 {
		return price
	}
	ticks := price / tickSize
	if side == domain.SideBuy {
		return math.Ceil(ticks) * tickSize
	}
	return math.Floor(ticks) * tickSize
}

// applyCosts is the per-fill cost formula:
// slipped = raw*(1 +/- slippageBps/10000), price = roundToTick(slipped),
// commission = price*qty*commissionBps/10000, slippage dollars =
// max(0, signed difference*qty).
func applyCosts(raw float64, side domain.Side, qty, slippageBps, commissionBps, tickSize float64) (price, commission, slippageCost float64) {
	sign := 1.0
	if side == domain.SideSell {
		sign = -1.0
	}
	slipped := raw * (1 + sign*slippageBps/10_000)
	price = roundToTick(slipped, tickSize, side)
	commission = price * qty * commissionBps / 10_000
	diff := sign * (price - raw)
	slippageCost = math.Max(0, diff*qty)
	return
}

// gapFillPrice resolves the raw (pre-slippage) fill price for a
// gapped stop trigger under the configured gap policy.
func gapFillPrice(policy execmodel.GapPolicy, open, trigger float64, side domain.Side) float64 {
	switch policy {
	case execmodel.GapFillAtOpen:
		return open
	case execmodel.GapFillAtWorst:
		if side == domain.SideBuy {
			return math.Max(open, trigger)
		}
		return math.Min(open, trigger)
	default: // GapFillAtTrigger
		return trigger
	}
}

// CostParams bundles the flat per-fill cost inputs an engine applies
// uniformly across MOO/MOC/intrabar fills.
type CostParams struct {
	SlippageBps   float64
	CommissionBps float64
	TickSize      float64
}

// FillMarketOnOpen fills every Active MarketOnOpen order for symbol at
// bar.Open (start-of-bar phase).
func (b *Book) FillMarketOnOpen(bar domain.Bar, barIndex int, costs CostParams) []Fill {
	return b.fillMarketOrders(bar, barIndex, domain.OrderMarketOnOpen, bar.Open, costs)
}

// FillMarketOnClose fills every Active MarketOnClose order for
// bar.Symbol at bar.Close (end-of-bar phase).
func (b *Book) FillMarketOnClose(bar domain.Bar, barIndex int, costs CostParams) []Fill {
	return b.fillMarketOrders(bar, barIndex, domain.OrderMarketOnClose, bar.Close, costs)
}

func (b *Book) fillMarketOrders(bar domain.Bar, barIndex int, t domain.OrderType, raw float64, costs CostParams) []Fill {
	var fills []Fill
	if bar.IsVoid() || math.IsNaN(raw) {
		return fills
	}
	for _, o := range b.Active(bar.Symbol) {
		if o.Type != t {
			continue
		}
		qty := o.Remaining()
		price, commission, slip := applyCosts(raw, o.Side, qty, costs.SlippageBps, costs.CommissionBps, costs.TickSize)
		b.fillRemaining(o.ID, qty, barIndex)
		b.cancelOCOSibling(o, barIndex)
		fills = append(fills, Fill{
			OrderID: o.ID, Symbol: o.Symbol, Side: o.Side, Quantity: qty,
			Price: price, RawPrice: raw, Commission: commission, SlippageCost: slip, BarIndex: barIndex,
		})
	}
	return fills
}

// cancelOCOSibling enforces OCO exclusivity the moment one bracket leg
// fills: the other leg is Cancelled in the same bar.
func (b *Book) cancelOCOSibling(o *domain.Order, barIndex int) {
	if o.State != domain.OrderFilled || o.OCOSiblingID == "" {
		return
	}
	b.Cancel(o.OCOSiblingID, barIndex)
}

// intrabarHit describes one order's eligibility to fill this bar,
// computed before any OCO/path-policy resolution is applied.
type intrabarHit struct {
	order   *domain.Order
	raw     float64
	gapped  bool
	isStop  bool // StopMarket/StopLimit leg of a bracket, vs a plain Limit target leg
	phase   int  // 0 = resolves on the low-before-high walk's low check, 1 = high check
}

func (b *Book) evaluateIntrabar(bar domain.Bar, gap execmodel.GapPolicy) []intrabarHit {
	var hits []intrabarHit
	if bar.IsVoid() {
		return hits
	}
	for _, o := range b.Active(bar.Symbol) {
		switch o.Type {
		case domain.OrderStopMarket:
			if h, ok := b.evalStop(o, bar, gap); ok {
				hits = append(hits, h)
			}
		case domain.OrderStopLimit:
			if h, ok := b.evalStopLimit(o, bar); ok {
				hits = append(hits, h)
			}
		case domain.OrderLimit:
			if h, ok := b.evalLimit(o, bar); ok {
				hits = append(hits, h)
			}
		}
	}
	return hits
}

func (b *Book) evalStop(o *domain.Order, bar domain.Bar, gap execmodel.GapPolicy) (intrabarHit, bool) {
	if o.Side == domain.SideBuy {
		if bar.High < o.Trigger {
			return intrabarHit{}, false
		}
		gapped := bar.Open > o.Trigger
		raw := o.Trigger
		if gapped {
			raw = gapFillPrice(gap, bar.Open, o.Trigger, o.Side)
		}
		return intrabarHit{order: o, raw: raw, gapped: gapped, isStop: true, phase: 1}, true
	}
	if bar.Low > o.Trigger {
		return intrabarHit{}, false
	}
	gapped := bar.Open < o.Trigger
	raw := o.Trigger
	if gapped {
		raw = gapFillPrice(gap, bar.Open, o.Trigger, o.Side)
	}
	return intrabarHit{order: o, raw: raw, gapped: gapped, isStop: true, phase: 0}, true
}

// evalStopLimit advances a StopLimit order through Active->Triggered
// on the bar its trigger condition is met, then fills only once price
// also crosses its limit leg (same bar or a later one).
func (b *Book) evalStopLimit(o *domain.Order, bar domain.Bar) (intrabarHit, bool) {
	if o.State == domain.OrderActive {
		triggered := (o.Side == domain.SideBuy && bar.High >= o.Trigger) ||
			(o.Side == domain.SideSell && bar.Low <= o.Trigger)
		if !triggered {
			return intrabarHit{}, false
		}
		o.State = domain.OrderTriggered
	}
	// Triggered: check the limit leg.
	if o.Side == domain.SideBuy {
		if bar.Low > o.Price {
			return intrabarHit{}, false
		}
		return intrabarHit{order: o, raw: o.Price, isStop: true, phase: 0}, true
	}
	if bar.High < o.Price {
		return intrabarHit{}, false
	}
	return intrabarHit{order: o, raw: o.Price, isStop: true, phase: 1}, true
}

func (b *Book) evalLimit(o *domain.Order, bar domain.Bar) (intrabarHit, bool) {
	if o.Side == domain.SideBuy {
		if bar.Low > o.Price {
			return intrabarHit{}, false
		}
		return intrabarHit{order: o, raw: o.Price, isStop: false, phase: 0}, true
	}
	if bar.High < o.Price {
		return intrabarHit{}, false
	}
	return intrabarHit{order: o, raw: o.Price, isStop: false, phase: 1}, true
}

// ResolveIntrabar walks every Active stop/limit order for bar.Symbol,
// resolves OCO bracket conflicts per pathPolicy, applies the
// liquidity cap if configured, and returns the resulting fills
// (intrabar phase).
func (b *Book) ResolveIntrabar(bar domain.Bar, barIndex int, path execmodel.PathPolicy, gap execmodel.GapPolicy, costs CostParams) []Fill {
	hits := b.evaluateIntrabar(bar, gap)
	if len(hits) == 0 {
		return nil
	}

	byID := make(map[string]intrabarHit, len(hits))
	for _, h := range hits {
		byID[h.order.ID] = h
	}

	// Resolve OCO conflicts: if both legs of a bracket are eligible
	// this bar, path policy picks a winner and the other is cancelled
	// (never filled), satisfying OCO exclusivity.
	cancelled := make(map[string]bool)
	for _, h := range hits {
		sib := h.order.OCOSiblingID
		if sib == "" || cancelled[h.order.ID] {
			continue
		}
		sibHit, sibEligible := byID[sib]
		if !sibEligible || cancelled[sib] {
			continue
		}
		winner := pickBracketWinner(h, sibHit, path)
		loser := sib
		if winner.order.ID == sib {
			loser = h.order.ID
		}
		cancelled[loser] = true
	}

	var survivors []intrabarHit
	for _, h := range hits {
		if !cancelled[h.order.ID] {
			survivors = append(survivors, h)
		}
	}

	cands := make([]candidate, 0, len(survivors))
	for _, h := range survivors {
		cands = append(cands, candidate{order: h.order, want: h.order.Remaining()})
	}
	granted := b.liquidity.allocate(cands, bar.Volume)

	var fills []Fill
	for _, h := range survivors {
		wanted := h.order.Remaining()
		qty := wanted
		if b.liquidity != nil {
			qty = granted[h.order.ID]
		}
		if qty <= 0 {
			continue
		}
		price, commission, slip := applyCosts(h.raw, h.order.Side, qty, costs.SlippageBps, costs.CommissionBps, costs.TickSize)
		b.fillRemaining(h.order.ID, qty, barIndex)
		b.cancelOCOSibling(h.order, barIndex)
		fills = append(fills, Fill{
			OrderID: h.order.ID, Symbol: h.order.Symbol, Side: h.order.Side,
			Quantity: qty, Price: price, RawPrice: h.raw, Commission: commission, SlippageCost: slip, Gapped: h.gapped, BarIndex: barIndex,
		})
		if b.liquidity != nil && qty < wanted {
			b.applyRemainder(h.order)
		}
	}
	// Cancel the losing OCO legs now that the winner's fill is committed.
	for id := range cancelled {
		b.Cancel(id, barIndex)
	}
	return fills
}

// applyRemainder honors LiquidityPolicy.Remainder for an order left
// partially unfilled after a capped allocation.
func (b *Book) applyRemainder(o *domain.Order) {
	if b.liquidity == nil || o.Remaining() <= 0 {
		return
	}
	switch b.liquidity.Remainder {
	case RemainderCancel:
		b.Cancel(o.ID, -1)
	case RemainderPartialFill:
		o.State = domain.OrderFilled // accept the partial as final
	default: // RemainderCarry
		// leave Active (or PartiallyFilled, already set by fillRemaining)
	}
}

// pickBracketWinner resolves which of a bracket's two legs fires
// first when both are eligible the same bar, per the three path
// policies.
func pickBracketWinner(a, c intrabarHit, path execmodel.PathPolicy) intrabarHit {
	switch path {
	case execmodel.PathWorstCase:
		if a.isStop {
			return a
		}
		return c
	case execmodel.PathBestCase:
		if !a.isStop {
			return a
		}
		return c
	default: // PathDeterministic: low-before-high walk
		if a.phase <= c.phase {
			return a
		}
		return c
	}
}
