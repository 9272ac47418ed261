package engine

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/orderbook"
	"github.com/trendlab-go/trendlab/internal/posmanager"
	"github.com/trendlab-go/trendlab/internal/sizer"
)

// ErrCancelled is returned when the cooperative cancellation flag is
// observed set between bars. A cancelled run produces no RunResult.
var ErrCancelled = errors.New("engine: run cancelled")

// Run executes the four-phase bar loop over a single symbol's series.
// values must hold every indicator the strategy's components read;
// cancel may be nil (no cancellation). The loop is strictly
// sequential: start-of-bar, intrabar, end-of-bar, post-bar, then the
// bar index increments. Cancellation is only honored between bars so
// the equity identity can never be observed mid-update.
func (e *Engine) Run(bars []domain.Bar, values *domain.IndicatorValues, cancel *atomic.Bool) (*domain.RunResult, error) {
	if len(bars) == 0 {
		return nil, errors.New("engine: empty bar series")
	}
	e.symbol = bars[0].Symbol

	model := e.strategy.ExecutionModel
	costs := orderbook.CostParams{
		SlippageBps:   model.SlippageBps(),
		CommissionBps: model.CommissionBps(),
		TickSize:      e.cfg.TickSize,
	}

	for t := range bars {
		if cancel != nil && cancel.Load() {
			return nil, ErrCancelled
		}
		bar := bars[t]
		e.curDate = bar.Date
		e.totalBars++

		if bar.IsVoid() {
			// Void bars skip all four phases' content; position state
			// (bars_held, equity history) still advances.
			e.voidBars++
			if err := e.markToMarket(bar, t); err != nil {
				return nil, err
			}
			e.appendGhostPoint(bar)
			continue
		}

		// Phase 1: start-of-bar.
		e.book.ActivateReadyChildren()
		e.applyFills(e.book.FillMarketOnOpen(bar, t, costs), t)

		// Phase 2: intrabar.
		e.applyFills(e.book.ResolveIntrabar(bar, t, model.PathPolicy(), model.GapPolicy(), costs), t)

		// Phase 3: end-of-bar. The close is known here, so signal
		// generation runs first; a CloseOnSignal entry then fills in
		// the same MarketOnClose sweep.
		if t >= e.warmupBars {
			e.evaluateSignal(bars, t, values)
		}
		e.applyFills(e.book.FillMarketOnClose(bar, t, costs), t)

		// Phase 4: post-bar.
		if err := e.markToMarket(bar, t); err != nil {
			return nil, err
		}
		e.appendGhostPoint(bar)
		if !e.position.IsFlat() && t >= e.warmupBars {
			e.invokePositionManager(bar, t, values)
		}
	}

	return e.buildResult(), nil
}

// evaluateSignal runs C2 and C3 for bar t and, when a signal survives
// the filter, sizes and submits the entry order chosen by C4. An
// opposite-direction signal against an open position becomes an exit
// instead of a new entry.
func (e *Engine) evaluateSignal(bars []domain.Bar, t int, values *domain.IndicatorValues) {
	sig, ok := e.strategy.Signal.Evaluate(bars, t, values)
	if !ok {
		return
	}
	sig.ID = e.signalID(t)
	e.signalCount++

	if sig.Direction == domain.DirectionLong && e.cfg.TradingMode == domain.TradingShortOnly {
		return
	}
	if sig.Direction == domain.DirectionShort && e.cfg.TradingMode == domain.TradingLongOnly {
		// In long-only mode a short signal still carries information:
		// it exits an open long.
		if !e.position.IsFlat() && e.position.Side == domain.PositionLong {
			e.submitExit(bars[t], t)
		}
		return
	}

	if !e.position.IsFlat() {
		opposite := (sig.Direction == domain.DirectionLong && e.position.Side == domain.PositionShort) ||
			(sig.Direction == domain.DirectionShort && e.position.Side == domain.PositionLong)
		if opposite {
			e.submitExit(bars[t], t)
		}
		return
	}
	if e.pendingEntryParent != "" {
		return // one working entry at a time
	}

	eval := e.strategy.Filter.Evaluate(sig, bars, t, values)
	e.signalEvaluations = append(e.signalEvaluations, eval)
	if eval.Verdict != domain.VerdictPassed {
		return
	}

	intent := sizer.IntentLong
	if sig.Direction == domain.DirectionShort {
		intent = sizer.IntentShort
	}
	equity := e.portfolio.Cash // flat here, so cash is the whole equity
	qty := e.strategy.Sizer.Size(equity, intent, bars[t], values, t)
	if qty <= 0 || math.IsNaN(qty) {
		return
	}

	orderType, price, trigger := e.strategy.ExecutionModel.EntryOrderType(sig, bars[t])
	side := domain.SideBuy
	if sig.Direction == domain.DirectionShort {
		side = domain.SideSell
	}
	id := e.book.Submit(domain.Order{
		Symbol:     e.symbol,
		Type:       orderType,
		Side:       side,
		Quantity:   qty,
		State:      domain.OrderActive,
		Price:      price,
		Trigger:    trigger,
		CreatedBar: t,
	})
	e.book.Activate(id)
	e.pendingEntryParent = id
}

// submitExit places a market exit for the full open position: a
// MarketOnClose when the execution model is close-driven (so the exit
// fills this bar), otherwise a MarketOnOpen for the next bar.
func (e *Engine) submitExit(bar domain.Bar, t int) {
	if e.exitOrderID != "" {
		return
	}
	orderType := domain.OrderMarketOnOpen
	if et, _, _ := e.strategy.ExecutionModel.EntryOrderType(domain.SignalEvent{}, bar); et == domain.OrderMarketOnClose {
		orderType = domain.OrderMarketOnClose
	}
	side := domain.SideSell
	if e.position.Side == domain.PositionShort {
		side = domain.SideBuy
	}
	e.exitOrderID = e.book.Submit(domain.Order{
		Symbol:     e.symbol,
		Type:       orderType,
		Side:       side,
		Quantity:   e.position.Quantity,
		State:      domain.OrderActive,
		CreatedBar: t,
	})
}

// invokePositionManager runs C6 in the post-bar phase and translates
// its intent: AdjustStop becomes a ratchet-clamped cancel-replace,
// ForceExit a market order for the next bar, Hold nothing.
func (e *Engine) invokePositionManager(bar domain.Bar, t int, values *domain.IndicatorValues) {
	e.pmCallsTotal++
	intent := e.strategy.PositionManager.OnBar(e.position, bar, t, posmanager.MarketOpen, values)
	if intent.Action == domain.IntentHold {
		return
	}
	e.pmCallsActive++

	switch intent.Action {
	case domain.IntentAdjustStop:
		e.adjustStop(intent.StopPrice, t)
	case domain.IntentAdjustTarget:
		e.adjustTarget(intent.TargetPrice, t)
	case domain.IntentForceExit:
		e.submitForceExit(t)
	}
}

// submitForceExit places the MOO exit a ForceExit intent maps to: the
// position is closed at the next bar's open.
func (e *Engine) submitForceExit(t int) {
	if e.exitOrderID != "" {
		return
	}
	side := domain.SideSell
	if e.position.Side == domain.PositionShort {
		side = domain.SideBuy
	}
	e.exitOrderID = e.book.Submit(domain.Order{
		Symbol:     e.symbol,
		Type:       domain.OrderMarketOnOpen,
		Side:       side,
		Quantity:   e.position.Quantity,
		State:      domain.OrderActive,
		CreatedBar: t,
	})
}

// adjustStop applies the ratchet and, if the effective level actually
// moved, cancel-replaces the working stop order. The replacement is
// created before the cancel commits so no intermediate state has the
// position stopless.
func (e *Engine) adjustStop(proposed float64, t int) {
	if math.IsNaN(proposed) || proposed <= 0 {
		return
	}
	if e.ratchet == nil {
		side := SideLong
		if e.position.Side == domain.PositionShort {
			side = SideShort
		}
		e.ratchet = NewRatchet(side)
	}
	effective := e.ratchet.Apply(proposed)
	if effective != proposed {
		e.rejectedIntents = append(e.rejectedIntents, domain.RejectedIntent{
			BarIndex: t,
			Symbol:   e.symbol,
			Reason:   "ratchet_clamped",
			Proposed: proposed,
			Applied:  effective,
		})
	}
	if e.position.HasStop() && effective == e.position.CurrentStop {
		return // unchanged; keep the existing Active order
	}

	side := domain.SideSell // stop under a long
	if e.position.Side == domain.PositionShort {
		side = domain.SideBuy
	}
	newID := e.book.CancelReplaceStop(e.symbol, domain.Order{
		Symbol:     e.symbol,
		Type:       domain.OrderStopMarket,
		Side:       side,
		Quantity:   e.position.Quantity,
		Trigger:    effective,
		CreatedBar: t,
	}, t)
	if e.targetOrderID != "" {
		e.book.LinkOCO(newID, e.targetOrderID)
	}
	e.position.CurrentStop = effective
	e.position.StopOrderID = newID
}

// adjustTarget cancel-replaces the take-profit limit and OCO-links it
// to the working stop so filling either leg cancels the other.
func (e *Engine) adjustTarget(price float64, t int) {
	if math.IsNaN(price) || price <= 0 {
		return
	}
	side := domain.SideSell
	if e.position.Side == domain.PositionShort {
		side = domain.SideBuy
	}
	oldID := e.targetOrderID
	e.targetOrderID = e.book.Submit(domain.Order{
		Symbol:     e.symbol,
		Type:       domain.OrderLimit,
		Side:       side,
		Quantity:   e.position.Quantity,
		State:      domain.OrderActive,
		Price:      price,
		CreatedBar: t,
	})
	e.book.Activate(e.targetOrderID)
	if oldID != "" {
		e.book.Cancel(oldID, t)
	}
	if stopID, ok := e.book.StopOrderID(e.symbol); ok {
		e.book.LinkOCO(stopID, e.targetOrderID)
	}
}

// signalID derives a deterministic v5 UUID for the signal emitted at
// bar t (random IDs would break the bit-identical-results invariant).
func (e *Engine) signalID(t int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("signal|%s|%d|%d", e.symbol, t, e.signalCount))).String()
}

func (e *Engine) appendGhostPoint(bar domain.Bar) {
	if e.ghost == nil {
		return
	}
	close := bar.Close
	if bar.IsVoid() {
		close = e.lastClose
	}
	e.idealCurve = append(e.idealCurve, domain.EquityPoint{Date: bar.Date, Equity: e.ghost.equity(close)})
}
