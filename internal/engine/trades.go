package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/trendlab-go/trendlab/internal/diagnostics"
	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/orderbook"
)

// openTrade accumulates the entry leg of a round-trip until the exit
// leg closes it into a TradeRecord.
type openTrade struct {
	entryBar     int
	entryDate    time.Time
	entryPrice   float64
	quantity     float64
	side         domain.Side
	commission   float64
	slippageCost float64
}

// applyFills routes every fill into portfolio/position bookkeeping:
// a fill while flat opens a position, an opposite-side fill while in
// a position reduces or closes it.
func (e *Engine) applyFills(fills []orderbook.Fill, t int) {
	for _, f := range fills {
		if o, ok := e.book.Order(f.OrderID); ok {
			e.fills = append(e.fills, o)
		}
		if e.ghost != nil {
			e.ghost.applyFill(f)
		}
		if f.OrderID == e.pendingEntryParent {
			e.pendingEntryParent = ""
		}
		if f.OrderID == e.exitOrderID {
			e.exitOrderID = ""
		}

		if e.position.IsFlat() {
			e.openPosition(f, t)
			continue
		}
		closing := (e.position.Side == domain.PositionLong && f.Side == domain.SideSell) ||
			(e.position.Side == domain.PositionShort && f.Side == domain.SideBuy)
		if closing {
			e.reducePosition(f, t)
		} else {
			e.increasePosition(f)
		}
	}
}

func (e *Engine) openPosition(f orderbook.Fill, t int) {
	side := domain.PositionLong
	if f.Side == domain.SideSell {
		side = domain.PositionShort
	}
	e.adjustCash(f)

	e.position = domain.Position{
		Symbol:                 e.symbol,
		Side:                   side,
		Quantity:               f.Quantity,
		AvgEntryPrice:          f.Price,
		EntryBar:               t,
		HighestPriceSinceEntry: f.Price,
		LowestPriceSinceEntry:  f.Price,
		CurrentStop:            math.NaN(),
	}
	e.portfolio.SetPosition(e.symbol, e.position)

	rside := SideLong
	if side == domain.PositionShort {
		rside = SideShort
	}
	e.ratchet = NewRatchet(rside)

	e.openTrade = &openTrade{
		entryBar:     t,
		entryDate:    e.curDate,
		entryPrice:   f.Price,
		quantity:     f.Quantity,
		side:         f.Side,
		commission:   f.Commission,
		slippageCost: f.SlippageCost,
	}
}

func (e *Engine) increasePosition(f orderbook.Fill) {
	e.adjustCash(f)
	total := e.position.Quantity + f.Quantity
	e.position.AvgEntryPrice = (e.position.AvgEntryPrice*e.position.Quantity + f.Price*f.Quantity) / total
	e.position.Quantity = total
	e.portfolio.SetPosition(e.symbol, e.position)
	if e.openTrade != nil {
		e.openTrade.quantity = total
		e.openTrade.entryPrice = e.position.AvgEntryPrice
		e.openTrade.commission += f.Commission
		e.openTrade.slippageCost += f.SlippageCost
	}
}

// reducePosition books realized PnL against the average entry and, on
// a full close, emits the TradeRecord and tears down the stop/target
// orders and the ratchet lineage.
func (e *Engine) reducePosition(f orderbook.Fill, t int) {
	e.adjustCash(f)

	var realized float64
	if e.position.Side == domain.PositionLong {
		realized = (f.Price - e.position.AvgEntryPrice) * f.Quantity
	} else {
		realized = (e.position.AvgEntryPrice - f.Price) * f.Quantity
	}
	e.position.RealizedPnL += realized
	e.position.Quantity -= f.Quantity

	if e.position.Quantity > 1e-9 {
		e.portfolio.SetPosition(e.symbol, e.position)
		return
	}
	e.closeTrade(f, t, realized)
}

func (e *Engine) closeTrade(f orderbook.Fill, t int, realized float64) {
	if e.openTrade != nil {
		ot := e.openTrade
		gross := realized
		commission := ot.commission + f.Commission
		slippage := ot.slippageCost + f.SlippageCost

		side := domain.SideBuy
		if ot.side == domain.SideSell {
			side = domain.SideSell
		}
		mae, mfe := e.excursions(ot, f.Price)

		e.trades = append(e.trades, domain.TradeRecord{
			ID:            uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("trade|%s|%d|%d", e.symbol, ot.entryBar, t))).String(),
			Symbol:        e.symbol,
			Side:          side,
			EntryBar:      ot.entryBar,
			EntryDate:     ot.entryDate,
			EntryPrice:    ot.entryPrice,
			ExitBar:       t,
			ExitDate:      e.curDate,
			ExitPrice:     f.Price,
			Quantity:      ot.quantity,
			GrossPnL:      gross,
			Commission:    commission,
			SlippageCost:  slippage,
			NetPnL:        gross - commission,
			MAE:           mae,
			MFE:           mfe,
			BarsHeld:      e.position.BarsHeld,
			SignalName:    e.strategy.Signal.Name(),
			FilterName:    e.strategy.Filter.Name(),
			PMName:        e.strategy.PositionManager.Name(),
			ExecModelName: e.strategy.ExecutionModel.Name(),
			SizerName:     e.strategy.Sizer.Name(),
		})
	}

	// Tear down whatever bracket legs remain working.
	if stopID, ok := e.book.StopOrderID(e.symbol); ok {
		e.book.Cancel(stopID, t)
		e.book.ClearStop(e.symbol)
	}
	if e.targetOrderID != "" {
		e.book.Cancel(e.targetOrderID, t)
		e.targetOrderID = ""
	}
	e.exitOrderID = ""
	e.openTrade = nil
	e.ratchet = nil
	e.position = domain.NewFlatPosition(e.symbol)
	e.portfolio.SetPosition(e.symbol, e.position)
}

// excursions derives dollar MAE/MFE from the close-based watermarks,
// widened by the exit price itself (an adverse exit can exceed any
// close watermark, e.g. a gapped stop).
func (e *Engine) excursions(ot *openTrade, exitPrice float64) (mae, mfe float64) {
	high := e.position.HighestPriceSinceEntry
	low := e.position.LowestPriceSinceEntry
	if math.IsNaN(high) {
		high = ot.entryPrice
	}
	if math.IsNaN(low) {
		low = ot.entryPrice
	}
	high = math.Max(high, exitPrice)
	low = math.Min(low, exitPrice)

	if e.position.Side == domain.PositionShort {
		mae = math.Max(0, (high-ot.entryPrice)*ot.quantity)
		mfe = math.Max(0, (ot.entryPrice-low)*ot.quantity)
		return
	}
	mae = math.Max(0, (ot.entryPrice-low)*ot.quantity)
	mfe = math.Max(0, (high-ot.entryPrice)*ot.quantity)
	return
}

func (e *Engine) adjustCash(f orderbook.Fill) {
	if f.Side == domain.SideBuy {
		e.portfolio.Cash -= f.Price*f.Quantity + f.Commission
	} else {
		e.portfolio.Cash += f.Price*f.Quantity - f.Commission
	}
}

// buildResult assembles the RunResult once the final bar has been
// processed.
func (e *Engine) buildResult() *domain.RunResult {
	finalEquity := e.cfg.InitialCapital
	if n := len(e.equityCurve); n > 0 {
		finalEquity = e.equityCurve[n-1].Equity
	}

	voidRate := 0.0
	if e.totalBars > 0 {
		voidRate = float64(e.voidBars) / float64(e.totalBars)
	}
	voidRates := map[string]float64{e.symbol: voidRate}

	result := &domain.RunResult{
		EquityCurve:         e.equityCurve,
		Fills:               e.fills,
		Trades:              e.trades,
		FinalEquity:         finalEquity,
		BarCount:            e.totalBars,
		WarmupBars:          e.warmupBars,
		VoidBarRates:        voidRates,
		DataQualityWarnings: diagnostics.QualityWarnings(voidRates),
		Stickiness:          diagnostics.Stickiness(e.trades, e.pmCallsActive, e.pmCallsTotal),
		SignalCount:         e.signalCount,
		SignalEvaluations:   e.signalEvaluations,
		RejectedIntents:     e.rejectedIntents,
	}

	if e.ghost != nil && len(e.idealCurve) > 0 {
		result.IdealEquityCurve = e.idealCurve
		idealFinal := e.idealCurve[len(e.idealCurve)-1].Equity
		if idealFinal != 0 {
			result.ExecutionDrag = (idealFinal - finalEquity) / idealFinal
			result.DeathCrossing = result.ExecutionDrag > 0.15
		}
	}
	return result
}
