package engine

import (
	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/orderbook"
)

// ghostTracker replays the same fill sequence the real portfolio sees
// but at each fill's pre-cost RawPrice and zero commission, producing
// the "ideal" frictionless equity curve that execution drag is
// measured against. It mirrors only the cash/position
// bookkeeping the real engine does, never the order book itself.
type ghostTracker struct {
	cash     float64
	position domain.Position
}

func newGhostTracker(initialCapital float64) *ghostTracker {
	return &ghostTracker{cash: initialCapital, position: domain.NewFlatPosition("")}
}

func (g *ghostTracker) applyFill(fill orderbook.Fill) {
	price := fill.RawPrice
	qty := fill.Quantity

	if g.position.IsFlat() {
		side := domain.PositionLong
		if fill.Side == domain.SideSell {
			side = domain.PositionShort
		}
		g.position = domain.Position{Symbol: fill.Symbol, Side: side, Quantity: qty, AvgEntryPrice: price}
	} else {
		g.position = domain.NewFlatPosition(fill.Symbol)
	}

	if fill.Side == domain.SideBuy {
		g.cash -= price * qty
	} else {
		g.cash += price * qty
	}
}

func (g *ghostTracker) equity(close float64) float64 {
	mv := 0.0
	if !g.position.IsFlat() {
		mv = g.position.MarketValue(close)
	}
	return g.cash + mv
}
