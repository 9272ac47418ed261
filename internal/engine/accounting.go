package engine

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// equityIdentityTolerance bounds |equity - (cash + sum
// market_value)| at every bar close.
const equityIdentityTolerance = 1e-10

// markToMarket is the post-bar accounting step: update
// watermarks and unrealized PnL from bar.Close, append an equity
// point, and assert the equity identity. Returns an error (the debug
// assertion) if the identity is violated by more than tolerance.
func (e *Engine) markToMarket(bar domain.Bar, barIndex int) error {
	// A void bar has no close; mark at the last real close instead.
	close := bar.Close
	if bar.IsVoid() {
		close = e.lastClose
	} else {
		e.lastClose = close
	}

	if !e.position.IsFlat() {
		if !bar.IsVoid() {
			if isNaN(e.position.HighestPriceSinceEntry) || close > e.position.HighestPriceSinceEntry {
				e.position.HighestPriceSinceEntry = close
			}
			if isNaN(e.position.LowestPriceSinceEntry) || close < e.position.LowestPriceSinceEntry {
				e.position.LowestPriceSinceEntry = close
			}
		}
		if e.position.Side == domain.PositionLong {
			e.position.UnrealizedPnL = (close - e.position.AvgEntryPrice) * e.position.Quantity
		} else {
			e.position.UnrealizedPnL = (e.position.AvgEntryPrice - close) * e.position.Quantity
		}
	}
	// bars_held advances every bar, void included, so time-based
	// exits resume on the next real bar.
	if !e.position.IsFlat() {
		e.position.BarsHeld++
	}
	e.portfolio.SetPosition(e.symbol, e.position)

	lastClose := map[string]float64{e.symbol: close}
	equity := e.portfolio.Equity(lastClose)
	e.equityCurve = append(e.equityCurve, domain.EquityPoint{Date: bar.Date, Equity: equity})

	if bar.IsVoid() {
		return nil
	}

	marketValue := 0.0
	if !e.position.IsFlat() {
		marketValue = e.position.MarketValue(close)
	}
	reconstructed := e.portfolio.Cash + marketValue
	if math.Abs(equity-reconstructed) >= equityIdentityTolerance {
		return fmt.Errorf("engine: equity identity violated at bar %d: equity=%.12f cash+mv=%.12f", barIndex, equity, reconstructed)
	}
	return nil
}
