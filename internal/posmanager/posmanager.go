// Package posmanager implements the C6 position managers: per-bar
// stop/target logic emitted as an OrderIntent. PMs never apply the
// ratchet themselves; the engine clamps AdjustStop, so every variant
// here simply returns its raw desired stop.
//
// OnBar is called only on real bars, after post-bar mark-to-market;
// void bars skip the call entirely while BarsHeld keeps advancing, so
// time-based variants (TimeDecay, MaxHoldingPeriod) resume correctly
// on the next real bar.
package posmanager

import "github.com/trendlab-go/trendlab/internal/domain"

// MarketStatus distinguishes a normal trading bar from one the engine
// has already flagged void (posmanager.OnBar is never actually called
// for void bars, but the status is threaded through for PMs that want
// to assert it).
type MarketStatus int

const (
	MarketOpen MarketStatus = iota
	MarketVoid
)

// Manager emits one OrderIntent per real bar for an open position.
type Manager interface {
	Name() string
	OnBar(position domain.Position, bar domain.Bar, barIndex int, status MarketStatus, values *domain.IndicatorValues) domain.OrderIntent
}
