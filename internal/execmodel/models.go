package execmodel

import (
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// Preset carries the path/gap/cost parameters shared by every model
// variant, built by the preset constructors in presets.go.
type Preset struct {
	path       PathPolicy
	gap        GapPolicy
	slippage   float64
	commission float64
}

func (p Preset) PathPolicy() PathPolicy { return p.path }
func (p Preset) GapPolicy() GapPolicy   { return p.gap }
func (p Preset) SlippageBps() float64   { return p.slippage }
func (p Preset) CommissionBps() float64 { return p.commission }

// NextBarOpen expresses every entry as a MarketOnOpen order, filled at
// the following bar's open.
type NextBarOpen struct{ Preset }

func NewNextBarOpen(p Preset) NextBarOpen { return NextBarOpen{Preset: p} }
func (m NextBarOpen) Name() string      { return "next_bar_open" }
func (m NextBarOpen) EntryOrderType(signal domain.SignalEvent, bar domain.Bar) (domain.OrderType, float64, float64) {
	return domain.OrderMarketOnOpen, 0, 0
}

// CloseOnSignal expresses every entry as a MarketOnClose order, filled
// at the signal bar's own close.
type CloseOnSignal struct{ Preset }

func NewCloseOnSignal(p Preset) CloseOnSignal { return CloseOnSignal{Preset: p} }
func (m CloseOnSignal) Name() string        { return "close_on_signal" }
func (m CloseOnSignal) EntryOrderType(signal domain.SignalEvent, bar domain.Bar) (domain.OrderType, float64, float64) {
	return domain.OrderMarketOnClose, 0, 0
}

// StopEntry places a StopMarket at the signal's breakout_level
// metadata, falling back to high +/- one tick when that metadata is
// absent: a buy-stop above the day's high, a sell-stop below the low.
type StopEntry struct {
	Preset
	TickSize float64
}

func NewStopEntry(p Preset, tickSize float64) StopEntry {
	return StopEntry{Preset: p, TickSize: tickSize}
}
func (m StopEntry) Name() string                      { return "stop_entry" }

func (m StopEntry) EntryOrderType(signal domain.SignalEvent, bar domain.Bar) (domain.OrderType, float64, float64) {
	trigger, ok := signal.Meta("breakout_level")
	if !ok || math.IsNaN(trigger) {
		tick := m.TickSize
		if tick <= 0 {
			tick = 0.01
		}
		if signal.Direction == domain.DirectionLong {
			trigger = bar.High + tick
		} else {
			trigger = bar.Low - tick
		}
	}
	return domain.OrderStopMarket, 0, trigger
}

// LimitEntry places a passive pullback Limit at reference_price
// offset by OffsetBps away from the market: a long bids below the
// reference and waits for price to come back to it, a short offers
// above.
type LimitEntry struct {
	Preset
	OffsetBps float64
}

func NewLimitEntry(p Preset, offsetBps float64) LimitEntry {
	return LimitEntry{Preset: p, OffsetBps: offsetBps}
}
func (m LimitEntry) Name() string { return "limit_entry" }

func (m LimitEntry) EntryOrderType(signal domain.SignalEvent, bar domain.Bar) (domain.OrderType, float64, float64) {
	ref, ok := signal.Meta("reference_price")
	if !ok || math.IsNaN(ref) {
		ref = bar.Close
	}
	offset := ref * m.OffsetBps / 10_000
	var price float64
	if signal.Direction == domain.DirectionLong {
		// Buying: bid below the reference and let price pull back in.
		price = ref - offset
	} else {
		// Selling short: offer above the reference.
		price = ref + offset
	}
	return domain.OrderLimit, price, 0
}
