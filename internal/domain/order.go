package domain

// OrderType enumerates the concrete instructions an execution model or
// position manager can express.
type OrderType int

const (
	OrderMarketOnOpen OrderType = iota
	OrderMarketOnClose
	OrderMarketNow
	OrderLimit
	OrderStopMarket
	OrderStopLimit
)

func (t OrderType) String() string {
	switch t {
	case OrderMarketOnOpen:
		return "market_on_open"
	case OrderMarketOnClose:
		return "market_on_close"
	case OrderMarketNow:
		return "market_now"
	case OrderLimit:
		return "limit"
	case OrderStopMarket:
		return "stop_market"
	case OrderStopLimit:
		return "stop_limit"
	default:
		return "unknown"
	}
}

// OrderState is the order's lifecycle state.
//
//	Pending --activate--> Active --trigger--> Triggered --fill--> Filled
//	   |                                         |
//	   +--cancel/expire--> Cancelled/Expired     +--partial--> PartiallyFilled --> Filled
type OrderState int

const (
	OrderPending OrderState = iota
	OrderActive
	OrderTriggered
	OrderPartiallyFilled
	OrderFilled
	OrderCancelled
	OrderExpired
)

func (s OrderState) String() string {
	switch s {
	case OrderPending:
		return "pending"
	case OrderActive:
		return "active"
	case OrderTriggered:
		return "triggered"
	case OrderPartiallyFilled:
		return "partially_filled"
	case OrderFilled:
		return "filled"
	case OrderCancelled:
		return "cancelled"
	case OrderExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transition is possible.
func (s OrderState) IsTerminal() bool {
	return s == OrderFilled || s == OrderCancelled || s == OrderExpired
}

// Side is the transaction direction of an order or a position.
type Side int

const (
	SideBuy Side = iota
	SideSell
)

func (s Side) String() string {
	if s == SideSell {
		return "sell"
	}
	return "buy"
}

// Order is a single instruction to transact, carried through the
// lifecycle states above. Price/Trigger are populated only for the
// order types that need them (Limit, StopMarket, StopLimit).
type Order struct {
	ID             string
	Symbol         string
	Type           OrderType
	Side           Side
	Quantity       float64
	FilledQuantity float64
	State          OrderState
	Price          float64 // Limit price, or StopLimit's limit leg
	Trigger        float64 // StopMarket/StopLimit trigger
	ParentID       string  // non-empty if this order was spawned by another's fill
	OCOSiblingID   string  // non-empty for bracket legs
	CreatedBar     int
	ClosedBar      int // -1 if still open
}

// Remaining returns the unfilled quantity.
func (o Order) Remaining() float64 {
	return o.Quantity - o.FilledQuantity
}

// CanFill reports whether an order may transition into a fill from
// its current state; only Active, Triggered, and PartiallyFilled
// orders are fillable.
func (o Order) CanFill() bool {
	return o.State == OrderActive || o.State == OrderTriggered || o.State == OrderPartiallyFilled
}
