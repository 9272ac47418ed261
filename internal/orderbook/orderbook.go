// Package orderbook implements the order lifecycle: intrabar fill
// resolution, gap-through detection, cost application, and OCO/bracket
// linking. The book is owned exclusively by one engine-loop run for
// its duration — nothing here is safe for concurrent use across runs.
package orderbook

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/trendlab-go/trendlab/internal/domain"
)

// Book owns every order placed during a run, keyed by ID, plus the
// per-symbol index of the currently Active PM-managed stop (so a PM's
// AdjustStop intent can be translated into a cancel-replace against
// the tracked stop order id).
type Book struct {
	orders      map[string]*domain.Order
	ids         []string          // submission order, for deterministic iteration
	seq         int               // monotone per-book counter feeding deterministic IDs
	stopOrderID map[string]string // symbol -> order id
	liquidity   *LiquidityPolicy
}

// New returns an empty order book. liquidity may be nil (no cap).
func New(liquidity *LiquidityPolicy) *Book {
	return &Book{
		orders:      make(map[string]*domain.Order),
		stopOrderID: make(map[string]string),
		liquidity:   liquidity,
	}
}

// Submit assigns a fresh ID to order and stores it with the State the
// caller set (the zero value is Pending), returning the ID. Callers set
// every other field before calling Submit.
//
// IDs are v5 (SHA-1) UUIDs over (symbol, created bar, submission
// sequence), not random v4s: two runs with identical inputs must
// produce bit-identical order IDs for the determinism invariant to
// hold.
func (b *Book) Submit(order domain.Order) string {
	b.seq++
	order.ID = uuid.NewSHA1(uuid.NameSpaceOID,
		[]byte(fmt.Sprintf("%s|%d|%d", order.Symbol, order.CreatedBar, b.seq))).String()
	order.ClosedBar = -1
	b.orders[order.ID] = &order
	b.ids = append(b.ids, order.ID)
	return order.ID
}

// Order returns the order for id, or (zero, false) if unknown.
func (b *Book) Order(id string) (domain.Order, bool) {
	o, ok := b.orders[id]
	if !ok {
		return domain.Order{}, false
	}
	return *o, true
}

// Active returns every order currently in a non-terminal, non-Pending
// state (Active, Triggered, PartiallyFilled) for symbol.
func (b *Book) Active(symbol string) []*domain.Order {
	var out []*domain.Order
	for _, id := range b.ids {
		o := b.orders[id]
		if o.Symbol == symbol && (o.State == domain.OrderActive || o.State == domain.OrderTriggered || o.State == domain.OrderPartiallyFilled) {
			out = append(out, o)
		}
	}
	return out
}

// PendingChildren returns Pending orders whose ParentID is parentID:
// orders waiting to be activated once their parent fills.
func (b *Book) PendingChildren(parentID string) []*domain.Order {
	var out []*domain.Order
	for _, id := range b.ids {
		o := b.orders[id]
		if o.ParentID == parentID && o.State == domain.OrderPending {
			out = append(out, o)
		}
	}
	return out
}

// ActivateReadyChildren activates every Pending order whose parent has
// reached Filled (start-of-bar phase).
func (b *Book) ActivateReadyChildren() {
	for _, id := range b.ids {
		o := b.orders[id]
		if o.State != domain.OrderPending || o.ParentID == "" {
			continue
		}
		if parent, ok := b.orders[o.ParentID]; ok && parent.State == domain.OrderFilled {
			o.State = domain.OrderActive
		}
	}
}

// Activate transitions a Pending order to Active.
func (b *Book) Activate(id string) {
	if o, ok := b.orders[id]; ok && o.State == domain.OrderPending {
		o.State = domain.OrderActive
	}
}

// Cancel transitions a non-terminal order to Cancelled.
func (b *Book) Cancel(id string, barIndex int) {
	o, ok := b.orders[id]
	if !ok || o.State.IsTerminal() {
		return
	}
	o.State = domain.OrderCancelled
	o.ClosedBar = barIndex
}

// StopOrderID returns the Active stop order tracked for symbol.
func (b *Book) StopOrderID(symbol string) (string, bool) {
	id, ok := b.stopOrderID[symbol]
	return id, ok
}

// CancelReplaceStop performs an atomic cancel-replace: newOrder is
// submitted and becomes the tracked stop
// BEFORE the old stop is cancelled, so no intermediate state has the
// position stopless. Returns the new order's ID.
func (b *Book) CancelReplaceStop(symbol string, newOrder domain.Order, barIndex int) string {
	newOrder.State = domain.OrderActive
	newID := b.Submit(newOrder)

	oldID, hadOld := b.stopOrderID[symbol]
	b.stopOrderID[symbol] = newID
	if hadOld {
		b.Cancel(oldID, barIndex)
	}
	return newID
}

// ClearStop drops the tracked stop for symbol without cancelling the
// underlying order (used once a position has fully exited and its
// stop has already filled/cancelled through the normal lifecycle).
func (b *Book) ClearStop(symbol string) {
	delete(b.stopOrderID, symbol)
}

// LinkOCO marks a and b as bracket siblings: filling one cancels the
// other in the same bar.
func (b *Book) LinkOCO(aID, bID string) {
	if a, ok := b.orders[aID]; ok {
		a.OCOSiblingID = bID
	}
	if bb, ok := b.orders[bID]; ok {
		bb.OCOSiblingID = aID
	}
}

// fillRemaining records a fill against order id, transitioning it to
// PartiallyFilled or Filled. Filling beyond the remaining quantity is
// a programming error and panics.
func (b *Book) fillRemaining(id string, qty float64, barIndex int) {
	o, ok := b.orders[id]
	if !ok {
		panic(fmt.Sprintf("orderbook: fillRemaining on unknown order %s", id))
	}
	if qty > o.Remaining()+1e-9 {
		panic(fmt.Sprintf("orderbook: fill quantity %.8f exceeds remaining %.8f on order %s", qty, o.Remaining(), id))
	}
	o.FilledQuantity += qty
	if o.Remaining() <= 1e-9 {
		o.State = domain.OrderFilled
		o.ClosedBar = barIndex
	} else {
		o.State = domain.OrderPartiallyFilled
	}
}
