package orderbook

import (
	"math"
	"sort"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// RemainderPolicy decides what happens to the unfilled portion of an
// order once the shared liquidity pool for a bar is exhausted.
type RemainderPolicy int

const (
	RemainderCarry RemainderPolicy = iota
	RemainderCancel
	RemainderPartialFill
)

// LiquidityPolicy caps per-bar fill quantity at floor(volume *
// MaxParticipation), allocated FIFO by submission bar across every
// order eligible to fill that bar for a symbol.
type LiquidityPolicy struct {
	MaxParticipation float64
	Remainder        RemainderPolicy
}

// candidate is one order wanting to fill this bar, with the quantity
// it would fill absent a liquidity cap.
type candidate struct {
	order *domain.Order
	want  float64
}

// allocate caps total desired quantity at the bar's available volume
// and distributes it FIFO by CreatedBar (ties broken by order ID for
// determinism), returning the quantity each candidate actually
// receives. Candidates that receive less than they wanted are handled
// by the caller per Remainder.
func (lp *LiquidityPolicy) allocate(cands []candidate, volume float64) map[string]float64 {
	granted := make(map[string]float64, len(cands))
	if len(cands) == 0 {
		return granted
	}
	if lp == nil {
		for _, c := range cands {
			granted[c.order.ID] = c.want
		}
		return granted
	}

	pool := math.Floor(volume * lp.MaxParticipation)
	if pool < 0 {
		pool = 0
	}

	sorted := make([]candidate, len(cands))
	copy(sorted, cands)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].order.CreatedBar != sorted[j].order.CreatedBar {
			return sorted[i].order.CreatedBar < sorted[j].order.CreatedBar
		}
		return sorted[i].order.ID < sorted[j].order.ID
	})

	remaining := pool
	for _, c := range sorted {
		if remaining <= 0 {
			granted[c.order.ID] = 0
			continue
		}
		take := math.Min(c.want, remaining)
		granted[c.order.ID] = take
		remaining -= take
	}
	return granted
}
