package posmanager

import "github.com/trendlab-go/trendlab/internal/domain"

// MaxHoldingPeriod forces an exit once BarsHeld reaches MaxBars. Since
// OnBar is only invoked on real bars while BarsHeld advances through
// void bars too, the exit correctly fires on the first real bar after
// the threshold is crossed, never during a void stretch.
type MaxHoldingPeriod struct {
	MaxBars int
}

func NewMaxHoldingPeriod(maxBars int) MaxHoldingPeriod { return MaxHoldingPeriod{MaxBars: maxBars} }
func (p MaxHoldingPeriod) Name() string                { return "max_holding_period" }

func (p MaxHoldingPeriod) OnBar(position domain.Position, bar domain.Bar, barIndex int, status MarketStatus, values *domain.IndicatorValues) domain.OrderIntent {
	if position.IsFlat() {
		return domain.Hold()
	}
	if position.BarsHeld >= p.MaxBars {
		return domain.ForceExit()
	}
	return domain.Hold()
}
