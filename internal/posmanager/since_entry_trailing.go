package posmanager

import "github.com/trendlab-go/trendlab/internal/domain"

// SinceEntryTrailing is condition-only: it never places a stop order,
// instead forcing an unconditional exit once the drawdown from the
// highest (long) or lowest (short) price since entry reaches Pct. A
// same-bar triggered stop always resolves first in the intrabar
// phase, so this PM's ForceExit becomes a no-op against an
// already-closed position in that case.
type SinceEntryTrailing struct {
	Pct float64
}

func NewSinceEntryTrailing(pct float64) SinceEntryTrailing { return SinceEntryTrailing{Pct: pct} }
func (p SinceEntryTrailing) Name() string                  { return "since_entry_trailing" }

func (p SinceEntryTrailing) OnBar(position domain.Position, bar domain.Bar, barIndex int, status MarketStatus, values *domain.IndicatorValues) domain.OrderIntent {
	if position.IsFlat() {
		return domain.Hold()
	}
	var drawdown float64
	if position.Side == domain.PositionLong {
		peak := position.HighestPriceSinceEntry
		if peak <= 0 {
			return domain.Hold()
		}
		drawdown = (peak - bar.Close) / peak
	} else {
		trough := position.LowestPriceSinceEntry
		if trough <= 0 {
			return domain.Hold()
		}
		drawdown = (bar.Close - trough) / trough
	}
	if drawdown >= p.Pct {
		return domain.ForceExit()
	}
	return domain.Hold()
}
