package posmanager

import "github.com/trendlab-go/trendlab/internal/domain"

// TimeDecay tightens a percentage stop as the position ages:
// pct(t) = max(InitialPct - Decay*t, MinPct), stop = close*(1-pct(t))
// for a long (close*(1+pct(t)) for a short).
type TimeDecay struct {
	InitialPct float64
	Decay      float64
	MinPct     float64
}

func NewTimeDecay(initialPct, decay, minPct float64) TimeDecay {
	return TimeDecay{InitialPct: initialPct, Decay: decay, MinPct: minPct}
}

func (p TimeDecay) Name() string { return "time_decay" }

func (p TimeDecay) pct(barsHeld int) float64 {
	v := p.InitialPct - p.Decay*float64(barsHeld)
	if v < p.MinPct {
		return p.MinPct
	}
	return v
}

func (p TimeDecay) OnBar(position domain.Position, bar domain.Bar, barIndex int, status MarketStatus, values *domain.IndicatorValues) domain.OrderIntent {
	if position.IsFlat() {
		return domain.Hold()
	}
	pct := p.pct(position.BarsHeld)
	if position.Side == domain.PositionLong {
		return domain.AdjustStop(bar.Close * (1 - pct))
	}
	return domain.AdjustStop(bar.Close * (1 + pct))
}
