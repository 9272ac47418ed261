package signalgen

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
)

// MACross goes long when the fast SMA crosses above the slow SMA and
// short on the opposite cross. The cross itself is detected on bar t
// against bar t-1, so a flat tie never re-fires the signal.
type MACross struct {
	FastPeriod int
	SlowPeriod int
}

func NewMACross(fast, slow int) MACross { return MACross{FastPeriod: fast, SlowPeriod: slow} }

func (m MACross) Name() string { return "ma_cross" }
func (m MACross) WarmupBars() int {
	if m.SlowPeriod > m.FastPeriod {
		return m.SlowPeriod
	}
	return m.FastPeriod
}

func (m MACross) fastKey() string { return fmt.Sprintf("sma_%d", m.FastPeriod) }
func (m MACross) slowKey() string { return fmt.Sprintf("sma_%d", m.SlowPeriod) }

func (m MACross) Evaluate(bars []domain.Bar, barIndex int, values *domain.IndicatorValues) (domain.SignalEvent, bool) {
	if barIndex < 1 || barIndex < m.WarmupBars() || bars[barIndex].IsVoid() {
		return domain.SignalEvent{}, false
	}
	fastNow := values.At(m.fastKey(), barIndex)
	slowNow := values.At(m.slowKey(), barIndex)
	fastPrev := values.At(m.fastKey(), barIndex-1)
	slowPrev := values.At(m.slowKey(), barIndex-1)
	if math.IsNaN(fastNow) || math.IsNaN(slowNow) || math.IsNaN(fastPrev) || math.IsNaN(slowPrev) {
		return domain.SignalEvent{}, false
	}

	crossedUp := fastPrev <= slowPrev && fastNow > slowNow
	crossedDown := fastPrev >= slowPrev && fastNow < slowNow
	if !crossedUp && !crossedDown {
		return domain.SignalEvent{}, false
	}

	direction := domain.DirectionLong
	if crossedDown {
		direction = domain.DirectionShort
	}
	bar := bars[barIndex]
	return domain.SignalEvent{
		BarIndex:  barIndex,
		Date:      bar.Date,
		Symbol:    bar.Symbol,
		Direction: direction,
		Strength:  crossStrength(fastNow, slowNow),
		Metadata: map[string]float64{
			"breakout_level":  slowNow,
			"reference_price": bar.Close,
			"signal_bar_low":  bar.Low,
		},
	}, true
}

// crossStrength maps the relative fast/slow separation into [0,1].
func crossStrength(fast, slow float64) float64 {
	if slow == 0 {
		return 0
	}
	s := math.Abs(fast-slow) / math.Abs(slow) * 100
	if s > 1 {
		s = 1
	}
	return s
}
