package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trendlab-go/trendlab/internal/domain"
)

func tradesWithHolds(holds ...int) []domain.TradeRecord {
	out := make([]domain.TradeRecord, len(holds))
	for i, h := range holds {
		out[i] = domain.TradeRecord{BarsHeld: h}
	}
	return out
}

func TestStickinessNilWithoutTrades(t *testing.T) {
	require.Nil(t, Stickiness(nil, 3, 10))
}

func TestStickinessHoldingDistribution(t *testing.T) {
	m := Stickiness(tradesWithHolds(10, 20, 30, 40, 200), 25, 100)
	require.NotNil(t, m)
	require.InDelta(t, 30.0, m.MedianHoldingBars, 1e-10)
	require.InDelta(t, 0.2, m.PctOver120Bars, 1e-10)
	require.InDelta(t, 0.2, m.PctOver60Bars, 1e-10)
	require.InDelta(t, 0.25, m.ExitTriggerRate, 1e-10)
	require.InDelta(t, 4.0, m.ReferenceChaseRatio, 1e-10)
}

// A PM that never emits an active intent produces the capped chase
// ratio — the stickiness pathology signature.
func TestStickinessChaseRatioCapped(t *testing.T) {
	m := Stickiness(tradesWithHolds(100, 150, 180), 0, 500)
	require.NotNil(t, m)
	require.InDelta(t, 0.0, m.ExitTriggerRate, 1e-10)
	require.InDelta(t, 100.0, m.ReferenceChaseRatio, 1e-10)
}

func TestQualityWarningsThreshold(t *testing.T) {
	warnings := QualityWarnings(map[string]float64{
		"CLEAN": 0.02,
		"DIRTY": 0.12,
	})
	require.Len(t, warnings, 1)
	require.Equal(t, "DIRTY", warnings[0].Symbol)
	require.Contains(t, warnings[0].Message, "12%")
}
