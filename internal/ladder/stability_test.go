package ladder

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// Worked example: trials [1.8, 1.9, 2.0, 1.9, 2.1] with penalty 0.5.
// Under linear-interpolation percentiles the sorted values
// [1.8, 1.9, 1.9, 2.0, 2.1] give p25 = 1.9, p75 = 2.0, so IQR = 0.1
// and score = 1.9 - 0.5*0.1 = 1.85.
func TestStabilityScoreWorkedExample(t *testing.T) {
	values := []float64{1.8, 1.9, 2.0, 1.9, 2.1}

	require.InDelta(t, 1.9, Percentile(values, 0.5), 1e-10)
	iqr := Percentile(values, 0.75) - Percentile(values, 0.25)
	require.InDelta(t, 0.1, iqr, 1e-10)
	require.InDelta(t, 1.85, StabilityScore(values, 0.5), 1e-10)

	res := &LevelResult{
		StabilityScore: StabilityScore(values, 0.5),
		Distribution:   NewMetricDistribution(values),
		MedianTrades:   20,
	}
	promoted, reason := evaluateCriteria(PromotionCriteria{MinStabilityScore: 1.5, MaxIQR: 0.5}, res)
	require.True(t, promoted, reason)
}

func TestPercentileInterpolates(t *testing.T) {
	values := []float64{1, 2, 3, 4}
	require.InDelta(t, 2.5, Percentile(values, 0.5), 1e-10)
	require.InDelta(t, 1.0, Percentile(values, 0), 1e-10)
	require.InDelta(t, 4.0, Percentile(values, 1), 1e-10)
	require.InDelta(t, 1.75, Percentile(values, 0.25), 1e-10)
}

func TestPercentileUnsortedInput(t *testing.T) {
	require.InDelta(t, 1.9, Percentile([]float64{2.1, 1.8, 1.9, 2.0, 1.9}, 0.5), 1e-10)
}

func TestStabilityScoreEmpty(t *testing.T) {
	require.True(t, math.IsNaN(StabilityScore(nil, 0.5)))
}

func TestMetricDistributionShape(t *testing.T) {
	values := []float64{1.8, 1.9, 2.0, 1.9, 2.1}
	d := NewMetricDistribution(values)
	require.InDelta(t, 1.9, d.Median, 1e-10)
	require.InDelta(t, 1.94, d.Mean, 1e-10)
	require.InDelta(t, 0.1, d.IQR, 1e-10)
	require.Len(t, d.Percentiles, 7)
	require.InDelta(t, d.Percentiles["p50"], d.Median, 1e-10)
	require.LessOrEqual(t, d.Percentiles["p2.5"], d.Percentiles["p97.5"])
	require.Equal(t, values, d.AllValues)
}

func TestCriteriaRejectionReasons(t *testing.T) {
	minTrades := 10
	minRaw := 1.0
	pc := PromotionCriteria{
		MinStabilityScore: 0.5,
		MaxIQR:            0.3,
		MinTrades:         &minTrades,
		MinRawMetric:      &minRaw,
	}

	lowScore := &LevelResult{StabilityScore: 0.2, Distribution: NewMetricDistribution([]float64{0.2, 0.2})}
	promoted, reason := evaluateCriteria(pc, lowScore)
	require.False(t, promoted)
	require.Contains(t, reason, "stability score")

	wideIQR := &LevelResult{StabilityScore: 1.0, Distribution: NewMetricDistribution([]float64{0, 2, 4})}
	promoted, reason = evaluateCriteria(pc, wideIQR)
	require.False(t, promoted)
	require.Contains(t, reason, "IQR")

	fewTrades := &LevelResult{StabilityScore: 2.0, Distribution: NewMetricDistribution([]float64{2, 2, 2}), MedianTrades: 3}
	promoted, reason = evaluateCriteria(pc, fewTrades)
	require.False(t, promoted)
	require.Contains(t, reason, "trade count")
}

// MaxDrawdown ranks correctly under plain numeric comparison because
// it is stored non-positive.
func TestDrawdownFitnessOrdering(t *testing.T) {
	require.Greater(t, -0.05, -0.20)
	m, err := ParseFitnessMetric("max_drawdown")
	require.NoError(t, err)
	require.Equal(t, FitnessMaxDrawdown, m)
}
