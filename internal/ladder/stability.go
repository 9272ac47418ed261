// Package ladder implements C10: the five-level robustness promotion
// filter. A candidate strategy climbs CheapPass -> WalkForward ->
// ExecutionMC -> PathMC -> Bootstrap; at each level the primary metric
// across trials is collapsed into a stability score
// (median - penalty*IQR) and compared against the level's promotion
// criteria.
package ladder

import (
	"math"
	"sort"
)

// DefaultPenaltyFactor is the IQR penalty applied when a ladder does
// not override it.
const DefaultPenaltyFactor = 0.5

// Percentile reads the p-quantile (p in [0,1]) of values using linear
// interpolation on a sorted copy.
func Percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n == 1 {
		return sorted[0]
	}
	pos := p * float64(n-1)
	lo := int(pos)
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// StabilityScore is median - penalty*IQR over the trial values.
func StabilityScore(values []float64, penaltyFactor float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	median := Percentile(values, 0.5)
	iqr := Percentile(values, 0.75) - Percentile(values, 0.25)
	return median - penaltyFactor*iqr
}

// MetricDistribution keeps the full shape of a trial metric so
// confidence intervals and downstream visualizations stay available.
type MetricDistribution struct {
	Median      float64            `json:"median"`
	Mean        float64            `json:"mean"`
	IQR         float64            `json:"iqr"`
	Percentiles map[string]float64 `json:"percentiles"`
	AllValues   []float64          `json:"all_values"`
}

// NewMetricDistribution summarizes values.
func NewMetricDistribution(values []float64) MetricDistribution {
	d := MetricDistribution{
		AllValues:   values,
		Percentiles: make(map[string]float64, 7),
	}
	if len(values) == 0 {
		d.Median = math.NaN()
		d.Mean = math.NaN()
		d.IQR = math.NaN()
		return d
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	d.Mean = sum / float64(len(values))
	d.Median = Percentile(values, 0.5)
	d.IQR = Percentile(values, 0.75) - Percentile(values, 0.25)
	for name, p := range map[string]float64{
		"p2.5": 0.025, "p10": 0.10, "p25": 0.25, "p50": 0.50,
		"p75": 0.75, "p90": 0.90, "p97.5": 0.975,
	} {
		d.Percentiles[name] = Percentile(values, p)
	}
	return d
}
