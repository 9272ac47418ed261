package indicators

import "github.com/trendlab-go/trendlab/internal/domain"

// Precompute walks bars once per indicator and populates a read-only
// IndicatorValues mapping. The result is shared by reference for the
// rest of the run.
func Precompute(bars []domain.Bar, set []Indicator) *domain.IndicatorValues {
	values := domain.NewIndicatorValues()
	for _, ind := range set {
		values.Set(ind.Name(), ind.Compute(bars))
	}
	return values
}

// RunWarmup is max(indicator.Lookback()) across set: the number of
// leading bars on which no signal or order may be issued.
func RunWarmup(set []Indicator) int {
	max := 0
	for _, ind := range set {
		if lb := ind.Lookback(); lb > max {
			max = lb
		}
	}
	return max
}
