package ladder

import (
	"time"

	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/execmodel"
	"github.com/trendlab-go/trendlab/internal/metrics"
)

// CheapPass (L1) is a single deterministic full-range backtest that
// filters obvious losers before any Monte-Carlo money is spent.
type CheapPass struct {
	Fitness  FitnessMetric
	Criteria PromotionCriteria
}

func (l *CheapPass) Name() string                        { return "cheap_pass" }
func (l *CheapPass) PromotionCriteria() PromotionCriteria { return l.Criteria }

func (l *CheapPass) Run(c *Candidate) (*LevelResult, error) {
	result, err := c.Run(TrialOptions{})
	if err != nil {
		return nil, err
	}
	perf := metrics.Compute(result, c.InitialCapital)
	values := []float64{l.Fitness.Value(perf)}
	return &LevelResult{
		Level:          l.Name(),
		Trials:         1,
		Distribution:   NewMetricDistribution(values),
		StabilityScore: StabilityScore(values, DefaultPenaltyFactor),
		MedianTrades:   float64(len(result.Trades)),
	}, nil
}

// WalkForward (L2) validates out-of-sample: the bar range is cut into
// Splits windows, each window's leading TrainFraction is treated as
// in-sample, and the candidate is scored on the trailing test segment
// of every window.
type WalkForward struct {
	Fitness       FitnessMetric
	Splits        int
	TrainFraction float64
	Criteria      PromotionCriteria
}

func (l *WalkForward) Name() string                        { return "walk_forward" }
func (l *WalkForward) PromotionCriteria() PromotionCriteria { return l.Criteria }

func (l *WalkForward) Run(c *Candidate) (*LevelResult, error) {
	splits := l.Splits
	if splits < 2 {
		splits = 2
	}
	window := c.BarCount / splits
	var values []float64
	var tradeCounts []float64

	for i := 0; i < splits; i++ {
		start := i * window
		end := start + window
		if i == splits-1 {
			end = c.BarCount
		}
		testStart := start + int(float64(end-start)*l.TrainFraction)
		if testStart >= end {
			continue
		}
		result, err := c.Run(TrialOptions{
			Iteration: uint64(i),
			BarStart:  testStart,
			BarEnd:    end,
		})
		if err != nil {
			return nil, err
		}
		perf := metrics.Compute(result, c.InitialCapital)
		values = append(values, l.Fitness.Value(perf))
		tradeCounts = append(tradeCounts, float64(len(result.Trades)))
	}

	return &LevelResult{
		Level:          l.Name(),
		Trials:         len(values),
		Distribution:   NewMetricDistribution(values),
		StabilityScore: StabilityScore(values, DefaultPenaltyFactor),
		MedianTrades:   Percentile(tradeCounts, 0.5),
	}, nil
}

// ExecutionMC (L3) perturbs the cost assumptions: each trial scales
// slippage and commission by an independent draw in [0.5, 2.0],
// probing whether the edge survives friction uncertainty.
type ExecutionMC struct {
	Fitness  FitnessMetric
	Trials   int
	Criteria PromotionCriteria
}

func (l *ExecutionMC) Name() string                        { return "execution_mc" }
func (l *ExecutionMC) PromotionCriteria() PromotionCriteria { return l.Criteria }

func (l *ExecutionMC) Run(c *Candidate) (*LevelResult, error) {
	var values []float64
	var tradeCounts []float64
	for i := 0; i < l.Trials; i++ {
		rng := c.Seeds.RNGFor(c.RunID, c.Symbol, uint64(i))
		result, err := c.Run(TrialOptions{
			Iteration:            uint64(i),
			SlippageMultiplier:   0.5 + rng.Float64()*1.5,
			CommissionMultiplier: 0.5 + rng.Float64()*1.5,
		})
		if err != nil {
			return nil, err
		}
		perf := metrics.Compute(result, c.InitialCapital)
		values = append(values, l.Fitness.Value(perf))
		tradeCounts = append(tradeCounts, float64(len(result.Trades)))
	}
	return &LevelResult{
		Level:          l.Name(),
		Trials:         len(values),
		Distribution:   NewMetricDistribution(values),
		StabilityScore: StabilityScore(values, DefaultPenaltyFactor),
		MedianTrades:   Percentile(tradeCounts, 0.5),
	}, nil
}

// PathMC (L4) samples the intrabar path policy per trial, probing
// sensitivity to OHLC ordering ambiguity: a strategy whose edge
// depends on best-case intrabar sequencing dies here.
type PathMC struct {
	Fitness  FitnessMetric
	Trials   int
	Criteria PromotionCriteria
}

func (l *PathMC) Name() string                        { return "path_mc" }
func (l *PathMC) PromotionCriteria() PromotionCriteria { return l.Criteria }

func (l *PathMC) Run(c *Candidate) (*LevelResult, error) {
	policies := []execmodel.PathPolicy{
		execmodel.PathDeterministic,
		execmodel.PathWorstCase,
		execmodel.PathBestCase,
	}
	var values []float64
	var tradeCounts []float64
	for i := 0; i < l.Trials; i++ {
		rng := c.Seeds.RNGFor(c.RunID, c.Symbol, uint64(i))
		policy := policies[rng.IntN(len(policies))]
		result, err := c.Run(TrialOptions{
			Iteration:    uint64(i),
			PathOverride: &policy,
		})
		if err != nil {
			return nil, err
		}
		perf := metrics.Compute(result, c.InitialCapital)
		values = append(values, l.Fitness.Value(perf))
		tradeCounts = append(tradeCounts, float64(len(result.Trades)))
	}
	return &LevelResult{
		Level:          l.Name(),
		Trials:         len(values),
		Distribution:   NewMetricDistribution(values),
		StabilityScore: StabilityScore(values, DefaultPenaltyFactor),
		MedianTrades:   Percentile(tradeCounts, 0.5),
	}, nil
}

// Bootstrap (L5) probes sequence dependence: the base run's per-bar
// returns are resampled in contiguous blocks of BlockSize and the
// metric is recomputed over each synthetic path. No re-backtesting
// happens here; the resampling operates on the realized return
// stream.
type Bootstrap struct {
	Fitness   FitnessMetric
	Trials    int
	BlockSize int
	Criteria  PromotionCriteria
}

func (l *Bootstrap) Name() string                        { return "bootstrap" }
func (l *Bootstrap) PromotionCriteria() PromotionCriteria { return l.Criteria }

func (l *Bootstrap) Run(c *Candidate) (*LevelResult, error) {
	base, err := c.Run(TrialOptions{})
	if err != nil {
		return nil, err
	}
	returns := equityReturns(base.EquityCurve)
	if len(returns) == 0 {
		values := []float64{}
		return &LevelResult{
			Level:        l.Name(),
			Distribution: NewMetricDistribution(values),
		}, nil
	}

	block := l.BlockSize
	if block < 1 {
		block = 1
	}
	var values []float64
	for i := 0; i < l.Trials; i++ {
		rng := c.Seeds.RNGFor(c.RunID, c.Symbol, uint64(i))
		resampled := make([]float64, 0, len(returns))
		for len(resampled) < len(returns) {
			start := rng.IntN(len(returns))
			for j := 0; j < block && len(resampled) < len(returns); j++ {
				resampled = append(resampled, returns[(start+j)%len(returns)])
			}
		}
		perf := performanceFromReturns(resampled, c.InitialCapital, base.Trades)
		values = append(values, l.Fitness.Value(perf))
	}
	return &LevelResult{
		Level:          l.Name(),
		Trials:         len(values),
		Distribution:   NewMetricDistribution(values),
		StabilityScore: StabilityScore(values, DefaultPenaltyFactor),
		MedianTrades:   float64(len(base.Trades)),
	}, nil
}

func equityReturns(curve []domain.EquityPoint) []float64 {
	var out []float64
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Equity
		if prev == 0 {
			continue
		}
		out = append(out, (curve[i].Equity-prev)/prev)
	}
	return out
}

// performanceFromReturns compounds a resampled return stream into a
// synthetic equity curve and computes performance over it. Trades are
// carried from the base run so trade-count criteria stay meaningful.
func performanceFromReturns(returns []float64, initialCapital float64, trades []domain.TradeRecord) metrics.Performance {
	curve := make([]domain.EquityPoint, 0, len(returns)+1)
	day := time.Unix(0, 0).UTC()
	equity := initialCapital
	curve = append(curve, domain.EquityPoint{Date: day, Equity: equity})
	for i, r := range returns {
		equity *= 1 + r
		curve = append(curve, domain.EquityPoint{Date: day.AddDate(0, 0, i+1), Equity: equity})
	}
	synthetic := &domain.RunResult{
		EquityCurve: curve,
		FinalEquity: equity,
		Trades:      trades,
	}
	return metrics.Compute(synthetic, initialCapital)
}
