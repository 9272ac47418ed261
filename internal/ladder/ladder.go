package ladder

import (
	"fmt"
	"math"

	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/execmodel"
	"github.com/trendlab-go/trendlab/internal/rngseed"
	"go.uber.org/zap"
)

// TrialOptions parameterize one trial run of a candidate. The zero
// value means "the candidate's own configuration, full bar range".
type TrialOptions struct {
	Iteration            uint64
	SlippageMultiplier   float64 // 0 means 1.0 (unperturbed)
	CommissionMultiplier float64 // 0 means 1.0
	PathOverride         *execmodel.PathPolicy
	BarStart             int // inclusive; 0 with BarEnd==0 means full range
	BarEnd               int // exclusive
}

// Runner executes one backtest trial for a candidate. Implementations
// must be deterministic in TrialOptions: the ladder re-derives seeds
// from the hierarchy, never from wall-clock or thread identity.
type Runner func(opts TrialOptions) (*domain.RunResult, error)

// Candidate is one strategy under evaluation, with everything a level
// needs to run trials against it.
type Candidate struct {
	Config         domain.StrategyConfig
	RunID          domain.RunID
	Symbol         string
	BarCount       int
	InitialCapital float64
	Seeds          rngseed.Hierarchy
	Run            Runner
}

// PromotionCriteria gates entry to the next level. MinTrades and
// MinRawMetric are optional (nil = not checked). All present criteria
// must hold.
type PromotionCriteria struct {
	MinStabilityScore float64
	MaxIQR            float64
	MinTrades         *int
	MinRawMetric      *float64
}

// LevelResult is the full outcome of one level's trials.
type LevelResult struct {
	Level          string
	Trials         int
	Distribution   MetricDistribution
	StabilityScore float64
	MedianTrades   float64
	Promoted       bool
	Reason         string
}

// Level is one rung of the ladder.
type Level interface {
	Name() string
	Run(c *Candidate) (*LevelResult, error)
	PromotionCriteria() PromotionCriteria
}

// Ladder is an ordered list of levels with monotonically tightening
// criteria. A candidate enters level k only after promotion from k-1.
type Ladder struct {
	levels []Level
	logger *zap.Logger
}

// New builds a ladder over levels. logger may be nil.
func New(logger *zap.Logger, levels ...Level) *Ladder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ladder{levels: levels, logger: logger}
}

// Default returns the standard five-level ladder with the
// standard trial counts, evaluating fitness.
func Default(logger *zap.Logger, fitness FitnessMetric) *Ladder {
	minTrades := 5
	return New(logger,
		&CheapPass{Fitness: fitness, Criteria: PromotionCriteria{MinStabilityScore: 0.0, MaxIQR: math.Inf(1), MinTrades: &minTrades}},
		&WalkForward{Fitness: fitness, Splits: 4, TrainFraction: 0.7, Criteria: PromotionCriteria{MinStabilityScore: 0.3, MaxIQR: 2.0}},
		&ExecutionMC{Fitness: fitness, Trials: 50, Criteria: PromotionCriteria{MinStabilityScore: 0.5, MaxIQR: 1.5}},
		&PathMC{Fitness: fitness, Trials: 50, Criteria: PromotionCriteria{MinStabilityScore: 0.5, MaxIQR: 1.0}},
		&Bootstrap{Fitness: fitness, Trials: 200, BlockSize: 20, Criteria: PromotionCriteria{MinStabilityScore: 0.75, MaxIQR: 1.0}},
	)
}

// Evaluate runs the candidate up the ladder, stopping at the first
// level that refuses promotion. The returned slice holds one
// LevelResult per level reached.
func (l *Ladder) Evaluate(c *Candidate) ([]LevelResult, error) {
	var results []LevelResult
	for _, level := range l.levels {
		res, err := level.Run(c)
		if err != nil {
			return results, fmt.Errorf("ladder: level %s: %w", level.Name(), err)
		}
		res.Promoted, res.Reason = evaluateCriteria(level.PromotionCriteria(), res)
		results = append(results, *res)
		l.logger.Info("ladder level complete",
			zap.String("level", res.Level),
			zap.Int("trials", res.Trials),
			zap.Float64("stability_score", res.StabilityScore),
			zap.Bool("promoted", res.Promoted),
			zap.String("reason", res.Reason),
		)
		if !res.Promoted {
			break
		}
	}
	return results, nil
}

// evaluateCriteria checks every present criterion and, on rejection,
// produces a human-readable reason.
func evaluateCriteria(pc PromotionCriteria, res *LevelResult) (bool, string) {
	if math.IsNaN(res.StabilityScore) {
		return false, "stability score undefined (no trials)"
	}
	if res.StabilityScore < pc.MinStabilityScore {
		return false, fmt.Sprintf("stability score %.4f below minimum %.4f", res.StabilityScore, pc.MinStabilityScore)
	}
	if res.Distribution.IQR > pc.MaxIQR {
		return false, fmt.Sprintf("IQR %.4f above maximum %.4f", res.Distribution.IQR, pc.MaxIQR)
	}
	if pc.MinTrades != nil && res.MedianTrades < float64(*pc.MinTrades) {
		return false, fmt.Sprintf("median trade count %.0f below minimum %d", res.MedianTrades, *pc.MinTrades)
	}
	if pc.MinRawMetric != nil && res.Distribution.Median < *pc.MinRawMetric {
		return false, fmt.Sprintf("median metric %.4f below minimum %.4f", res.Distribution.Median, *pc.MinRawMetric)
	}
	return true, "promoted"
}
