package ladder

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/rngseed"
)

// stubCandidate returns a candidate whose every trial produces a
// steady upward equity curve with the given per-bar return.
func stubCandidate(perBarReturn float64, trades int) *Candidate {
	return &Candidate{
		RunID:          domain.RunID("test-run"),
		Symbol:         "TEST",
		BarCount:       400,
		InitialCapital: 10_000,
		Seeds:          rngseed.New(42),
		Run: func(opts TrialOptions) (*domain.RunResult, error) {
			bars := 400
			if opts.BarEnd > 0 {
				bars = opts.BarEnd - opts.BarStart
			}
			curve := make([]domain.EquityPoint, bars)
			equity := 10_000.0
			base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
			for i := range curve {
				equity *= 1 + perBarReturn
				curve[i] = domain.EquityPoint{Date: base.AddDate(0, 0, i), Equity: equity}
			}
			tr := make([]domain.TradeRecord, trades)
			return &domain.RunResult{
				EquityCurve: curve,
				FinalEquity: equity,
				Trades:      tr,
			}, nil
		},
	}
}

func TestCheapPassRunsOneTrial(t *testing.T) {
	level := &CheapPass{Fitness: FitnessSharpe}
	res, err := level.Run(stubCandidate(0.001, 12))
	require.NoError(t, err)
	require.Equal(t, 1, res.Trials)
	require.Equal(t, 12.0, res.MedianTrades)
}

func TestWalkForwardSplitsBarRange(t *testing.T) {
	seenRanges := map[[2]int]bool{}
	c := stubCandidate(0.001, 8)
	inner := c.Run
	c.Run = func(opts TrialOptions) (*domain.RunResult, error) {
		seenRanges[[2]int{opts.BarStart, opts.BarEnd}] = true
		return inner(opts)
	}

	level := &WalkForward{Fitness: FitnessSharpe, Splits: 4, TrainFraction: 0.7}
	res, err := level.Run(c)
	require.NoError(t, err)
	require.Equal(t, 4, res.Trials)
	require.Len(t, seenRanges, 4)
	for r := range seenRanges {
		require.Greater(t, r[1], r[0])
		require.LessOrEqual(t, r[1], 400)
	}
}

// A deterministic stub means zero dispersion, so MC trials agree and
// the stability score equals the median.
func TestExecutionMCZeroDispersionOnStubbedRuns(t *testing.T) {
	level := &ExecutionMC{Fitness: FitnessSharpe, Trials: 10}
	res, err := level.Run(stubCandidate(0.001, 8))
	require.NoError(t, err)
	require.Equal(t, 10, res.Trials)
	require.InDelta(t, 0, res.Distribution.IQR, 1e-12)
	require.InDelta(t, res.Distribution.Median, res.StabilityScore, 1e-12)
}

func TestLadderStopsAtFirstRejection(t *testing.T) {
	minTrades := 5
	reject := PromotionCriteria{MinStabilityScore: math.Inf(1)} // unreachable
	accept := PromotionCriteria{MinStabilityScore: -1e9, MaxIQR: 1e9, MinTrades: &minTrades}

	l := New(nil,
		&CheapPass{Fitness: FitnessSharpe, Criteria: accept},
		&ExecutionMC{Fitness: FitnessSharpe, Trials: 4, Criteria: reject},
		&PathMC{Fitness: FitnessSharpe, Trials: 4, Criteria: accept},
	)
	results, err := l.Evaluate(stubCandidate(0.001, 10))
	require.NoError(t, err)
	require.Len(t, results, 2) // PathMC never runs
	require.True(t, results[0].Promoted)
	require.False(t, results[1].Promoted)
	require.Contains(t, results[1].Reason, "stability score")
}

func TestBootstrapResamplesBaseReturns(t *testing.T) {
	level := &Bootstrap{Fitness: FitnessCAGR, Trials: 25, BlockSize: 20}
	res, err := level.Run(stubCandidate(0.0005, 6))
	require.NoError(t, err)
	require.Equal(t, 25, res.Trials)
	// Constant per-bar returns resample to the same stream, so every
	// trial agrees.
	require.InDelta(t, 0, res.Distribution.IQR, 1e-12)
	require.Greater(t, res.Distribution.Median, 0.0)
}
