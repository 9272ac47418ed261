// Package backtest wires one StrategyConfig, one bar series, and one
// option set into a deterministic engine run. It is the seam the CLI,
// the sweep orchestrator, and the robustness ladder all call through.
package backtest

import (
	"errors"
	"sync/atomic"

	"github.com/trendlab-go/trendlab/internal/barstore"
	"github.com/trendlab-go/trendlab/internal/composer"
	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/engine"
	"github.com/trendlab-go/trendlab/internal/fingerprint"
	"github.com/trendlab-go/trendlab/internal/indicators"
	"github.com/trendlab-go/trendlab/internal/ladder"
	"github.com/trendlab-go/trendlab/internal/orderbook"
	"github.com/trendlab-go/trendlab/internal/rngseed"
	"github.com/trendlab-go/trendlab/internal/trendlaberr"
)

// Options are the per-run parameters outside the hashed
// StrategyConfig.
type Options struct {
	InitialCapital float64
	TradingMode    domain.TradingMode
	TickSize       float64
	Liquidity      *orderbook.LiquidityPolicy
	GhostCurve     bool
	Seed           uint64
}

// Execute composes cfg, precomputes indicators over the (optionally
// trial-sliced) bar range, and runs the engine once. cancel may be
// nil.
func Execute(cfg domain.StrategyConfig, bars []domain.Bar, opts Options, trial ladder.TrialOptions, cancel *atomic.Bool) (*domain.RunResult, error) {
	if len(bars) == 0 {
		return nil, trendlaberr.Data("", errors.New("backtest: empty bar series"))
	}
	composed, err := composer.Compose(cfg, opts.TickSize)
	if err != nil {
		return nil, trendlaberr.Configuration(err)
	}

	strategy := composed.Strategy
	strategy.ExecutionModel = applyTrialOverrides(strategy.ExecutionModel, trial)

	slice := bars
	if trial.BarEnd > 0 {
		start, end := trial.BarStart, trial.BarEnd
		if start < 0 {
			start = 0
		}
		if end > len(bars) {
			end = len(bars)
		}
		if start >= end {
			return nil, trendlaberr.Configuration(errors.New("backtest: empty trial bar range"))
		}
		slice = bars[start:end]
	}

	values := indicators.Precompute(slice, composed.Indicators)
	warmup := indicators.RunWarmup(composed.Indicators)
	if w := strategy.Signal.WarmupBars(); w > warmup {
		warmup = w
	}

	eng := engine.New(strategy, engine.Config{
		InitialCapital:   opts.InitialCapital,
		TradingMode:      opts.TradingMode,
		TickSize:         opts.TickSize,
		Liquidity:        opts.Liquidity,
		EnableGhostCurve: opts.GhostCurve,
	}, warmup)

	result, err := eng.Run(slice, values, cancel)
	if err != nil {
		if errors.Is(err, engine.ErrCancelled) {
			return nil, err
		}
		return nil, trendlaberr.Runtime(err)
	}
	return result, nil
}

// NewCandidate packages cfg for the robustness ladder: the Runner
// closure re-executes the backtest under each trial's overrides with
// seeds drawn from the deterministic hierarchy.
func NewCandidate(cfg domain.StrategyConfig, bars []domain.Bar, opts Options, cancel *atomic.Bool) *ladder.Candidate {
	configHash := fingerprint.ConfigHash(cfg)
	datasetHash := barstore.DatasetHash(map[string][]domain.Bar{bars[0].Symbol: bars})
	runID := fingerprint.ComputeRunID(configHash, datasetHash, opts.Seed)

	return &ladder.Candidate{
		Config:         cfg,
		RunID:          runID,
		Symbol:         bars[0].Symbol,
		BarCount:       len(bars),
		InitialCapital: opts.InitialCapital,
		Seeds:          rngseed.New(opts.Seed),
		Run: func(trial ladder.TrialOptions) (*domain.RunResult, error) {
			return Execute(cfg, bars, opts, trial, cancel)
		},
	}
}
