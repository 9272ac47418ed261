// Package engine implements C8: the four-phase per-bar event loop
// that orchestrates indicator precompute, signal generation, filtering,
// sizing, order-book fill resolution, and position management under
// the look-ahead, warmup, ratchet, and equity-identity invariants.
// The loop is single-threaded and purely sequential: one Book and one
// Portfolio per run, both owned exclusively for the run's duration.
package engine

import (
	"math"
	"time"

	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/execmodel"
	"github.com/trendlab-go/trendlab/internal/orderbook"
	"github.com/trendlab-go/trendlab/internal/posmanager"
	"github.com/trendlab-go/trendlab/internal/signalfilter"
	"github.com/trendlab-go/trendlab/internal/signalgen"
	"github.com/trendlab-go/trendlab/internal/sizer"
)

// Strategy binds the five composable roles (C2-C6) a run executes.
// Composition and hashing of the StrategyConfig this was built from is
// internal/composer's concern; the engine only needs the live
// components.
type Strategy struct {
	Signal          signalgen.Generator
	Filter          signalfilter.Filter
	PositionManager posmanager.Manager
	ExecutionModel  execmodel.Model
	Sizer           sizer.Sizer
}

// Config holds the per-run parameters that are not part of the hashed
// StrategyConfig: capital, trading-mode restriction, tick size, and
// optional liquidity cap.
type Config struct {
	InitialCapital float64
	TradingMode    domain.TradingMode
	TickSize       float64
	Liquidity      *orderbook.LiquidityPolicy
	// EnableGhostCurve additionally computes a frictionless execution
	// curve alongside the real one for drag diagnostics.
	EnableGhostCurve bool
}

// Engine runs one deterministic backtest for a single symbol's bar
// series; cross-instrument portfolio aggregation within one run is
// deliberately out of scope.
type Engine struct {
	cfg      Config
	strategy Strategy
	book     *orderbook.Book
	ratchet  *Ratchet

	portfolio *domain.Portfolio
	position  domain.Position
	symbol    string

	warmupBars int

	trades            []domain.TradeRecord
	equityCurve       []domain.EquityPoint
	signalEvaluations []domain.SignalEvaluation
	signalCount       int
	rejectedIntents   []domain.RejectedIntent

	voidBars  int
	totalBars int

	pmCallsTotal  int
	pmCallsActive int

	pendingEntryParent string // order id of the most recent unfilled entry, for bracket children
	exitOrderID        string // outstanding ForceExit/opposite-signal market order
	targetOrderID      string // outstanding take-profit limit, OCO-linked to the stop

	lastClose float64   // most recent real close, carried across void bars
	curDate   time.Time // date of the bar currently being processed

	fills      []domain.Order
	openTrade  *openTrade
	idealCurve []domain.EquityPoint

	ghost *ghostTracker
}

// New constructs an Engine ready to run bars against values.
func New(strategy Strategy, cfg Config, warmupBars int) *Engine {
	e := &Engine{
		cfg:        cfg,
		strategy:   strategy,
		book:       orderbook.New(cfg.Liquidity),
		portfolio:  domain.NewPortfolio(cfg.InitialCapital),
		warmupBars: warmupBars,
		lastClose:  math.NaN(),
	}
	if cfg.EnableGhostCurve {
		e.ghost = newGhostTracker(cfg.InitialCapital)
	}
	return e
}

func isNaN(f float64) bool { return math.IsNaN(f) }
