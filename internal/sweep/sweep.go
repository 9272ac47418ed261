package sweep

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/trendlab-go/trendlab/internal/backtest"
	"github.com/trendlab-go/trendlab/internal/barstore"
	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/fingerprint"
	"github.com/trendlab-go/trendlab/internal/history"
	"github.com/trendlab-go/trendlab/internal/ladder"
	"github.com/trendlab-go/trendlab/internal/resultcache"
	"github.com/trendlab-go/trendlab/internal/rngseed"
	"github.com/trendlab-go/trendlab/internal/sweepmetrics"
	"go.uber.org/zap"
)

// workItem is one (config, sub-seed) tuple pulled from the bounded
// queue by a worker.
type workItem struct {
	index  int
	config domain.StrategyConfig
	seed   uint64
}

// Config parameterizes a sweep.
type Config struct {
	Workers    int
	QueueSize  int
	MasterSeed uint64
	Fitness    ladder.FitnessMetric
	Backtest   backtest.Options
}

// Orchestrator dispatches every grid candidate through the robustness
// ladder on a fixed-size worker pool. Workers share nothing mutable
// except the leaderboard, cache, and history writer, each of which
// locks internally.
type Orchestrator struct {
	cfg         Config
	logger      *zap.Logger
	leaderboard *Leaderboard
	metrics     *sweepmetrics.Metrics
	cache       *resultcache.Cache
	history     *history.Writer
	cancel      atomic.Bool

	// Progress is invoked after every finished candidate when set
	// (consumed by the TUI and the sweep server).
	Progress func(done, total int, e Entry)
}

// New builds an orchestrator. cache, historyWriter, and metrics may
// be nil; logger may be nil.
func New(cfg Config, logger *zap.Logger, metrics *sweepmetrics.Metrics, cache *resultcache.Cache, historyWriter *history.Writer) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.QueueSize < 1 {
		cfg.QueueSize = cfg.Workers * 4
	}
	return &Orchestrator{
		cfg:         cfg,
		logger:      logger,
		leaderboard: NewLeaderboard(),
		metrics:     metrics,
		cache:       cache,
		history:     historyWriter,
	}
}

// Leaderboard exposes the shared ranking.
func (o *Orchestrator) Leaderboard() *Leaderboard { return o.leaderboard }

// Cancel requests a cooperative stop: queued work is drained without
// evaluation and in-flight runs stop at their next bar boundary.
func (o *Orchestrator) Cancel() { o.cancel.Store(true) }

// Run evaluates every config against bars and blocks until the pool
// drains. The candidate sequence, seeds, and results are fully
// deterministic in (grid order, master seed) regardless of worker
// count.
func (o *Orchestrator) Run(configs []domain.StrategyConfig, bars []domain.Bar) *Leaderboard {
	seeds := rngseed.New(o.cfg.MasterSeed)
	total := len(configs)

	queue := make(chan workItem, o.cfg.QueueSize)
	var done int64
	var wg sync.WaitGroup

	for w := 0; w < o.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range queue {
				if o.metrics != nil {
					o.metrics.QueueDepth.Set(float64(len(queue)))
					o.metrics.WorkersBusy.Inc()
				}
				entry := o.evaluate(item, bars)
				if o.metrics != nil {
					o.metrics.WorkersBusy.Dec()
				}
				o.leaderboard.Record(entry)
				n := int(atomic.AddInt64(&done, 1))
				if o.Progress != nil {
					o.Progress(n, total, entry)
				}
			}
		}()
	}

	for i, cfg := range configs {
		// Sub-seed from the hierarchy by candidate index: hash-based,
		// so identical regardless of which worker picks the item up.
		seed := seeds.SubSeed(domain.RunID("sweep"), "grid", uint64(i))
		queue <- workItem{index: i, config: cfg, seed: seed}
	}
	close(queue)
	wg.Wait()
	return o.leaderboard
}

// evaluate runs one candidate up the ladder and folds the outcome
// into an Entry.
func (o *Orchestrator) evaluate(item workItem, bars []domain.Bar) Entry {
	start := time.Now()
	if o.metrics != nil {
		o.metrics.CandidatesTotal.Inc()
	}

	opts := o.cfg.Backtest
	opts.Seed = item.seed

	entry := Entry{
		FullHash:   fingerprint.FullHash(item.config),
		ConfigHash: fingerprint.ConfigHash(item.config),
		Config:     item.config,
	}

	if o.cancel.Load() {
		entry.Reason = "cancelled"
		return entry
	}

	candidate := backtest.NewCandidate(item.config, bars, opts, &o.cancel)
	results, err := ladder.Default(o.logger, o.cfg.Fitness).Evaluate(candidate)
	if err != nil {
		if o.metrics != nil {
			o.metrics.CandidatesFailed.Inc()
		}
		o.logger.Warn("candidate failed",
			zap.String("full_hash", string(entry.FullHash)),
			zap.Error(err),
		)
		entry.Reason = err.Error()
		return entry
	}

	entry.Levels = results
	if n := len(results); n > 0 {
		last := results[n-1]
		entry.Score = last.StabilityScore
		entry.LevelReached = last.Level
		entry.Promoted = last.Promoted
		entry.Reason = last.Reason
	}
	if entry.Promoted {
		if o.metrics != nil {
			o.metrics.CandidatesPassed.Inc()
		}
		o.recordSurvivor(item, candidate, bars)
	}
	if o.metrics != nil {
		o.metrics.EvaluationSeconds.Observe(time.Since(start).Seconds())
	}
	return entry
}

// recordSurvivor caches the survivor's base run and appends its
// fingerprint to the JSONL history.
func (o *Orchestrator) recordSurvivor(item workItem, candidate *ladder.Candidate, bars []domain.Bar) {
	result, err := candidate.Run(ladder.TrialOptions{})
	if err != nil {
		return
	}
	if o.cache != nil {
		if err := o.cache.Put(candidate.RunID, result); err != nil {
			o.logger.Warn("result cache write failed", zap.Error(err))
		}
	}
	if o.history != nil {
		rec := fingerprint.RunFingerprint{
			RunID:          candidate.RunID,
			Timestamp:      time.Now().UTC(),
			Seed:           item.seed,
			Symbol:         candidate.Symbol,
			StartDate:      bars[0].Date,
			EndDate:        bars[len(bars)-1].Date,
			TradingMode:    o.cfg.Backtest.TradingMode,
			InitialCapital: o.cfg.Backtest.InitialCapital,
			StrategyConfig: item.config,
			ConfigHash:     fingerprint.ConfigHash(item.config),
			FullHash:       fingerprint.FullHash(item.config),
			DatasetHash:    barstore.DatasetHash(map[string][]domain.Bar{candidate.Symbol: bars}),
		}
		if err := o.history.Append(rec); err != nil {
			o.logger.Warn("history append failed", zap.Error(err))
		}
	}
}
