package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/trendlab-go/trendlab/internal/backtest"
	"github.com/trendlab-go/trendlab/internal/barstore"
	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/fingerprint"
	"github.com/trendlab-go/trendlab/internal/history"
	"github.com/trendlab-go/trendlab/internal/ladder"
	"github.com/trendlab-go/trendlab/internal/metrics"
	"github.com/trendlab-go/trendlab/internal/report"
	"github.com/trendlab-go/trendlab/internal/resultcache"
	"github.com/trendlab-go/trendlab/internal/trendlaberr"
	"go.uber.org/zap"
)

func newBacktestCmd(state *rootState) *cobra.Command {
	var (
		symbol       string
		strategyFile string
		start        string
		end          string
		outFile      string
		ghost        bool
		grade        bool
	)

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Run one strategy against one symbol's bar series",
		RunE: func(cmd *cobra.Command, args []string) error {
			if symbol == "" {
				return trendlaberr.Configurationf("backtest: --symbol is required")
			}
			cfg, err := loadStrategyConfig(strategyFile)
			if err != nil {
				return err
			}
			startDate, endDate, err := parseDateRange(start, end)
			if err != nil {
				return err
			}

			store := barstore.New(state.v.GetString("data-dir"))
			bars, err := store.ReadRange(symbol, startDate, endDate)
			if err != nil {
				return err
			}

			opts := backtest.Options{
				InitialCapital: state.v.GetFloat64("initial_capital"),
				TickSize:       state.v.GetFloat64("tick_size"),
				Seed:           state.v.GetUint64("seed"),
				GhostCurve:     ghost,
			}
			started := time.Now()
			result, err := backtest.Execute(cfg, bars, opts, ladder.TrialOptions{}, nil)
			if err != nil {
				return err
			}

			perf := metrics.Compute(result, opts.InitialCapital)
			cmd.Print(report.Summary(result, perf, opts.InitialCapital))
			if grade {
				v := report.Assess(perf, report.DefaultThresholds())
				cmd.Printf("  viability:       grade %s (viable=%t)\n", v.Grade, v.Viable)
				for _, issue := range v.Issues {
					cmd.Printf("    below floor:   %s\n", issue)
				}
			}

			configHash := fingerprint.ConfigHash(cfg)
			datasetHash := barstore.DatasetHash(map[string][]domain.Bar{symbol: bars})
			runID := fingerprint.ComputeRunID(configHash, datasetHash, opts.Seed)

			if cacheDir := state.v.GetString("cache-dir"); cacheDir != "" {
				cache, err := resultcache.New(cacheDir)
				if err != nil {
					return trendlaberr.Data("", err)
				}
				if err := cache.Put(runID, result); err != nil {
					state.logger.Warn("result cache write failed", zap.Error(err))
				}
			}
			if histPath := state.v.GetString("history-file"); histPath != "" {
				if err := appendHistory(histPath, runID, cfg, configHash, datasetHash, opts, symbol, bars); err != nil {
					state.logger.Warn("history append failed", zap.Error(err))
				}
			}
			if outFile != "" {
				if err := writeResultJSON(outFile, result, cfg, started); err != nil {
					return err
				}
			}

			state.logger.Info("backtest complete",
				zap.String("symbol", symbol),
				zap.String("run_id", string(runID)),
				zap.Int("trades", len(result.Trades)),
				zap.Duration("elapsed", time.Since(started)),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "symbol to test")
	cmd.Flags().StringVar(&strategyFile, "strategy", "", "strategy config JSON file")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&outFile, "out", "", "write the RunResult JSON here")
	cmd.Flags().BoolVar(&ghost, "ghost", false, "also compute the frictionless ghost curve")
	cmd.Flags().BoolVar(&grade, "grade", false, "print a viability grade")
	return cmd
}

// loadStrategyConfig reads a StrategyConfig JSON file, or returns the
// stock Donchian strategy when no file is given.
func loadStrategyConfig(path string) (domain.StrategyConfig, error) {
	if path == "" {
		return defaultStrategy(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.StrategyConfig{}, trendlaberr.Configurationf("reading strategy %s: %v", path, err)
	}
	var cfg domain.StrategyConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return domain.StrategyConfig{}, trendlaberr.Configurationf("parsing strategy %s: %v", path, err)
	}
	return cfg, nil
}

func defaultStrategy() domain.StrategyConfig {
	return domain.StrategyConfig{
		Signal:          domain.ComponentConfig{ComponentType: "donchian_breakout", Params: map[string]float64{"entry_lookback": 20, "exit_lookback": 10}},
		Filter:          domain.ComponentConfig{ComponentType: "passthrough"},
		PositionManager: domain.ComponentConfig{ComponentType: "atr_trailing", Params: map[string]float64{"atr_period": 14, "multiplier": 3}},
		ExecutionModel:  domain.ComponentConfig{ComponentType: "next_bar_open", Params: map[string]float64{"preset": 1}},
		Sizer:           domain.ComponentConfig{ComponentType: "fixed_notional", Params: map[string]float64{"amount": 10_000}},
	}
}

func appendHistory(path string, runID domain.RunID, cfg domain.StrategyConfig, configHash domain.ConfigHash, datasetHash domain.DatasetHash, opts backtest.Options, symbol string, bars []domain.Bar) error {
	w, err := history.Open(path)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Append(fingerprint.RunFingerprint{
		RunID:          runID,
		Timestamp:      time.Now().UTC(),
		Seed:           opts.Seed,
		Symbol:         symbol,
		StartDate:      bars[0].Date,
		EndDate:        bars[len(bars)-1].Date,
		TradingMode:    opts.TradingMode,
		InitialCapital: opts.InitialCapital,
		StrategyConfig: cfg,
		ConfigHash:     configHash,
		FullHash:       fingerprint.FullHash(cfg),
		DatasetHash:    datasetHash,
	})
}

// resultDocument is the on-disk RunResult envelope: curves, trades,
// stats, and run metadata.
type resultDocument struct {
	EquityCurve []domain.EquityPoint  `json:"equity_curve"`
	Trades      []domain.TradeRecord  `json:"trades"`
	Stats       metrics.Performance   `json:"stats"`
	Metadata    resultMetadata        `json:"metadata"`
}

type resultMetadata struct {
	Timestamp    time.Time             `json:"timestamp"`
	DurationSecs float64               `json:"duration_secs"`
	Config       domain.StrategyConfig `json:"config"`
	Custom       resultCustom          `json:"custom"`
}

type resultCustom struct {
	RejectedIntents  []domain.RejectedIntent `json:"rejected_intents,omitempty"`
	IdealEquityCurve []domain.EquityPoint    `json:"ideal_equity_curve,omitempty"`
	ExecutionDrag    float64                 `json:"execution_drag,omitempty"`
}

func writeResultJSON(path string, result *domain.RunResult, cfg domain.StrategyConfig, started time.Time) error {
	doc := resultDocument{
		EquityCurve: result.EquityCurve,
		Trades:      result.Trades,
		Stats:       metrics.Compute(result, result.EquityCurve[0].Equity),
		Metadata: resultMetadata{
			Timestamp:    time.Now().UTC(),
			DurationSecs: time.Since(started).Seconds(),
			Config:       cfg,
			Custom: resultCustom{
				RejectedIntents:  result.RejectedIntents,
				IdealEquityCurve: result.IdealEquityCurve,
				ExecutionDrag:    result.ExecutionDrag,
			},
		},
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return trendlaberr.Runtime(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return trendlaberr.Data("", err)
	}
	return nil
}
