package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/trendlab-go/trendlab/internal/backtest"
	"github.com/trendlab-go/trendlab/internal/barstore"
	"github.com/trendlab-go/trendlab/internal/domain"
	"github.com/trendlab-go/trendlab/internal/history"
	"github.com/trendlab-go/trendlab/internal/ladder"
	"github.com/trendlab-go/trendlab/internal/resultcache"
	"github.com/trendlab-go/trendlab/internal/sweep"
	"github.com/trendlab-go/trendlab/internal/sweepmetrics"
	"github.com/trendlab-go/trendlab/internal/sweepserver"
	"github.com/trendlab-go/trendlab/internal/trendlaberr"
	"go.uber.org/zap"
)

func newYoloCmd(state *rootState) *cobra.Command {
	var (
		symbol    string
		gridFile  string
		serveAddr string
		topN      int
	)

	cmd := &cobra.Command{
		Use:   "yolo",
		Short: "Sweep the strategy grid through the robustness ladder",
		RunE: func(cmd *cobra.Command, args []string) error {
			built, err := buildSweep(state, symbol, gridFile)
			if err != nil {
				return err
			}
			defer built.close()

			var server *sweepserver.Server
			if serveAddr != "" {
				server = sweepserver.New(state.logger, serveAddr, built.orch.Leaderboard(), built.registry)
				built.orch.Progress = server.PublishProgress
				server.Start()
				defer func() {
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = server.Shutdown(ctx)
				}()
			}

			state.logger.Info("sweep starting",
				zap.Int("candidates", len(built.configs)),
				zap.Int("workers", state.v.GetInt("workers")),
			)
			board := built.orch.Run(built.configs, built.bars)

			for i, e := range board.Top(topN) {
				status := "reject"
				if e.Promoted {
					status = "pass"
				}
				cmd.Printf("%3d. %-8s score=%8.3f level=%-13s %s/%s/%s\n",
					i+1, status, e.Score, e.LevelReached,
					e.Config.Signal.ComponentType,
					e.Config.PositionManager.ComponentType,
					e.Config.ExecutionModel.ComponentType,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "symbol to sweep against")
	cmd.Flags().StringVar(&gridFile, "grid", "", "grid JSON file (defaults to the stock grid)")
	cmd.Flags().StringVar(&serveAddr, "serve", "", "expose leaderboard/metrics on this address (e.g. :8090)")
	cmd.Flags().IntVar(&topN, "top", 20, "leaderboard entries to print")
	return cmd
}

// builtSweep bundles everything a sweep run needs plus the handles to
// release afterwards.
type builtSweep struct {
	orch     *sweep.Orchestrator
	configs  []domain.StrategyConfig
	bars     []domain.Bar
	registry *prometheus.Registry
	history  *history.Writer
}

func (b *builtSweep) close() {
	if b.history != nil {
		_ = b.history.Close()
	}
}

func buildSweep(state *rootState, symbol, gridFile string) (*builtSweep, error) {
	if symbol == "" {
		return nil, trendlaberr.Configurationf("a sweep requires --symbol")
	}
	store := barstore.New(state.v.GetString("data-dir"))
	bars, err := store.Read(symbol)
	if err != nil {
		return nil, err
	}

	grid := sweep.DefaultGrid()
	if gridFile != "" {
		data, err := os.ReadFile(gridFile)
		if err != nil {
			return nil, trendlaberr.Configurationf("reading grid %s: %v", gridFile, err)
		}
		if err := json.Unmarshal(data, &grid); err != nil {
			return nil, trendlaberr.Configurationf("parsing grid %s: %v", gridFile, err)
		}
	}
	configs := grid.Expand()
	if len(configs) == 0 {
		return nil, trendlaberr.Configurationf("grid expands to zero candidates")
	}

	fitness, err := ladder.ParseFitnessMetric(state.v.GetString("fitness"))
	if err != nil {
		return nil, trendlaberr.Configuration(err)
	}

	registry := prometheus.NewRegistry()
	sweepM := sweepmetrics.New(registry)

	cache, err := resultcache.New(state.v.GetString("cache-dir"))
	if err != nil {
		return nil, trendlaberr.Data("", err)
	}
	hist, err := history.Open(state.v.GetString("history-file"))
	if err != nil {
		return nil, trendlaberr.Data("", err)
	}

	orch := sweep.New(sweep.Config{
		Workers:    state.v.GetInt("workers"),
		MasterSeed: state.v.GetUint64("seed"),
		Fitness:    fitness,
		Backtest: backtest.Options{
			InitialCapital: state.v.GetFloat64("initial_capital"),
			TickSize:       state.v.GetFloat64("tick_size"),
		},
	}, state.logger, sweepM, cache, hist)

	return &builtSweep{
		orch:     orch,
		configs:  configs,
		bars:     bars,
		registry: registry,
		history:  hist,
	}, nil
}
