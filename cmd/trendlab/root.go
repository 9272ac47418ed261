package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/trendlab-go/trendlab/internal/trendlaberr"
	"go.uber.org/zap"
)

// rootState carries the configuration every subcommand shares.
type rootState struct {
	v      *viper.Viper
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	state := &rootState{v: viper.New()}

	cmd := &cobra.Command{
		Use:           "trendlab",
		Short:         "Event-driven backtesting engine for trend-following strategies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return state.initialize(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if state.logger != nil {
				_ = state.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("config", "", "config file (YAML)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("data-dir", "data/bars", "root of the Parquet bar store")
	flags.String("cache-dir", "data/results", "result cache directory")
	flags.String("history-file", "data/runs.jsonl", "JSONL run history file")

	cmd.AddCommand(
		newDownloadCmd(state),
		newBacktestCmd(state),
		newYoloCmd(state),
		newTuiCmd(state),
	)
	return cmd
}

// initialize layers configuration (defaults, file, environment,
// flags) and builds the logger.
func (s *rootState) initialize(cmd *cobra.Command) error {
	s.v.SetDefault("initial_capital", 10_000.0)
	s.v.SetDefault("tick_size", 0.01)
	s.v.SetDefault("seed", uint64(42))
	s.v.SetDefault("workers", 4)
	s.v.SetDefault("fitness", "sharpe")

	if err := s.v.BindPFlags(cmd.Flags()); err != nil {
		return trendlaberr.Configuration(err)
	}
	if err := s.v.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return trendlaberr.Configuration(err)
	}
	s.v.SetEnvPrefix("TRENDLAB")
	s.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	s.v.AutomaticEnv()

	if cfgFile := s.v.GetString("config"); cfgFile != "" {
		s.v.SetConfigFile(cfgFile)
		if err := s.v.ReadInConfig(); err != nil {
			return trendlaberr.Configuration(fmt.Errorf("reading config %s: %w", cfgFile, err))
		}
	}

	logger, err := buildLogger(s.v.GetString("log-level"))
	if err != nil {
		return trendlaberr.Configuration(err)
	}
	s.logger = logger
	return nil
}

func buildLogger(level string) (*zap.Logger, error) {
	var cfg zap.Config
	switch level {
	case "debug":
		cfg = zap.NewDevelopmentConfig()
	case "info", "warn", "error":
		cfg = zap.NewProductionConfig()
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = lvl
	default:
		return nil, fmt.Errorf("unknown log level %q", level)
	}
	return cfg.Build()
}
