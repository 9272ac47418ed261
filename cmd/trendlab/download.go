package main

import (
	"errors"
	"time"

	"github.com/spf13/cobra"
	"github.com/trendlab-go/trendlab/internal/barstore"
	"github.com/trendlab-go/trendlab/internal/dataprovider"
	"github.com/trendlab-go/trendlab/internal/trendlaberr"
	"go.uber.org/zap"
)

func newDownloadCmd(state *rootState) *cobra.Command {
	var (
		csvDir  string
		symbols []string
		start   string
		end     string
	)

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Ingest CSV exports into the canonical Parquet bar store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(symbols) == 0 {
				return trendlaberr.Configurationf("download: at least one --symbol is required")
			}
			startDate, endDate, err := parseDateRange(start, end)
			if err != nil {
				return err
			}

			provider := dataprovider.NewBreaker(dataprovider.NewCSVDir(csvDir), state.logger)
			store := barstore.New(state.v.GetString("data-dir"))

			for _, symbol := range symbols {
				result, err := provider.Fetch(cmd.Context(), symbol, startDate, endDate)
				if err != nil {
					if errors.Is(err, dataprovider.ErrAuthenticationRequired) {
						provider.Trip()
					}
					return trendlaberr.Data(symbol, err)
				}
				if err := store.Write(symbol, result.Bars); err != nil {
					return err
				}
				state.logger.Info("symbol ingested",
					zap.String("symbol", symbol),
					zap.Int("bars", len(result.Bars)),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&csvDir, "csv-dir", "data/csv", "directory of <SYMBOL>.csv exports")
	cmd.Flags().StringSliceVar(&symbols, "symbol", nil, "symbol to ingest (repeatable)")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	return cmd
}

func parseDateRange(start, end string) (time.Time, time.Time, error) {
	var startDate, endDate time.Time
	var err error
	if start != "" {
		startDate, err = time.Parse("2006-01-02", start)
		if err != nil {
			return time.Time{}, time.Time{}, trendlaberr.Configurationf("bad --start %q: %v", start, err)
		}
	}
	if end != "" {
		endDate, err = time.Parse("2006-01-02", end)
		if err != nil {
			return time.Time{}, time.Time{}, trendlaberr.Configurationf("bad --end %q: %v", end, err)
		}
	}
	if !startDate.IsZero() && !endDate.IsZero() && endDate.Before(startDate) {
		return time.Time{}, time.Time{}, trendlaberr.Configurationf("--end %s precedes --start %s", end, start)
	}
	return startDate, endDate, nil
}
