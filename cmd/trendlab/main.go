// Command trendlab is the backtesting engine's CLI: download seeds
// the Parquet bar store, backtest runs one strategy, yolo sweeps the
// parameter grid through the robustness ladder, and tui does the same
// with a live terminal view.
//
// Exit codes: 0 success, 1 configuration error, 2 data error, 3
// runtime error.
package main

import (
	"fmt"
	"os"

	"github.com/trendlab-go/trendlab/internal/trendlaberr"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(trendlaberr.ExitCode(err))
	}
}
