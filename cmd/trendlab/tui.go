package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/trendlab-go/trendlab/internal/sweep"
	"github.com/trendlab-go/trendlab/internal/trendlaberr"
	"github.com/trendlab-go/trendlab/internal/tui"
)

func newTuiCmd(state *rootState) *cobra.Command {
	var (
		symbol   string
		gridFile string
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run a sweep with a live terminal leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			built, err := buildSweep(state, symbol, gridFile)
			if err != nil {
				return err
			}
			defer built.close()

			program := tea.NewProgram(
				tui.New(built.orch.Leaderboard(), len(built.configs)),
				tea.WithAltScreen(),
			)
			built.orch.Progress = func(done, total int, e sweep.Entry) {
				program.Send(tui.ProgressMsg{Done: done, Total: total, Entry: e})
			}

			go func() {
				built.orch.Run(built.configs, built.bars)
				program.Send(tui.DoneMsg{})
			}()

			if _, err := program.Run(); err != nil {
				built.orch.Cancel()
				return trendlaberr.Runtime(err)
			}
			built.orch.Cancel()
			return nil
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "", "symbol to sweep against")
	cmd.Flags().StringVar(&gridFile, "grid", "", "grid JSON file (defaults to the stock grid)")
	return cmd
}
