package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ganttkit/ganttkit/internal/state"
	"github.com/ganttkit/ganttkit/internal/tui"
)

// newBoardCmd creates the board command.
func newBoardCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "board [chart-id]",
		Short: "Open a chart in the terminal board",
		Long: `Open an interactive terminal board for a chart: task tree on the
left, date bars on the right, with collapse, undo/redo, and auto-schedule
keys.

Reads a chart file with -f, or a stored chart by ID.

Examples:
  ganttkit board -f chart.json
  ganttkit board 2f1c...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg)

			mgr := state.NewManager(
				state.WithLogger(logger),
				state.WithMaxHistory(cfg.History.MaxEntries),
			)

			title := file
			switch {
			case len(args) == 1:
				ctx := cmd.Context()
				store, err := openStore(ctx, cfg)
				if err != nil {
					return err
				}
				defer store.Close()

				chart, err := store.LoadChart(ctx, args[0])
				if err != nil {
					return err
				}
				mgr.UpdateTasks(chart.Tasks)
				if err := mgr.UpdateDependencies(chart.Dependencies); err != nil {
					return err
				}
				mgr.ClearHistory()
				title = chart.Name

			case file != "":
				if err := loadChartFile(mgr, file); err != nil {
					return err
				}

			default:
				return fmt.Errorf("give a chart file with -f or a stored chart ID")
			}

			return tui.Run(tui.Config{Title: title, State: mgr, Logger: logger})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "chart file to open")
	return cmd
}
