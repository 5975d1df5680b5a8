package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ganttkit/ganttkit/internal/document"
)

// newExportCmd creates the export command.
func newExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <chart-id>",
		Short: "Export a stored chart to a file",
		Long: `Export a chart from the database to a portable JSON or YAML file.
The output format follows the file extension.

Examples:
  ganttkit export 2f1c... -o chart.json
  ganttkit export 2f1c... -o chart.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			setupLogger(cfg)

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

			doc := document.New(chart.Name, chart.Tasks, chart.Dependencies)
			if err := doc.WriteFile(out); err != nil {
				return err
			}

			fmt.Printf("%s exported to %s (%d tasks, %d dependencies)\n",
				chart.Name, out, len(chart.Tasks), len(chart.Dependencies))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "chart.json", "output file (.json or .yaml)")
	return cmd
}
