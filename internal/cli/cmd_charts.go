package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// newChartsCmd creates the charts command group.
func newChartsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Manage stored charts",
		Long: `List and delete charts stored in the local database.

Examples:
  ganttkit charts list
  ganttkit charts delete 2f1c...`,
	}

	cmd.AddCommand(newChartsListCmd())
	cmd.AddCommand(newChartsDeleteCmd())
	return cmd
}

func newChartsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored charts",
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

			charts, err := store.ListCharts(ctx)
			if err != nil {
				return err
			}

			if jsonOut {
				data, _ := json.MarshalIndent(charts, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			if len(charts) == 0 {
				fmt.Println("No charts stored. Use 'ganttkit import' to add one.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, styled(headerStyle, "ID\tTASKS\tUPDATED\tNAME"))
			for _, c := range charts {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
					c.ID, c.TaskCount, c.UpdatedAt.Format("2006-01-02 15:04"), truncate(c.Name, 48))
			}
			return w.Flush()
		},
	}
}

func newChartsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <chart-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a stored chart",
		Args:    cobra.ExactArgs(1),
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

			if err := store.DeleteChart(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("Chart %s deleted.\n", args[0])
			return nil
		},
	}
}
