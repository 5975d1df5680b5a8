package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ganttkit/ganttkit/internal/document"
)

// newListCmd creates the list command.
func newListCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List a chart's tasks",
		Long: `List the tasks of a chart file in row order.

Example:
  ganttkit list -f chart.json
  ganttkit list -f chart.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := document.ReadFile(file)
			if err != nil {
				return err
			}

			if jsonOut {
				data, _ := json.MarshalIndent(doc.Tasks, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			if len(doc.Tasks) == 0 {
				fmt.Println("No tasks in chart.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, styled(headerStyle, "ID\tTYPE\tSTART\tEND\tDAYS\tPROGRESS\tNAME"))
			for _, t := range doc.Tasks {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
					t.ID, typeLabel(t.Type), t.Start, t.End, t.Duration(),
					progressBar(t.Progress), truncate(t.Name, 48))
			}
			_ = w.Flush()

			fmt.Println(styled(dimStyle, fmt.Sprintf("%d tasks, %d dependencies", len(doc.Tasks), len(doc.Dependencies))))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "chart.json", "chart file to read")
	return cmd
}
