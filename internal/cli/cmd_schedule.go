package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ganttkit/ganttkit/internal/document"
	"github.com/ganttkit/ganttkit/internal/scheduler"
)

// newScheduleCmd creates the schedule command.
func newScheduleCmd() *cobra.Command {
	var file string
	var dryRun bool
	var critical bool

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Reschedule a chart around its dependencies",
		Long: `Shift dependent tasks so every task starts after its predecessors
finish, preserving task durations. The chart file is rewritten in place
unless --dry-run is given.

Examples:
  ganttkit schedule -f chart.json
  ganttkit schedule -f chart.json --dry-run
  ganttkit schedule -f chart.json --critical`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg)

			doc, err := document.ReadFile(file)
			if err != nil {
				return err
			}

			if critical {
				return printCriticalPath(doc)
			}

			rescheduled := scheduler.Schedule(doc.Tasks, doc.Dependencies, logger)

			moved := 0
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for i, t := range doc.Tasks {
				n := rescheduled[i]
				if t.Start.Equal(n.Start) && t.End.Equal(n.End) {
					continue
				}
				moved++
				fmt.Fprintf(w, "%d\t%s\t%s .. %s\t->\t%s .. %s\n",
					t.ID, truncate(t.Name, 32), t.Start, t.End, n.Start, n.End)
			}
			_ = w.Flush()

			if moved == 0 {
				fmt.Println("Already consistent; nothing to move.")
				return nil
			}
			if dryRun {
				fmt.Println(styled(dimStyle, fmt.Sprintf("%d tasks would move (dry run)", moved)))
				return nil
			}

			doc.Tasks = rescheduled
			if err := doc.WriteFile(file); err != nil {
				return err
			}
			fmt.Println(styled(dimStyle, fmt.Sprintf("%d tasks moved, %s updated", moved, file)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "chart.json", "chart file to reschedule")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print moves without writing the file")
	cmd.Flags().BoolVar(&critical, "critical", false, "print the critical path analysis instead")
	return cmd
}

func printCriticalPath(doc *document.Document) error {
	analysis, err := scheduler.CriticalPath(doc.Tasks, doc.Dependencies)
	if err != nil {
		return err
	}

	byID := make(map[int]string, len(doc.Tasks))
	for _, t := range doc.Tasks {
		byID[t.ID] = t.Name
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, styled(headerStyle, "ID\tSLACK\tCRITICAL\tNAME"))
	for _, id := range analysis.Order {
		ts := analysis.Tasks[id]
		mark := ""
		if ts.Critical {
			mark = styled(criticalStyle, "*")
		}
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", id, ts.Slack, mark, truncate(byID[id], 48))
	}
	_ = w.Flush()

	fmt.Printf("critical path: %v (%d days total)\n", analysis.CriticalPath, analysis.TotalDays)
	return nil
}
