package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ganttkit/ganttkit/internal/document"
	"github.com/ganttkit/ganttkit/internal/errors"
	"github.com/ganttkit/ganttkit/internal/state"
)

// newShowCmd creates the show command.
func newShowCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show task details",
		Long: `Show a task's dates, hierarchy, and dependency links.

Examples:
  ganttkit show 3 -f chart.json
  ganttkit show 3 -f chart.json --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("task id must be a number: %q", args[0])
			}

			doc, err := document.ReadFile(file)
			if err != nil {
				return err
			}

			// Load into a state manager so derived fields (children,
			// predecessors, levels) are available.
			m := state.NewManager()
			m.UpdateTasks(doc.Tasks)
			if err := m.UpdateDependencies(doc.Dependencies); err != nil {
				return err
			}

			ct, ok := m.TaskCache(id)
			if !ok {
				return errors.ErrTaskNotFound(id)
			}

			if jsonOut {
				data, _ := json.MarshalIndent(ct, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			t := ct.Task
			fmt.Printf("%s %s\n", styled(headerStyle, fmt.Sprintf("#%d", t.ID)), t.Name)
			fmt.Printf("  type:      %s\n", typeLabel(t.Type))
			fmt.Printf("  dates:     %s .. %s (%d days)\n", t.Start, t.End, ct.Duration)
			fmt.Printf("  progress:  %s\n", progressBar(t.Progress))
			fmt.Printf("  level:     %d\n", ct.Level)
			if t.ParentID != 0 {
				fmt.Printf("  parent:    %d\n", t.ParentID)
			}
			if len(t.Children) > 0 {
				fmt.Printf("  children:  %v\n", t.Children)
			}
			if len(t.DependsOn) > 0 {
				fmt.Printf("  after:     %v\n", t.DependsOn)
			}
			if len(t.Dependents) > 0 {
				fmt.Printf("  before:    %v\n", t.Dependents)
			}
			for k, v := range t.Metadata {
				fmt.Printf("  %s: %s\n", styled(dimStyle, k), v)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "chart.json", "chart file to read")
	return cmd
}
