package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/ganttkit/ganttkit/internal/db"
	"github.com/ganttkit/ganttkit/internal/document"
)

// newImportCmd creates the import command.
func newImportCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import <pattern>...",
		Short: "Import chart files into the database",
		Long: `Import chart files into the local database so the web UI can open
them. Patterns support ** globs and are matched against the filesystem.

Examples:
  ganttkit import chart.json
  ganttkit import plans/**/*.json
  ganttkit import chart.yaml --name "Q3 roadmap"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg)

			var files []string
			seen := map[string]bool{}
			for _, pattern := range args {
				matches, err := doublestar.FilepathGlob(pattern)
				if err != nil {
					return fmt.Errorf("bad pattern %q: %w", pattern, err)
				}
				if len(matches) == 0 {
					// A literal path that exists still imports even if the
					// glob engine found nothing to expand.
					matches = []string{pattern}
				}
				for _, m := range matches {
					if !seen[m] {
						seen[m] = true
						files = append(files, m)
					}
				}
			}

			ctx := cmd.Context()
			store, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if name != "" && len(files) > 1 {
				return fmt.Errorf("--name only applies when importing a single file")
			}

			imported := 0
			for _, file := range files {
				doc, err := document.ReadFile(file)
				if err != nil {
					return fmt.Errorf("import %s: %w", file, err)
				}

				chartName := doc.Name
				if name != "" {
					chartName = name
				}
				if chartName == "" {
					chartName = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
				}

				chart := &db.Chart{
					Name:         chartName,
					Tasks:        doc.Tasks,
					Dependencies: doc.Dependencies,
				}
				if err := store.SaveChart(ctx, chart); err != nil {
					return fmt.Errorf("save %s: %w", file, err)
				}
				logger.Info("chart imported", "file", file, "chart_id", chart.ID, "tasks", len(chart.Tasks))
				fmt.Printf("%s  %s (%d tasks)\n", chart.ID, chartName, len(chart.Tasks))
				imported++
			}

			fmt.Println(styled(dimStyle, fmt.Sprintf("%d charts imported", imported)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "chart name (defaults to the document or file name)")
	return cmd
}
