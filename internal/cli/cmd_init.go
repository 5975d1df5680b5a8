package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ganttkit/ganttkit/internal/config"
)

// newInitCmd creates the init command.
func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize ganttkit in the current directory",
		Long: `Write a default .ganttkit/config.yaml into the current directory.

Example:
  ganttkit init`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(config.GanttkitDir, config.ConfigFileName)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.Default()
			if err := cfg.Save("."); err != nil {
				return err
			}

			fmt.Printf("Initialized ganttkit configuration in %s\n", path)
			fmt.Println(styled(dimStyle, "Edit it to change the port, database, or history depth."))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}
