package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ganttkit/ganttkit/internal/api"
	"github.com/ganttkit/ganttkit/internal/events"
	"github.com/ganttkit/ganttkit/internal/state"
)

// newServeCmd creates the serve command.
func newServeCmd() *cobra.Command {
	var port int
	var file string
	var noStore bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web API server",
		Long: `Start the REST and WebSocket API server backing the web UI.

The server keeps one in-memory chart with full undo history. Charts can
be saved to and loaded from the configured database unless --no-store
is given.

Examples:
  ganttkit serve
  ganttkit serve --port 9000
  ganttkit serve -f chart.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := setupLogger(cfg)

			if port != 0 {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pub := events.NewMemoryPublisher()
			mgr := state.NewManager(
				state.WithLogger(logger),
				state.WithPublisher(pub),
				state.WithMaxHistory(cfg.History.MaxEntries),
			)

			if file != "" {
				if err := loadChartFile(mgr, file); err != nil {
					return err
				}
				logger.Info("chart loaded", "file", file, "tasks", len(mgr.Tasks()))
			}

			apiCfg := api.Config{
				Addr:      cfg.Server.Addr(),
				Logger:    logger,
				State:     mgr,
				Publisher: pub,
			}
			if !noStore {
				store, err := openStore(ctx, cfg)
				if err != nil {
					return err
				}
				defer store.Close()
				apiCfg.Store = store
			}

			srv := api.New(apiCfg)
			fmt.Printf("ganttkit listening on http://%s\n", cfg.Server.Addr())
			return srv.Start(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "chart file to serve initially")
	cmd.Flags().BoolVar(&noStore, "no-store", false, "run without the chart database")
	return cmd
}
