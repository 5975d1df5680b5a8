// Package api provides the REST and WebSocket server for ganttkit.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ganttkit/ganttkit/internal/db"
	"github.com/ganttkit/ganttkit/internal/events"
	"github.com/ganttkit/ganttkit/internal/state"
)

// Server is the ganttkit API server. The state manager is single-goroutine
// by contract, so every handler takes the state mutex around it.
type Server struct {
	addr   string
	mux    *http.ServeMux
	logger *slog.Logger

	publisher events.Publisher
	wsHandler *WSHandler

	// store is the chart persistence backend; nil when running without one.
	store *db.Store

	mu        sync.Mutex
	state     *state.Manager
	chartID   string
	chartName string
}

// Config holds server configuration.
type Config struct {
	Addr      string
	Logger    *slog.Logger
	State     *state.Manager
	Store     *db.Store
	Publisher events.Publisher
}

// New creates a new API server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pub := cfg.Publisher
	if pub == nil {
		pub = events.NewMemoryPublisher()
	}
	st := cfg.State
	if st == nil {
		st = state.NewManager(state.WithLogger(logger), state.WithPublisher(pub))
	}

	s := &Server{
		addr:      cfg.Addr,
		mux:       http.NewServeMux(),
		logger:    logger,
		publisher: pub,
		store:     cfg.Store,
		state:     st,
		chartName: "untitled",
	}
	s.wsHandler = NewWSHandler(pub, logger)
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	cors := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			h(w, r)
		}
	}

	s.mux.HandleFunc("GET /api/health", cors(s.handleHealth))
	s.mux.HandleFunc("GET /api/state", cors(s.handleGetState))

	s.mux.HandleFunc("GET /api/tasks", cors(s.handleListTasks))
	s.mux.HandleFunc("POST /api/tasks", cors(s.handleCreateTask))
	s.mux.HandleFunc("GET /api/tasks/{id}", cors(s.handleGetTask))
	s.mux.HandleFunc("PATCH /api/tasks/{id}", cors(s.handleUpdateTask))
	s.mux.HandleFunc("DELETE /api/tasks/{id}", cors(s.handleDeleteTask))
	s.mux.HandleFunc("POST /api/tasks/{id}/move", cors(s.handleMoveTask))
	s.mux.HandleFunc("POST /api/tasks/{id}/collapse", cors(s.handleToggleCollapse))

	s.mux.HandleFunc("GET /api/dependencies", cors(s.handleListDependencies))
	s.mux.HandleFunc("POST /api/dependencies", cors(s.handleCreateDependency))
	s.mux.HandleFunc("DELETE /api/dependencies/{from}/{to}", cors(s.handleDeleteDependency))

	s.mux.HandleFunc("POST /api/undo", cors(s.handleUndo))
	s.mux.HandleFunc("POST /api/redo", cors(s.handleRedo))

	s.mux.HandleFunc("POST /api/schedule", cors(s.handleSchedule))
	s.mux.HandleFunc("GET /api/schedule/critical-path", cors(s.handleCriticalPath))

	s.mux.HandleFunc("GET /api/export", cors(s.handleExport))
	s.mux.HandleFunc("POST /api/import", cors(s.handleImport))

	s.mux.HandleFunc("GET /api/charts", cors(s.handleListCharts))
	s.mux.HandleFunc("POST /api/charts", cors(s.handleSaveChart))
	s.mux.HandleFunc("POST /api/charts/{id}/load", cors(s.handleLoadChart))
	s.mux.HandleFunc("DELETE /api/charts/{id}", cors(s.handleDeleteChart))

	s.mux.Handle("GET /ws", s.wsHandler)
}

// Handler returns the server's HTTP handler, used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.mux,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting API server", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.wsHandler.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
