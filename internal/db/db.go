// Package db persists charts to SQLite or PostgreSQL behind a common store
// API.
package db

import (
	"context"
	"embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ganttkit/ganttkit/internal/config"
	"github.com/ganttkit/ganttkit/internal/db/driver"
)

//go:embed schema
var schemaFS embed.FS

// Store provides chart persistence over a dialect driver.
type Store struct {
	drv    driver.Driver
	logger *slog.Logger
}

// Open connects to the configured backend and applies pending migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dialect, err := driver.ParseDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}
	drv, err := driver.New(dialect)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	if dialect == driver.DialectSQLite {
		dsn = cfg.Path
		if dir := filepath.Dir(dsn); dir != "." && dsn != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database dir: %w", err)
			}
		}
	}

	if err := drv.Open(dsn); err != nil {
		return nil, err
	}
	if err := drv.Migrate(ctx, schemaFS); err != nil {
		_ = drv.Close()
		return nil, err
	}

	logger.Debug("database opened", "dialect", dialect, "dsn", dsn)
	return &Store{drv: drv, logger: logger}, nil
}

// OpenMemory opens an in-memory SQLite store, used by tests and `ganttkit`
// commands that never persist.
func OpenMemory(ctx context.Context) (*Store, error) {
	return Open(ctx, config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, nil)
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// ph renders a dialect-appropriate placeholder list: ph(3) is "?, ?, ?" or
// "$1, $2, $3".
func (s *Store) ph(n int) string {
	out := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			out += ", "
		}
		out += s.drv.Placeholder(i)
	}
	return out
}
