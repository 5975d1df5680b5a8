// Package config provides configuration management for ganttkit.
//
// Configuration merges in layers, later layers overriding earlier:
//
//  1. Built-in defaults
//  2. User config (~/.ganttkit/config.yaml) - optional
//  3. Project config (.ganttkit/config.yaml) - optional
//  4. Environment variables (GANTTKIT_*)
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ganttkit/ganttkit/internal/errors"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = "config.yaml"
	// GanttkitDir is the ganttkit configuration directory.
	GanttkitDir = ".ganttkit"
)

// ServerConfig holds HTTP server settings for `ganttkit serve`.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

/// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the chart store backend.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `yaml:"driver"`
	// Path is the sqlite database file (sqlite driver only).
	Path string `yaml:"path"`
	// DSN is the postgres connection string (postgres driver only).
	DSN string `yaml:"dsn,omitempty"`
}

// HistoryConfig bounds the undo/redo stacks.
type HistoryConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

// ViewConfig seeds the initial timeline window.
type ViewConfig struct {
	// DefaultMode is the timeline granularity (day, week, month, quarter, year).
	DefaultMode string `yaml:"default_mode"`
	// DaysBefore/DaysAfter pad the window around today.
	DaysBefore int `yaml:"days_before"`
	DaysAfter  int `yaml:"days_after"`
}

// ScrollConfig seeds the virtual-scroll geometry.
type ScrollConfig struct {
	RowHeight   int `yaml:"row_height"`
	BufferSize  int `yaml:"buffer_size"`
	VisibleRows int `yaml:"visible_rows"`
}

// SchedulerConfig controls automatic rescheduling.
type SchedulerConfig struct {
	// AutoSchedule reruns the scheduler after every dependency change.
	AutoSchedule bool `yaml:"auto_schedule"`
}

// LogConfig controls structured log output.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// Config represents the ganttkit configuration.
type Config struct {
	// Version is the config file version.
	Version int `yaml:"version"`

	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	History   HistoryConfig   `yaml:"history"`
	View      ViewConfig      `yaml:"view"`
	Scroll    ScrollConfig    `yaml:"scroll"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Log       LogConfig       `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8844,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   filepath.Join(GanttkitDir, "charts.db"),
		},
		History: HistoryConfig{
			MaxEntries: 10,
		},
		View: ViewConfig{
			DefaultMode: "day",
			DaysBefore:  7,
			DaysAfter:   30,
		},
		Scroll: ScrollConfig{
			RowHeight:   40,
			BufferSize:  5,
			VisibleRows: 20,
		},
		Scheduler: SchedulerConfig{
			AutoSchedule: false,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks the merged configuration for values no component could
// honor.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return errors.ErrConfigInvalid("database.driver", fmt.Sprintf("unknown driver %q", c.Database.Driver))
	}
	if c.Database.Driver == "postgres" && c.Database.DSN == "" {
		return errors.ErrConfigInvalid("database.dsn", "postgres driver requires a dsn")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.ErrConfigInvalid("server.port", fmt.Sprintf("port %d out of range", c.Server.Port))
	}
	if c.History.MaxEntries < 1 {
		return errors.ErrConfigInvalid("history.max_entries", "must be at least 1")
	}
	switch c.View.DefaultMode {
	case "day", "week", "month", "quarter", "year":
	default:
		return errors.ErrConfigInvalid("view.default_mode", fmt.Sprintf("unknown view mode %q", c.View.DefaultMode))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.ErrConfigInvalid("log.level", fmt.Sprintf("unknown log level %q", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.ErrConfigInvalid("log.format", fmt.Sprintf("unknown log format %q", c.Log.Format))
	}
	return nil
}

// Save writes the config to .ganttkit/config.yaml under dir.
func (c *Config) Save(dir string) error {
	confDir := filepath.Join(dir, GanttkitDir)
	if err := os.MkdirAll(confDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	path := filepath.Join(confDir, ConfigFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
