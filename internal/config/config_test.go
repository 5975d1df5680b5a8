package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ganttkit/ganttkit/internal/errors"
)

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadNoFiles(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 8844, cfg.Server.Port)
	assert.Equal(t, 10, cfg.History.MaxEntries)
}

func TestProjectConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeProjectConfig(t, dir, `
server:
  port: 9000
history:
  max_entries: 50
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 50, cfg.History.MaxEntries)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host, "absent keys keep defaults")
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeProjectConfig(t, dir, "server:\n  port: 9000\n")
	t.Setenv("GANTTKIT_PORT", "9100")
	t.Setenv("GANTTKIT_AUTO_SCHEDULE", "true")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.True(t, cfg.Scheduler.AutoSchedule)
}

func TestMalformedProjectConfigFatal(t *testing.T) {
	dir := t.TempDir()
	writeProjectConfig(t, dir, "server: [not a map\n")

	_, err := Load(dir)
	require.Error(t, err)
}

func TestLoadRejectsInvalidMerge(t *testing.T) {
	dir := t.TempDir()
	writeProjectConfig(t, dir, "database:\n  driver: oracle\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.AsError(err).Code)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"postgres with dsn", func(c *Config) {
			c.Database.Driver = "postgres"
			c.Database.DSN = "postgres://localhost/gantt"
		}, true},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = "postgres" }, false},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, false},
		{"zero history", func(c *Config) { c.History.MaxEntries = 0 }, false},
		{"bad view mode", func(c *Config) { c.View.DefaultMode = "decade" }, false},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, false},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.Server.Port = 9999
	require.NoError(t, cfg.Save(dir))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 9999, loaded.Server.Port)
}

func TestApplyEnvVarsReportsPaths(t *testing.T) {
	t.Setenv("GANTTKIT_LOG_LEVEL", "debug")
	t.Setenv("GANTTKIT_PORT", "not-a-number")

	cfg := Default()
	overridden := ApplyEnvVars(cfg)

	assert.Contains(t, overridden, "log.level")
	assert.NotContains(t, overridden, "server.port", "unparseable values ignored")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 8844, cfg.Server.Port)
}

func writeProjectConfig(t *testing.T, dir, content string) {
	t.Helper()
	confDir := filepath.Join(dir, GanttkitDir)
	require.NoError(t, os.MkdirAll(confDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(confDir, ConfigFileName), []byte(content), 0o644))
}
