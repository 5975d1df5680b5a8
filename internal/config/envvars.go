package config

import (
	"os"
	"strconv"
	"strings"
)

// EnvVarMapping defines the mapping between environment variables and config
// paths.
var EnvVarMapping = map[string]string{
	"GANTTKIT_HOST":          "server.host",
	"GANTTKIT_PORT":          "server.port",
	"GANTTKIT_DB_DRIVER":     "database.driver",
	"GANTTKIT_DB_PATH":       "database.path",
	"GANTTKIT_DB_DSN":        "database.dsn",
	"GANTTKIT_HISTORY_MAX":   "history.max_entries",
	"GANTTKIT_VIEW_MODE":     "view.default_mode",
	"GANTTKIT_AUTO_SCHEDULE": "scheduler.auto_schedule",
	"GANTTKIT_LOG_LEVEL":     "log.level",
	"GANTTKIT_LOG_FORMAT":    "log.format",
}

// ApplyEnvVars applies environment variable overrides to cfg and returns the
// config paths that were overridden.
func ApplyEnvVars(cfg *Config) []string {
	var overridden []string
	for envVar, configPath := range EnvVarMapping {
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}
		if applyEnvVar(cfg, configPath, value) {
			overridden = append(overridden, configPath)
		}
	}
	return overridden
}

// applyEnvVar applies a single override. Returns true if the value was
// applied; unparseable numbers and booleans are ignored rather than failing
// the whole load.
func applyEnvVar(cfg *Config, path, value string) bool {
	switch path {
	case "server.host":
		cfg.Server.Host = value
	case "server.port":
		v, err := strconv.Atoi(value)
		if err != nil {
			return false
		}
		cfg.Server.Port = v
	case "database.driver":
		cfg.Database.Driver = value
	case "database.path":
		cfg.Database.Path = value
	case "database.dsn":
		cfg.Database.DSN = value
	case "history.max_entries":
		v, err := strconv.Atoi(value)
		if err != nil {
			return false
		}
		cfg.History.MaxEntries = v
	case "view.default_mode":
		cfg.View.DefaultMode = value
	case "scheduler.auto_schedule":
		cfg.Scheduler.AutoSchedule = parseBool(value)
	case "log.level":
		cfg.Log.Level = value
	case "log.format":
		cfg.Log.Format = value
	default:
		return false
	}
	return true
}

func parseBool(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
