package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvDatabaseDSN = "CASEGRAPH_DATABASE_DSN"
	EnvLogLevel    = "CASEGRAPH_LOG_LEVEL"
	EnvRules       = "CASEGRAPH_RULES"
	EnvSnapshot    = "CASEGRAPH_SNAPSHOT_PATH"
)

// LoadEnv reads a .env file from the working directory if one exists.
// It reports whether a file was loaded; a missing file is not an error.
func LoadEnv() bool {
	return godotenv.Load() == nil
}

func applyEnv(cfg *ProjectConfig) {
	cfg.Database.DSN = envString(EnvDatabaseDSN, cfg.Database.DSN)
	cfg.Log.Level = envString(EnvLogLevel, cfg.Log.Level)
	cfg.Rules = envString(EnvRules, cfg.Rules)
	cfg.Snapshot.Path = envString(EnvSnapshot, cfg.Snapshot.Path)
}

func envString(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
