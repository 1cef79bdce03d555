package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProjectConfig(t *testing.T) {
	t.Run("valid config loads", func(t *testing.T) {
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Project != "test-project" {
			t.Fatalf("expected project name, got %q", cfg.Project)
		}
		if cfg.Case.ID != "test-case" {
			t.Fatalf("expected case id, got %q", cfg.Case.ID)
		}
		if cfg.Analysis.Concurrency != 2 {
			t.Fatalf("expected concurrency 2, got %d", cfg.Analysis.Concurrency)
		}
		if cfg.Analysis.LowEthicsThreshold != 0.4 {
			t.Fatalf("expected default low ethics threshold, got %v", cfg.Analysis.LowEthicsThreshold)
		}
	})

	t.Run("defaults fill analysis and case id", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ncase:\n  paths: [./records]\n")
		cfg, err := LoadProjectConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Case.ID != "test" {
			t.Fatalf("expected case id to default to project, got %q", cfg.Case.ID)
		}
		if cfg.Analysis != DefaultAnalysis() {
			t.Fatalf("expected default analysis, got %+v", cfg.Analysis)
		}
		if cfg.Log.Level != "info" {
			t.Fatalf("expected info level, got %q", cfg.Log.Level)
		}
	})

	t.Run("environment overrides dsn", func(t *testing.T) {
		t.Setenv(EnvDatabaseDSN, "postgres://env/casegraph")
		cfg, err := LoadProjectConfig(filepath.Join("testdata", "valid_config.yaml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if cfg.Database.DSN != "postgres://env/casegraph" {
			t.Fatalf("expected env dsn, got %q", cfg.Database.DSN)
		}
	})

	t.Run("missing project name", func(t *testing.T) {
		path := writeTempConfig(t, "version: 1\ncase:\n  paths: [./records]\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unsupported version", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 2\ncase:\n  paths: [./records]\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("no case paths", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("empty case path", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ncase:\n  paths: [\"\"]\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("threshold out of range", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ncase:\n  paths: [./records]\nanalysis:\n  critical_threshold: 1.5\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("unknown log level", func(t *testing.T) {
		path := writeTempConfig(t, "project: test\nversion: 1\ncase:\n  paths: [./records]\nlog:\n  level: loud\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("file not found", func(t *testing.T) {
		if _, err := LoadProjectConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeTempConfig(t, "project: [\n")
		if _, err := LoadProjectConfig(path); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}
