package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultPath = "casegraph.yaml"

type ProjectConfig struct {
	Project  string         `yaml:"project"`
	Version  int            `yaml:"version"`
	Case     CaseConfig     `yaml:"case"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Database DatabaseConfig `yaml:"database"`
	Rules    string         `yaml:"rules"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Log      LogConfig      `yaml:"log"`
}

type CaseConfig struct {
	ID            string   `yaml:"id"`
	Paths         []string `yaml:"paths"`
	Exclude       []string `yaml:"exclude"`
	Organizations []string `yaml:"organizations"`
}

type SnapshotConfig struct {
	Path string `yaml:"path"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

type AnalysisConfig struct {
	SignificantThreshold float64 `yaml:"significant_threshold"`
	CriticalThreshold    float64 `yaml:"critical_threshold"`
	LowEthicsThreshold   float64 `yaml:"low_ethics_threshold"`
	ClusterWindowDays    int     `yaml:"cluster_window_days"`
	Concurrency          int     `yaml:"concurrency"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func DefaultAnalysis() AnalysisConfig {
	return AnalysisConfig{
		SignificantThreshold: 0.5,
		CriticalThreshold:    0.6,
		LowEthicsThreshold:   0.4,
		ClusterWindowDays:    7,
		Concurrency:          4,
	}
}

func LoadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := validateProjectConfig(&cfg); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *ProjectConfig) {
	defaults := DefaultAnalysis()
	if cfg.Analysis.SignificantThreshold == 0 {
		cfg.Analysis.SignificantThreshold = defaults.SignificantThreshold
	}
	if cfg.Analysis.CriticalThreshold == 0 {
		cfg.Analysis.CriticalThreshold = defaults.CriticalThreshold
	}
	if cfg.Analysis.LowEthicsThreshold == 0 {
		cfg.Analysis.LowEthicsThreshold = defaults.LowEthicsThreshold
	}
	if cfg.Analysis.ClusterWindowDays == 0 {
		cfg.Analysis.ClusterWindowDays = defaults.ClusterWindowDays
	}
	if cfg.Analysis.Concurrency == 0 {
		cfg.Analysis.Concurrency = defaults.Concurrency
	}
	if strings.TrimSpace(cfg.Case.ID) == "" {
		cfg.Case.ID = cfg.Project
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = "info"
	}
}

func validateProjectConfig(cfg *ProjectConfig) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if len(cfg.Case.Paths) == 0 {
		return fmt.Errorf("at least one case path is required")
	}
	for i, path := range cfg.Case.Paths {
		if strings.TrimSpace(path) == "" {
			return fmt.Errorf("case path %d is empty", i)
		}
	}

	a := cfg.Analysis
	for name, v := range map[string]float64{
		"significant_threshold": a.SignificantThreshold,
		"critical_threshold":    a.CriticalThreshold,
		"low_ethics_threshold":  a.LowEthicsThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("analysis %s must be within [0,1], got %v", name, v)
		}
	}
	if a.ClusterWindowDays < 0 {
		return fmt.Errorf("analysis cluster_window_days must not be negative")
	}
	if a.Concurrency < 1 {
		return fmt.Errorf("analysis concurrency must be at least 1")
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level: %s", cfg.Log.Level)
	}

	return nil
}
