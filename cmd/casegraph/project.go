package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"casegraph/internal/config"
	"casegraph/internal/ingest"
	"casegraph/internal/logger"
	"casegraph/internal/logger/console"
	"casegraph/internal/store"
	"casegraph/internal/store/badger"
	"casegraph/internal/store/postgres"
)

type project struct {
	cfg   *config.ProjectConfig
	rules *config.Rules
}

// loadProject reads the environment, the project config and its rule table,
// then installs the console logger at the configured level.
func loadProject() (*project, error) {
	config.LoadEnv()

	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, err
	}
	backend, err := console.New(console.Params{Level: cfg.Log.Level, JSON: logJSON})
	if err != nil {
		return nil, err
	}
	logger.Init(backend)

	rules, err := config.RulesFor(cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("rules loaded", "version", rules.Version, "revision", rules.Revision)
	return &project{cfg: cfg, rules: rules}, nil
}

func parseAsOf(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

// ingestCase runs a fresh ingest of the case paths into a new store.
func (p *project) ingestCase(ctx context.Context, asOf time.Time) (*store.Store, *ingest.Result, error) {
	st := store.New()
	result, err := ingest.Run(ctx, p.cfg, p.rules, st, ingest.Options{AsOf: asOf})
	if err != nil {
		return nil, nil, err
	}
	return st, result, nil
}

// loadCase restores the case from its snapshot when fromSnapshot is set and
// ingests the sources otherwise.
func (p *project) loadCase(ctx context.Context, fromSnapshot bool, asOf time.Time) (*store.Store, error) {
	if !fromSnapshot {
		st, result, err := p.ingestCase(ctx, asOf)
		if err != nil {
			return nil, err
		}
		for _, item := range result.Errors {
			logger.Warn("ingest error", "error", item)
		}
		return st, nil
	}

	snapshots, err := p.openSnapshots()
	if err != nil {
		return nil, err
	}
	defer snapshots.Close()

	snap, err := snapshots.Load(ctx, p.cfg.Case.ID)
	if err != nil {
		if errors.Is(err, badger.ErrCaseNotFound) {
			return nil, fmt.Errorf("no snapshot for case %s; run casegraph ingest first: %w", p.cfg.Case.ID, err)
		}
		return nil, err
	}
	return store.FromSnapshot(snap)
}

func (p *project) openSnapshots() (*badger.Snapshots, error) {
	if strings.TrimSpace(p.cfg.Snapshot.Path) == "" {
		return nil, fmt.Errorf("snapshot.path is not configured")
	}
	return badger.Open(badger.Config{Path: p.cfg.Snapshot.Path, SyncWrites: true})
}

func (p *project) openDB(ctx context.Context) (*postgres.Client, error) {
	if strings.TrimSpace(p.cfg.Database.DSN) == "" {
		return nil, fmt.Errorf("database.dsn is not configured")
	}
	return postgres.New(ctx, p.cfg.Database.DSN)
}
