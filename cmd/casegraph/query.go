package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"casegraph/internal/framework"
	"casegraph/internal/store"
)

var querySnapshot bool

func queryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Query the analyzed case from the CLI",
	}
	cmd.PersistentFlags().BoolVar(&querySnapshot, "snapshot", false, "Query the saved snapshot instead of re-ingesting")
	cmd.AddCommand(queryRolesCmd())
	cmd.AddCommand(queryRelationsCmd())
	cmd.AddCommand(queryMMOCmd())
	cmd.AddCommand(queryDecideCmd())
	cmd.AddCommand(queryReportsCmd())
	cmd.AddCommand(querySQLCmd())
	return cmd
}

// analyzedCase loads the case and runs the analysis so derived fields are
// populated before a query reads them.
func analyzedCase(ctx context.Context) (*project, *framework.Analyzer, *store.Store, error) {
	p, err := loadProject()
	if err != nil {
		return nil, nil, nil, err
	}
	st, err := p.loadCase(ctx, querySnapshot, time.Now().UTC())
	if err != nil {
		return nil, nil, nil, err
	}
	analyzer := framework.New(p.rules, p.cfg.Analysis)
	if _, err := analyzer.Analyze(ctx, st); err != nil {
		return nil, nil, nil, err
	}
	return p, analyzer, st, nil
}
