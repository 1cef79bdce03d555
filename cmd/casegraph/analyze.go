package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"casegraph/internal/framework"
	"casegraph/internal/logger"
)

var (
	analyzeSnapshot bool
	analyzeArchive  bool
	analyzeAsOf     string
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full case analysis and print the report as JSON",
		RunE:  runAnalyze,
	}
	cmd.Flags().BoolVar(&analyzeSnapshot, "snapshot", false, "Analyze the saved snapshot instead of re-ingesting")
	cmd.Flags().BoolVar(&analyzeArchive, "archive", false, "Store the report in the database archive")
	cmd.Flags().StringVar(&analyzeAsOf, "as-of", "", "Date stamped on new behavioral profiles (YYYY-MM-DD, default today)")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	p, err := loadProject()
	if err != nil {
		return err
	}
	asOf, err := parseAsOf(analyzeAsOf)
	if err != nil {
		return err
	}
	st, err := p.loadCase(ctx, analyzeSnapshot, asOf)
	if err != nil {
		return err
	}

	analyzer := framework.New(p.rules, p.cfg.Analysis)
	report, err := analyzer.Analyze(ctx, st)
	if err != nil {
		return err
	}

	if analyzeArchive {
		db, err := p.openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close(ctx)
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		archived, err := db.SaveReport(ctx, p.cfg.Case.ID, analyzer.RulesRevision(), report)
		if err != nil {
			return err
		}
		logger.Info("report archived", "id", archived.ID, "case", archived.CaseID)
	}

	return printJSON(report)
}

func printJSON(v any) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	fmt.Fprintln(os.Stdout, string(payload))
	return nil
}
