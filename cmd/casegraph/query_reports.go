package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func queryReportsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List archived reports for the case",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryReports(limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of reports")
	return cmd
}

func runQueryReports(limit int) error {
	ctx := context.Background()

	p, err := loadProject()
	if err != nil {
		return err
	}
	db, err := p.openDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	reports, err := db.ListReports(ctx, p.cfg.Case.ID, limit)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Fprintln(os.Stdout, "No archived reports.")
		return nil
	}
	for _, r := range reports {
		fmt.Fprintf(os.Stdout, "%s  %s  %-8s  %s\n", r.CreatedAt.Format(time.RFC3339), r.ID, r.Overall, r.RulesRevision)
	}
	return nil
}
