package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func dbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the report archive database",
	}
	cmd.AddCommand(dbMigrateCmd())
	cmd.AddCommand(dbPruneCmd())
	return cmd
}

func dbMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the report archive tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			if err := db.EnsureSchema(ctx); err != nil {
				return err
			}
			fmt.Fprintln(os.Stdout, "Schema is up to date.")
			return nil
		},
	}
}

func dbPruneCmd() *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the most recent archived reports of the case",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			removed, err := db.PruneReports(ctx, p.cfg.Case.ID, keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Removed %d report(s).\n", removed)
			return nil
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 10, "Number of recent reports to keep")
	return cmd
}
