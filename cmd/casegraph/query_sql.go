package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

func querySQLCmd() *cobra.Command {
	var params []string
	cmd := &cobra.Command{
		Use:   "sql <query>",
		Short: "Execute a raw SQL query against the report archive",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return runSQL(query, params)
		},
	}
	cmd.Flags().StringArrayVar(&params, "param", nil, "Positional query parameter bound to $1, $2, ... (repeatable)")
	return cmd
}

func runSQL(query string, params []string) error {
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

	args := make([]any, 0, len(params))
	for _, param := range params {
		args = append(args, param)
	}
	rows, err := db.RunSQL(ctx, query, args...)
	if err != nil {
		return err
	}
	return printJSON(rows)
}
