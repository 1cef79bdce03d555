package main

import (
	"context"

	"github.com/spf13/cobra"
)

func queryMMOCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mmo <entity-id> <event-id>",
		Short: "Assess motive, means and opportunity of an entity for an event",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryMMO(args[0], args[1])
		},
	}
}

func runQueryMMO(entityID, eventID string) error {
	_, analyzer, st, err := analyzedCase(context.Background())
	if err != nil {
		return err
	}
	result, err := analyzer.MotiveMeansOpportunity(st, entityID, eventID)
	if err != nil {
		return err
	}
	return printJSON(result)
}
