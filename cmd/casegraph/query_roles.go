package main

import (
	"context"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"casegraph/internal/framework"
	"casegraph/internal/model"
)

func queryRolesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roles <entity-id>",
		Short: "Show the role indicators of an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryRoles(args[0])
		},
	}
}

func runQueryRoles(id string) error {
	_, _, st, err := analyzedCase(context.Background())
	if err != nil {
		return err
	}
	entity, ok := st.Entity(id)
	if !ok {
		return fmt.Errorf("%s: %w", id, framework.ErrEntityNotFound)
	}

	fmt.Fprintf(os.Stdout, "%s (%s, %s)\n", entity.Name, entity.Kind, entity.Status)
	for _, domain := range []model.RoleDomain{model.DomainCriminal, model.DomainCommercial} {
		fmt.Fprintf(os.Stdout, "\n%s roles:\n", domain)
		for _, role := range domain.Roles() {
			fmt.Fprintf(os.Stdout, "  %-14s %.2f\n", role, entity.Indicator(domain.Prefix()+role))
		}
	}
	if len(entity.TimelineSignificance) > 0 {
		fmt.Fprintln(os.Stdout, "\nTimeline significance:")
		for _, eventID := range slices.Sorted(maps.Keys(entity.TimelineSignificance)) {
			fmt.Fprintf(os.Stdout, "  %-24s %.2f\n", eventID, entity.TimelineSignificance[eventID])
		}
	}
	return nil
}
