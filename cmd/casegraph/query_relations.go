package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"casegraph/internal/framework"
	"casegraph/internal/model"
	"casegraph/internal/relations"
)

func queryRelationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "relations <event-id>",
		Short: "Show significance and causal relations of an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryRelations(args[0])
		},
	}
}

func runQueryRelations(id string) error {
	_, _, st, err := analyzedCase(context.Background())
	if err != nil {
		return err
	}
	event, ok := st.Event(id)
	if !ok {
		return fmt.Errorf("%s: %w", id, framework.ErrEventNotFound)
	}

	byID := make(map[string]*model.Event)
	for _, e := range st.Events() {
		byID[e.ID] = e
	}

	fmt.Fprintf(os.Stdout, "%s  %s\n", event.Date.Format("2006-01-02"), event.Description)
	fmt.Fprintf(os.Stdout, "  Criminal significance:   %.2f\n", event.CriminalSignificance)
	fmt.Fprintf(os.Stdout, "  Commercial significance: %.2f\n", event.CommercialSignificance)
	fmt.Fprintf(os.Stdout, "  Categories:              %s\n", joinOrNone(event.LegalCategories))
	fmt.Fprintf(os.Stdout, "  Causes:                  %s\n", joinOrNone(event.CausalRelations))
	fmt.Fprintf(os.Stdout, "  Depends on:              %s\n", joinOrNone(event.TemporalDependencies))
	fmt.Fprintf(os.Stdout, "  Reach:                   %s\n", joinOrNone(relations.TraceChain(event.ID, byID)))
	return nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
