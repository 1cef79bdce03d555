package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"casegraph/internal/behavior"
	"casegraph/internal/framework"
)

func queryDecideCmd() *cobra.Command {
	var signals []string
	var eventID string
	cmd := &cobra.Command{
		Use:   "decide <entity-id>",
		Short: "Ask an entity's behavioral profile how it would respond",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := parseSignals(eventID, signals)
			if err != nil {
				return err
			}
			return runQueryDecide(args[0], ctx)
		},
	}
	cmd.Flags().StringArrayVar(&signals, "signal", nil, "Observed condition as kind or kind=detail (repeatable); kinds: "+behavior.SignalKindNames())
	cmd.Flags().StringVar(&eventID, "event", "", "Event the decision responds to")
	return cmd
}

func parseSignals(eventID string, pairs []string) (behavior.Context, error) {
	signals := make([]behavior.Signal, 0, len(pairs))
	for _, pair := range pairs {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		name, detail, _ := strings.Cut(pair, "=")
		kind, err := behavior.ParseSignalKind(name)
		if err != nil {
			return behavior.Context{}, err
		}
		signals = append(signals, behavior.Signal{Kind: kind, Detail: strings.TrimSpace(detail)})
	}
	return behavior.NewContext(eventID, signals...), nil
}

func runQueryDecide(entityID string, situation behavior.Context) error {
	_, _, st, err := analyzedCase(context.Background())
	if err != nil {
		return err
	}
	decision, err := framework.Decide(st, entityID, situation, time.Now().UTC())
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Decision: %s\n", decision.Action)
	for _, line := range decision.Reasoning {
		fmt.Fprintf(os.Stdout, "  - %s\n", line)
	}
	return nil
}
