package relations

import (
	"slices"
	"strings"

	"casegraph/internal/config"
	"casegraph/internal/model"
)

// Inferencer derives causal and temporal-dependency edges between events
// from the description pattern tables of the rule set.
type Inferencer struct {
	rules *config.Rules
}

func New(rules *config.Rules) *Inferencer {
	return &Inferencer{rules: rules}
}

// InferCausal returns the IDs of events in others that event plausibly
// caused. Only strictly later events qualify. A candidate is selected when
// its description carries a causal phrase and one of the leading tokens of
// event's description, or when event matches a pattern trigger and the
// candidate one of that trigger's consequences.
func (in *Inferencer) InferCausal(event *model.Event, others []*model.Event) []string {
	out := []string{}
	if event == nil {
		return out
	}
	desc := strings.ToLower(event.Description)
	lead := leadTokens(desc, in.rules.Causal.LeadTokens)

	var triggered [][]string
	for _, p := range in.rules.Causal.Patterns {
		if strings.Contains(desc, p.Trigger) {
			triggered = append(triggered, p.Consequences)
		}
	}

	for _, other := range others {
		if other == nil || other.ID == event.ID || !other.Date.After(event.Date) {
			continue
		}
		otherDesc := strings.ToLower(other.Description)
		if causedBy(otherDesc, lead, in.rules.Causal.Phrases) || matchesAny(otherDesc, triggered) {
			out = appendUnique(out, other.ID)
		}
	}
	return out
}

// InferTemporalDependencies returns the IDs of strictly earlier events in
// others that must have happened for event to occur.
func (in *Inferencer) InferTemporalDependencies(event *model.Event, others []*model.Event) []string {
	out := []string{}
	if event == nil {
		return out
	}
	desc := strings.ToLower(event.Description)

	var prerequisites [][]string
	for _, d := range in.rules.Dependencies {
		if strings.Contains(desc, d.Pattern) {
			prerequisites = append(prerequisites, d.Prerequisites)
		}
	}
	if len(prerequisites) == 0 {
		return out
	}

	for _, other := range others {
		if other == nil || other.ID == event.ID || !other.Date.Before(event.Date) {
			continue
		}
		if matchesAny(strings.ToLower(other.Description), prerequisites) {
			out = appendUnique(out, other.ID)
		}
	}
	return out
}

func causedBy(desc string, lead, phrases []string) bool {
	if !config.ContainsAny(desc, phrases) {
		return false
	}
	return config.ContainsAny(desc, lead)
}

func matchesAny(desc string, groups [][]string) bool {
	for _, keywords := range groups {
		if config.ContainsAny(desc, keywords) {
			return true
		}
	}
	return false
}

func leadTokens(desc string, n int) []string {
	tokens := strings.Fields(desc)
	if len(tokens) > n {
		tokens = tokens[:n]
	}
	return tokens
}

func appendUnique(list []string, id string) []string {
	if slices.Contains(list, id) {
		return list
	}
	return append(list, id)
}
