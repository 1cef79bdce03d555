package framework

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"casegraph/internal/config"
	"casegraph/internal/model"
	"casegraph/internal/store"
)

var (
	ErrEntityNotFound = errors.New("entity not found")
	ErrEventNotFound  = errors.New("event not found")
)

// MMO is the motive, means and opportunity assessment of one entity for
// one event.
type MMO struct {
	Agent       string   `json:"agent"`
	Event       string   `json:"event"`
	Motive      []string `json:"motive_indicators"`
	Means       []string `json:"means_available"`
	Opportunity []string `json:"opportunity_factors"`
	Risk        string   `json:"risk_assessment"`
}

// MotiveMeansOpportunity checks the entity's profile, roles, flows and
// relationships against the event. Role indicators are read as stored, so
// the result reflects the last Analyze run.
func (a *Analyzer) MotiveMeansOpportunity(st *store.Store, entityID, eventID string) (*MMO, error) {
	entity, ok := st.Entity(entityID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", entityID, ErrEntityNotFound)
	}
	event, ok := st.Event(eventID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", eventID, ErrEventNotFound)
	}

	mr := a.rules.MMO
	desc := strings.ToLower(event.Description)
	legal := config.ContainsAny(desc, mr.LegalKeywords)
	traits, hasProfile := entity.Traits()

	out := &MMO{
		Agent:       entity.ID,
		Event:       event.ID,
		Motive:      []string{},
		Means:       []string{},
		Opportunity: []string{},
	}

	if hasProfile {
		if traits.LegalAggression > mr.TraitThreshold {
			out.Motive = append(out.Motive, "High legal aggression level")
		}
		if traits.ControlSeeking > mr.TraitThreshold {
			out.Motive = append(out.Motive, "High control-seeking behavior")
		}
		if traits.EvidenceDismissal > mr.TraitThreshold && config.ContainsAny(desc, mr.EvidenceKeywords) {
			out.Motive = append(out.Motive, "Tendency to dismiss contradicting evidence")
		}
		for _, goal := range entity.Profile.Goals {
			out.Motive = append(out.Motive, "Strategic goal: "+goal)
		}
	}
	for _, key := range slices.Sorted(maps.Keys(entity.RoleIndicators)) {
		if score := entity.RoleIndicators[key]; score >= mr.RoleIndicator {
			out.Motive = append(out.Motive, fmt.Sprintf("Role indicator %s (%.2f)", key, score))
		}
	}

	if entity.Kind == model.KindOrganization {
		out.Means = append(out.Means, "Organizational resources")
	}
	var outgoing int
	var total float64
	for _, f := range st.Flows() {
		if f.Source == entity.ID && f.Kind == model.FlowFinancial {
			outgoing++
			total += f.Magnitude
		}
	}
	if outgoing > 0 {
		out.Means = append(out.Means, fmt.Sprintf("Financial resources: %d outgoing flows totalling %.2f", outgoing, total))
	}
	if hasProfile {
		rels := entity.Profile.State.Relationships
		for _, other := range slices.Sorted(maps.Keys(rels)) {
			if rels[other] >= mr.StrongRelationship {
				out.Means = append(out.Means, "Strong relationship with "+other)
			}
		}
		if traits.LegalAggression > mr.TraitThreshold && legal {
			out.Means = append(out.Means, "Capacity to pursue legal action")
		}
	}

	if event.HasParticipant(entity.ID) {
		out.Opportunity = append(out.Opportunity, "Direct involvement in event")
	}
	if hasProfile && traits.ControlSeeking > mr.TraitThreshold && legal {
		out.Opportunity = append(out.Opportunity, "Access to legal mechanisms")
	}
	window := time.Duration(mr.WindowHours) * time.Hour
	for _, other := range st.Events() {
		if other.ID == event.ID || !other.Involves(entity) {
			continue
		}
		if gap := other.Date.Sub(event.Date).Abs(); gap <= window {
			out.Opportunity = append(out.Opportunity, fmt.Sprintf("Involved in related event %s within %dh", other.ID, mr.WindowHours))
		}
	}

	out.Risk = mmoRisk(out)
	return out, nil
}

func mmoRisk(m *MMO) string {
	present := 0
	for _, list := range [][]string{m.Motive, m.Means, m.Opportunity} {
		if len(list) > 0 {
			present++
		}
	}
	switch {
	case present >= 2:
		return SeverityHigh
	case present == 1:
		return SeverityMedium
	default:
		return SeverityLow
	}
}
