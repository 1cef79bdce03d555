package store

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"casegraph/internal/model"
)

// SetRoleScores replaces every indicator under prefix with scores. Keys in
// scores are bare role names.
func (s *Store) SetRoleScores(entityID, prefix string, scores map[string]float64) error {
	e, ok := s.entities[entityID]
	if !ok {
		return fmt.Errorf("entity %s: %w", entityID, ErrNotFound)
	}
	next := make(map[string]float64, len(e.RoleIndicators)+len(scores))
	for key, value := range e.RoleIndicators {
		if !strings.HasPrefix(key, prefix) {
			next[key] = value
		}
	}
	for role, value := range scores {
		next[prefix+role] = value
	}
	e.RoleIndicators = next
	return nil
}

func (s *Store) SetTimelineSignificance(entityID string, scores map[string]float64) error {
	e, ok := s.entities[entityID]
	if !ok {
		return fmt.Errorf("entity %s: %w", entityID, ErrNotFound)
	}
	e.TimelineSignificance = maps.Clone(scores)
	return nil
}

func (s *Store) SetSignificance(eventID string, criminal, commercial float64, categories []string) error {
	e, ok := s.events[eventID]
	if !ok {
		return fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	e.CriminalSignificance = criminal
	e.CommercialSignificance = commercial
	e.LegalCategories = append([]string{}, categories...)
	return nil
}

// SetEventEdges replaces both edge lists of an event. Every referenced
// event must exist and must not be the event itself.
func (s *Store) SetEventEdges(eventID string, causal, temporal []string) error {
	e, ok := s.events[eventID]
	if !ok {
		return fmt.Errorf("event %s: %w", eventID, ErrNotFound)
	}
	for _, id := range slices.Concat(causal, temporal) {
		if id == eventID {
			return fmt.Errorf("event %s: %w", eventID, ErrSelfReference)
		}
		if _, ok := s.events[id]; !ok {
			return fmt.Errorf("event %s -> %s: %w", eventID, id, ErrDanglingEdge)
		}
	}
	e.CausalRelations = append([]string{}, causal...)
	e.TemporalDependencies = append([]string{}, temporal...)
	return nil
}

func (s *Store) SetFlowAssessment(flowID string, assessment model.FlowAssessment) error {
	f, ok := s.flows[flowID]
	if !ok {
		return fmt.Errorf("flow %s: %w", flowID, ErrNotFound)
	}
	f.Assessment = &assessment
	return nil
}
