package store

import (
	"fmt"

	"casegraph/internal/model"
)

// Snapshot is a detached, serializable copy of a store's contents.
type Snapshot struct {
	CaseID   string          `json:"case_id"`
	Entities []*model.Entity `json:"entities"`
	Events   []*model.Event  `json:"events"`
	Flows    []*model.Flow   `json:"flows"`
}

func (s *Store) Snapshot(caseID string) Snapshot {
	snap := Snapshot{CaseID: caseID}
	for _, e := range s.Entities() {
		snap.Entities = append(snap.Entities, e.Clone())
	}
	for _, e := range s.Events() {
		snap.Events = append(snap.Events, e.Clone())
	}
	for _, f := range s.Flows() {
		snap.Flows = append(snap.Flows, f.Clone())
	}
	return snap
}

func FromSnapshot(snap Snapshot) (*Store, error) {
	s := New()
	for _, e := range snap.Entities {
		if err := s.AddEntity(e.Clone()); err != nil {
			return nil, fmt.Errorf("restoring snapshot: %w", err)
		}
	}
	for _, e := range snap.Events {
		if err := s.AddEvent(e.Clone()); err != nil {
			return nil, fmt.Errorf("restoring snapshot: %w", err)
		}
	}
	for _, f := range snap.Flows {
		if err := s.AddFlow(f.Clone()); err != nil {
			return nil, fmt.Errorf("restoring snapshot: %w", err)
		}
	}
	return s, nil
}
