package store

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"casegraph/internal/model"
)

var (
	ErrDuplicateID   = errors.New("duplicate identifier")
	ErrNotFound      = errors.New("record not found")
	ErrMissingID     = errors.New("record has no identifier")
	ErrDanglingEdge  = errors.New("edge references unknown event")
	ErrSelfReference = errors.New("event references itself")
)

// Store holds the entities, events and flows of one case. It has a single
// owner: callers that fan out work must funnel writes back through one
// goroutine.
type Store struct {
	entities map[string]*model.Entity
	events   map[string]*model.Event
	flows    map[string]*model.Flow
}

func New() *Store {
	return &Store{
		entities: make(map[string]*model.Entity),
		events:   make(map[string]*model.Event),
		flows:    make(map[string]*model.Flow),
	}
}

func (s *Store) AddEntity(e *model.Entity) error {
	if e == nil || strings.TrimSpace(e.ID) == "" {
		return ErrMissingID
	}
	if _, exists := s.entities[e.ID]; exists {
		return fmt.Errorf("entity %s: %w", e.ID, ErrDuplicateID)
	}
	s.entities[e.ID] = e
	return nil
}

func (s *Store) AddEvent(e *model.Event) error {
	if e == nil || strings.TrimSpace(e.ID) == "" {
		return ErrMissingID
	}
	if _, exists := s.events[e.ID]; exists {
		return fmt.Errorf("event %s: %w", e.ID, ErrDuplicateID)
	}
	s.events[e.ID] = e
	return nil
}

func (s *Store) AddFlow(f *model.Flow) error {
	if f == nil || strings.TrimSpace(f.ID) == "" {
		return ErrMissingID
	}
	if _, exists := s.flows[f.ID]; exists {
		return fmt.Errorf("flow %s: %w", f.ID, ErrDuplicateID)
	}
	s.flows[f.ID] = f
	return nil
}

func (s *Store) Entity(id string) (*model.Entity, bool) {
	e, ok := s.entities[id]
	return e, ok
}

func (s *Store) Event(id string) (*model.Event, bool) {
	e, ok := s.events[id]
	return e, ok
}

func (s *Store) Flow(id string) (*model.Flow, bool) {
	f, ok := s.flows[id]
	return f, ok
}

// Entities returns every entity ordered by identifier.
func (s *Store) Entities() []*model.Entity {
	out := slices.Collect(maps.Values(s.entities))
	slices.SortFunc(out, func(a, b *model.Entity) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Events returns every event ordered by date, then identifier.
func (s *Store) Events() []*model.Event {
	out := slices.Collect(maps.Values(s.events))
	slices.SortFunc(out, func(a, b *model.Event) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Flows returns every flow ordered by identifier.
func (s *Store) Flows() []*model.Flow {
	out := slices.Collect(maps.Values(s.flows))
	slices.SortFunc(out, func(a, b *model.Flow) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

type Counts struct {
	Entities int `json:"entities"`
	Events   int `json:"events"`
	Flows    int `json:"flows"`
}

func (s *Store) Counts() Counts {
	return Counts{Entities: len(s.entities), Events: len(s.events), Flows: len(s.flows)}
}
