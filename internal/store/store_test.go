package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casegraph/internal/model"
)

func day(n int) time.Time {
	return time.Date(2025, 1, n, 0, 0, 0, 0, time.UTC)
}

func seeded(t *testing.T) *Store {
	t.Helper()
	s := New()
	require.NoError(t, s.AddEntity(&model.Entity{ID: "peter", Name: "Peter"}))
	require.NoError(t, s.AddEntity(&model.Entity{ID: "daniel", Name: "Daniel"}))
	require.NoError(t, s.AddEvent(&model.Event{ID: "b", Date: day(2)}))
	require.NoError(t, s.AddEvent(&model.Event{ID: "a", Date: day(2)}))
	require.NoError(t, s.AddEvent(&model.Event{ID: "c", Date: day(1)}))
	require.NoError(t, s.AddFlow(&model.Flow{ID: "f1", Source: "peter", Target: "daniel"}))
	return s
}

func TestAddRejectsDuplicates(t *testing.T) {
	s := seeded(t)

	assert.ErrorIs(t, s.AddEntity(&model.Entity{ID: "peter"}), ErrDuplicateID)
	assert.ErrorIs(t, s.AddEvent(&model.Event{ID: "a"}), ErrDuplicateID)
	assert.ErrorIs(t, s.AddFlow(&model.Flow{ID: "f1"}), ErrDuplicateID)
	assert.ErrorIs(t, s.AddEntity(&model.Entity{ID: " "}), ErrMissingID)
	assert.Equal(t, Counts{Entities: 2, Events: 3, Flows: 1}, s.Counts())
}

func TestDeterministicOrder(t *testing.T) {
	s := seeded(t)

	var ids []string
	for _, e := range s.Events() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)

	entities := s.Entities()
	assert.Equal(t, "daniel", entities[0].ID)
}

func TestSetRoleScoresReplaces(t *testing.T) {
	s := seeded(t)

	require.NoError(t, s.SetRoleScores("peter", model.CriminalPrefix, map[string]float64{"victim": 0.3, "witness": 0.2}))
	require.NoError(t, s.SetRoleScores("peter", model.CommercialPrefix, map[string]float64{"debtor": 0.6}))
	require.NoError(t, s.SetRoleScores("peter", model.CriminalPrefix, map[string]float64{"victim": 0.3}))

	e, _ := s.Entity("peter")
	assert.Equal(t, map[string]float64{"criminal_victim": 0.3, "commercial_debtor": 0.6}, e.RoleIndicators)
	assert.ErrorIs(t, s.SetRoleScores("nobody", model.CriminalPrefix, nil), ErrNotFound)
}

func TestSetEventEdges(t *testing.T) {
	s := seeded(t)

	require.NoError(t, s.SetEventEdges("c", []string{"a", "b"}, nil))
	e, _ := s.Event("c")
	assert.Equal(t, []string{"a", "b"}, e.CausalRelations)
	assert.Equal(t, []string{}, e.TemporalDependencies)

	assert.ErrorIs(t, s.SetEventEdges("c", []string{"zzz"}, nil), ErrDanglingEdge)
	assert.ErrorIs(t, s.SetEventEdges("c", nil, []string{"c"}), ErrSelfReference)
	assert.Equal(t, []string{"a", "b"}, e.CausalRelations)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := seeded(t)
	require.NoError(t, s.SetSignificance("a", 0.4, 0, []string{model.CategoryCriminal}))

	snap := s.Snapshot("case-1")
	restored, err := FromSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, s.Counts(), restored.Counts())

	a, _ := restored.Event("a")
	assert.Equal(t, 0.4, a.CriminalSignificance)

	a.Description = "mutated"
	orig, _ := s.Event("a")
	assert.Empty(t, orig.Description)
}
