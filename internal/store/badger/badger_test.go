package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casegraph/internal/behavior"
	"casegraph/internal/model"
	"casegraph/internal/store"
)

func sampleStore(t *testing.T) *store.Store {
	t.Helper()
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	profile := behavior.New(behavior.Traits{LegalAggression: 0.9, ControlSeeking: 0.95, EthicalCompliance: 0.3}, at)
	profile.AddGoal("Maintain control over financial resources")
	profile.UpdateState("court", behavior.StateChange{}, at.AddDate(0, 3, 9))

	st := store.New()
	require.NoError(t, st.AddEntity(&model.Entity{ID: "peter", Name: "Peter", Kind: model.KindPerson, Status: model.StatusVerified, Profile: profile}))
	require.NoError(t, st.AddEntity(&model.Entity{ID: "regima", Name: "RegimA", Kind: model.KindOrganization, Status: model.StatusPartial}))
	require.NoError(t, st.AddEvent(&model.Event{
		ID:           "court",
		Date:         at.AddDate(0, 3, 9),
		Description:  "Filed coercive court application",
		Participants: []string{"peter"},
		Status:       model.StatusSpeculative,
	}))
	require.NoError(t, st.AddEvent(&model.Event{
		ID:          "audit",
		Date:        at.AddDate(0, 1, 0),
		Description: "RegimA accounts audited",
		Status:      model.StatusVerified,
	}))
	require.NoError(t, st.AddFlow(&model.Flow{
		ID:        "f1",
		Kind:      model.FlowFinancial,
		Source:    "peter",
		Target:    "regima",
		Timestamp: at.AddDate(0, 1, 14),
		Magnitude: 250000,
		Assessment: &model.FlowAssessment{
			Category:   "financial",
			Legitimacy: 0.1,
			Impact:     "high",
		},
	}))
	return st
}

func openInMemory(t *testing.T) *Snapshots {
	t.Helper()
	snaps, err := Open(Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { snaps.Close() })
	return snaps
}

func TestSaveAndLoad(t *testing.T) {
	snaps := openInMemory(t)
	original := sampleStore(t).Snapshot("faucitt")

	require.NoError(t, snaps.Save(context.Background(), original))

	loaded, err := snaps.Load(context.Background(), "faucitt")
	require.NoError(t, err)

	restored, err := store.FromSnapshot(loaded)
	require.NoError(t, err)
	assert.Equal(t, original, restored.Snapshot("faucitt"))
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	snaps := openInMemory(t)
	ctx := context.Background()

	require.NoError(t, snaps.Save(ctx, sampleStore(t).Snapshot("faucitt")))

	smaller := store.New()
	require.NoError(t, smaller.AddEntity(&model.Entity{ID: "daniel", Name: "Daniel", Kind: model.KindPerson}))
	require.NoError(t, snaps.Save(ctx, smaller.Snapshot("faucitt")))

	loaded, err := snaps.Load(ctx, "faucitt")
	require.NoError(t, err)
	require.Len(t, loaded.Entities, 1)
	assert.Equal(t, "daniel", loaded.Entities[0].ID)
	assert.Empty(t, loaded.Events)
	assert.Empty(t, loaded.Flows)
}

func TestCasesAndDelete(t *testing.T) {
	snaps := openInMemory(t)
	ctx := context.Background()

	require.NoError(t, snaps.Save(ctx, sampleStore(t).Snapshot("alpha")))
	require.NoError(t, snaps.Save(ctx, sampleStore(t).Snapshot("beta")))

	cases, err := snaps.Cases()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, cases)

	require.NoError(t, snaps.Delete(ctx, "alpha"))
	_, err = snaps.Load(ctx, "alpha")
	assert.ErrorIs(t, err, ErrCaseNotFound)

	beta, err := snaps.Load(ctx, "beta")
	require.NoError(t, err)
	assert.Len(t, beta.Entities, 2)
}

func TestLoadUnknownCase(t *testing.T) {
	snaps := openInMemory(t)
	_, err := snaps.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCaseNotFound)
}

func TestSaveRejectsInvalidCaseID(t *testing.T) {
	snaps := openInMemory(t)
	assert.Error(t, snaps.Save(context.Background(), store.Snapshot{CaseID: ""}))
	assert.Error(t, snaps.Save(context.Background(), store.Snapshot{CaseID: "a/b"}))
}

func TestOpenWithPath(t *testing.T) {
	dir := t.TempDir()
	snaps, err := Open(Config{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	require.NoError(t, snaps.Save(context.Background(), sampleStore(t).Snapshot("faucitt")))
	require.NoError(t, snaps.Close())

	reopened, err := Open(Config{Path: dir})
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(context.Background(), "faucitt")
	require.NoError(t, err)
	assert.Len(t, loaded.Events, 2)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}
