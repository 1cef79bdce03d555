package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casegraph/internal/behavior"
)

func TestDecide(t *testing.T) {
	_, rules := newAnalyzer(t)
	st := caseStore(t, rules)
	at := date("2025-04-11")

	ctx := behavior.NewContext("court", behavior.Signal{Kind: behavior.SignalChallenged})
	got, err := Decide(st, "peter", ctx, at)
	require.NoError(t, err)

	assert.Equal(t, "escalate through legal mechanisms", got.Action)
	assert.Equal(t, []string{"Applied rule: IF challenged THEN escalate through legal mechanisms"}, got.Reasoning)
	assert.Equal(t, "court", got.EventID)
	assert.Equal(t, at, got.At)

	peter, _ := st.Entity("peter")
	require.Len(t, peter.Profile.State.Decisions, 1)
	assert.Equal(t, got, peter.Profile.State.Decisions[0])
}

func TestDecideErrors(t *testing.T) {
	_, rules := newAnalyzer(t)
	st := caseStore(t, rules)
	at := date("2025-04-11")

	_, err := Decide(st, "nobody", behavior.Context{}, at)
	assert.ErrorIs(t, err, ErrEntityNotFound)

	_, err = Decide(st, "daniel", behavior.Context{}, at)
	assert.ErrorIs(t, err, ErrNoProfile)

	_, err = Decide(st, "peter", behavior.NewContext("missing"), at)
	assert.ErrorIs(t, err, ErrEventNotFound)
}
