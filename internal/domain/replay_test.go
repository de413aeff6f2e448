package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkStep(action StepAction, note string) Step {
	return Step{Action: action, Note: StringPtr(note)}
}

func TestReplayFullLifecycle(t *testing.T) {
	steps := []Step{
		mkStep(StepActionCreated, ""),
		mkStep(StepActionProgress, "called parents"),
		mkStep(StepActionEscalate, "needs principal"),
		mkStep(StepActionProgress, HoldNote("waiting on report")),
		mkStep(StepActionClose, "resolved"),
	}
	state, err := Replay(steps)
	require.NoError(t, err)
	assert.Equal(t, MatterStatusClosed, state.Status)
	assert.Equal(t, LevelEscalated, state.Level)
	assert.Equal(t, 5, state.Steps)
}

func TestReplayHoldThenEscalate(t *testing.T) {
	state, err := Replay([]Step{
		mkStep(StepActionCreated, ""),
		mkStep(StepActionProgress, HoldNote("")),
		mkStep(StepActionEscalate, ""),
	})
	require.NoError(t, err)
	assert.Equal(t, MatterStatusEscalated, state.Status)
	assert.Equal(t, 2, state.Level)
}

func TestReplayProgressAfterCloseKeepsClosed(t *testing.T) {
	state, err := Replay([]Step{
		mkStep(StepActionCreated, ""),
		mkStep(StepActionClose, WithdrawNote("raised in error")),
		mkStep(StepActionProgress, "late note"),
	})
	require.NoError(t, err)
	assert.Equal(t, MatterStatusClosed, state.Status)
	assert.Equal(t, 1, state.Level)
}

func TestReplayRejectsInvalidHistories(t *testing.T) {
	cases := map[string][]Step{
		"missing created":  {mkStep(StepActionProgress, "x")},
		"double created":   {mkStep(StepActionCreated, ""), mkStep(StepActionCreated, "")},
		"double escalate":  {mkStep(StepActionCreated, ""), mkStep(StepActionEscalate, ""), mkStep(StepActionEscalate, "")},
		"close twice":      {mkStep(StepActionCreated, ""), mkStep(StepActionClose, "a"), mkStep(StepActionClose, "b")},
		"hold after close": {mkStep(StepActionCreated, ""), mkStep(StepActionClose, "a"), mkStep(StepActionProgress, HoldNote("x"))},
		"unknown action":   {mkStep(StepActionCreated, ""), mkStep(StepAction("REOPEN"), "")},
	}
	for name, steps := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Replay(steps)
			assert.Error(t, err)
		})
	}
}

func TestReplayedStateMatches(t *testing.T) {
	state := ReplayedState{Status: MatterStatusOnHold, Level: 2}
	assert.True(t, state.Matches(&Matter{Status: MatterStatusOnHold, Level: 2}))
	assert.False(t, state.Matches(&Matter{Status: MatterStatusOnHold, Level: 1}))
	assert.False(t, state.Matches(nil))
}

func TestSortStepsBreaksTiesBySeq(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	steps := []Step{
		{ID: "c", Seq: 3, CreatedAt: at},
		{ID: "a", Seq: 1, CreatedAt: at},
		{ID: "early", Seq: 9, CreatedAt: at.Add(-time.Minute)},
		{ID: "b", Seq: 2, CreatedAt: at},
	}
	SortSteps(steps)
	ids := []string{steps[0].ID, steps[1].ID, steps[2].ID, steps[3].ID}
	assert.Equal(t, []string{"early", "a", "b", "c"}, ids)
}
