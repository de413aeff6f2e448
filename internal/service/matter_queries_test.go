package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/escalation-service/internal/domain"
	apperrors "github.com/spec-kit/escalation-service/pkg/util/errorutil"
)

func TestDetailVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.create(t, func(in *CreateMatterInput) {
		in.InvolvedUserIDs = []string{memberID}
		in.InvolvedStudentIDs = []string{studentID}
	})
	_, err := f.svc.Escalate(ctx, f.actor(t, l1ID), EscalateInput{TransitionInput: TransitionInput{MatterID: m.ID}, L2AssigneeID: l2ID})
	require.NoError(t, err)

	_, err = f.svc.GetDetail(ctx, f.actor(t, outsiderID), m.ID)
	assertCode(t, err, apperrors.CodeNotFound)
	_, err = f.svc.Timeline(ctx, f.actor(t, outsiderID), m.ID)
	assertCode(t, err, apperrors.CodeNotFound)

	for _, id := range []string{creatorID, l1ID, l2ID, memberID, adminID} {
		detail, err := f.svc.GetDetail(ctx, f.actor(t, id), m.ID)
		require.NoError(t, err, "viewer %s", id)
		assert.Equal(t, m.ID, detail.Matter.ID)
	}

	detail, err := f.svc.GetDetail(ctx, f.actor(t, creatorID), m.ID)
	require.NoError(t, err)
	assert.True(t, detail.ReplayConsistent)
	assert.Equal(t, domain.MatterStatusEscalated, detail.Replayed.Status)
	require.Len(t, detail.Members, 1)
	assert.Equal(t, "Sam Staff", detail.Members[0].Name)
	require.Len(t, detail.Students, 1)
	assert.Equal(t, "7A", detail.Students[0].Class)
	assert.Equal(t, "Pat Principal", detail.Names[l2ID])
	assert.Len(t, detail.Steps, 2)

	_, err = f.svc.GetDetail(ctx, f.actor(t, adminID), "missing")
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestTimelineReplaysHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	m := f.create(t)
	_, err := f.svc.Hold(ctx, f.actor(t, l1ID), TransitionInput{MatterID: m.ID, Note: "parents away"})
	require.NoError(t, err)

	timeline, err := f.svc.Timeline(ctx, f.actor(t, creatorID), m.ID)
	require.NoError(t, err)
	assert.True(t, timeline.ReplayConsistent)
	assert.Empty(t, timeline.ReplayError)
	assert.Equal(t, domain.MatterStatusOnHold, timeline.Replayed.Status)
	assert.Len(t, timeline.Steps, 2)
}

func TestListingsAndCounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.create(t)
	second := f.create(t, func(in *CreateMatterInput) { in.Title = "Leaking roof" })
	f.create(t, func(in *CreateMatterInput) { in.Title = "Lost laptop"; in.L1AssigneeID = l2ID })
	_, err := f.svc.Close(ctx, f.actor(t, l1ID), TransitionInput{MatterID: second.ID, Note: "patched"})
	require.NoError(t, err)

	forYou, err := f.svc.ListForYou(ctx, f.actor(t, l1ID), Page{})
	require.NoError(t, err)
	require.Len(t, forYou.Items, 1)
	assert.Equal(t, first.ID, forYou.Items[0].ID)
	assert.Equal(t, 1, forYou.Page)
	assert.Equal(t, 20, forYou.Size)

	raised, err := f.svc.ListRaisedByMe(ctx, f.actor(t, creatorID), Page{Number: 1, Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, raised.Total)
	assert.Len(t, raised.Items, 2)

	closed, err := f.svc.ListClosed(ctx, f.actor(t, l1ID), Page{})
	require.NoError(t, err)
	require.Len(t, closed.Items, 1)
	assert.Equal(t, second.ID, closed.Items[0].ID)

	open, err := f.svc.ListOpen(ctx, f.actor(t, l1ID), Page{})
	require.NoError(t, err)
	assert.Equal(t, 1, open.Total, "third matter does not involve the L1 coordinator")

	adminOpen, err := f.svc.ListOpen(ctx, f.actor(t, adminID), Page{Size: 500})
	require.NoError(t, err)
	assert.Equal(t, 2, adminOpen.Total)
	assert.Equal(t, 100, adminOpen.Size)

	empty, err := f.svc.ListForYou(ctx, f.actor(t, outsiderID), Page{})
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Zero(t, empty.Total)

	counts, err := f.svc.Counts(ctx, f.actor(t, creatorID))
	require.NoError(t, err)
	assert.Equal(t, MatterCounts{ForYou: 0, RaisedByMe: 3, Open: 2, Closed: 1}, *counts)

	counts, err = f.svc.Counts(ctx, f.actor(t, l2ID))
	require.NoError(t, err)
	assert.Equal(t, 1, counts.ForYou)
}
