package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/repository"
)

func insertMatter(t *testing.T, store *MatterStore, creator, assignee string) *domain.Matter {
	t.Helper()
	m := &domain.Matter{
		Title:             "Bullying report",
		Status:            domain.MatterStatusOpen,
		Level:             domain.LevelInitial,
		CreatedByID:       creator,
		CurrentAssigneeID: &assignee,
	}
	require.NoError(t, store.WithinTx(context.Background(), func(tx repository.MatterTx) error {
		return tx.InsertMatter(context.Background(), m)
	}))
	return m
}

func TestMatterStoreRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewMatterStore()
	m := insertMatter(t, store, "creator", "l1")

	boom := errors.New("boom")
	err := store.WithinTx(ctx, func(tx repository.MatterTx) error {
		locked, err := tx.LockMatter(ctx, m.ID)
		require.NoError(t, err)
		locked.Status = domain.MatterStatusClosed
		require.NoError(t, tx.UpdateMatter(ctx, locked))
		require.NoError(t, tx.AppendStep(ctx, &domain.Step{MatterID: m.ID, Level: 1, Action: domain.StepActionClose, FromUserID: "l1"}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := store.GetMatter(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatterStatusOpen, stored.Status)
	assert.Equal(t, 1, stored.Version)
	steps, err := store.ListSteps(ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, steps)
}

func TestMatterStoreVersionCheck(t *testing.T) {
	ctx := context.Background()
	store := NewMatterStore()
	m := insertMatter(t, store, "creator", "l1")

	stale := m.Clone()
	require.NoError(t, store.WithinTx(ctx, func(tx repository.MatterTx) error {
		return tx.UpdateMatter(ctx, m)
	}))
	assert.Equal(t, 2, m.Version)

	err := store.WithinTx(ctx, func(tx repository.MatterTx) error {
		return tx.UpdateMatter(ctx, stale)
	})
	assert.ErrorIs(t, err, repository.ErrStaleMatter)
}

func TestMatterStoreMissingRows(t *testing.T) {
	ctx := context.Background()
	store := NewMatterStore()
	_, err := store.GetMatter(ctx, "nope")
	assert.True(t, repository.IsNotFound(err))

	err = store.WithinTx(ctx, func(tx repository.MatterTx) error {
		return tx.TouchMatter(ctx, "nope")
	})
	assert.True(t, repository.IsNotFound(err))
}

func TestMatterStoreFiltersAndPaging(t *testing.T) {
	ctx := context.Background()
	store := NewMatterStore()
	clock := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	})

	a := insertMatter(t, store, "alice", "bob")
	b := insertMatter(t, store, "alice", "carol")
	c := insertMatter(t, store, "dave", "bob")
	require.NoError(t, store.WithinTx(ctx, func(tx repository.MatterTx) error {
		if err := tx.AddMembers(ctx, c.ID, []string{"erin", "erin"}); err != nil {
			return err
		}
		locked, err := tx.LockMatter(ctx, b.ID)
		if err != nil {
			return err
		}
		locked.Status = domain.MatterStatusClosed
		locked.CurrentAssigneeID = nil
		return tx.UpdateMatter(ctx, locked)
	}))

	bob := "bob"
	forBob, err := store.ListMatters(ctx, repository.MatterFilter{AssigneeID: &bob})
	require.NoError(t, err)
	require.Len(t, forBob, 2)
	assert.Equal(t, c.ID, forBob[0].ID, "most recently updated first")
	assert.Equal(t, a.ID, forBob[1].ID)

	erin := "erin"
	involved, err := store.ListMatters(ctx, repository.MatterFilter{InvolvedUserID: &erin})
	require.NoError(t, err)
	require.Len(t, involved, 1)
	assert.Equal(t, c.ID, involved[0].ID)

	members, err := store.ListMembers(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)

	open, err := store.CountMatters(ctx, repository.MatterFilter{ExcludeStatuses: []domain.MatterStatus{domain.MatterStatusClosed}})
	require.NoError(t, err)
	assert.Equal(t, 2, open)

	page, err := store.ListMatters(ctx, repository.MatterFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestMatterStoreStepsOrdered(t *testing.T) {
	ctx := context.Background()
	store := NewMatterStore()
	fixed := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return fixed })
	m := insertMatter(t, store, "alice", "bob")

	require.NoError(t, store.WithinTx(ctx, func(tx repository.MatterTx) error {
		for _, action := range []domain.StepAction{domain.StepActionCreated, domain.StepActionProgress, domain.StepActionClose} {
			if err := tx.AppendStep(ctx, &domain.Step{MatterID: m.ID, Level: 1, Action: action, FromUserID: "alice"}); err != nil {
				return err
			}
		}
		return nil
	}))

	steps, err := store.ListSteps(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.Equal(t, domain.StepActionCreated, steps[0].Action)
	assert.Equal(t, domain.StepActionClose, steps[2].Action)
	assert.Less(t, steps[0].Seq, steps[1].Seq)
}

func TestOverrideRepositoryScopes(t *testing.T) {
	ctx := context.Background()
	repo := NewOverrideRepository()
	matterID := "m1"

	grant := func(matter *string) *domain.DayCloseOverride {
		o := &domain.DayCloseOverride{UserID: "u1", MatterID: matter, Reason: "r", CreatedBy: "admin"}
		require.NoError(t, repo.WithinTx(ctx, func(tx repository.OverrideTx) error {
			if _, err := tx.DeactivateScope(ctx, "u1", matter, "admin", time.Now()); err != nil {
				return err
			}
			return tx.Insert(ctx, o)
		}))
		return o
	}

	first := grant(nil)
	grant(&matterID)
	grant(nil)

	all, err := repo.ListByUser(ctx, "u1", true)
	require.NoError(t, err)
	require.Len(t, all, 3)
	active, err := repo.ListByUser(ctx, "u1", false)
	require.NoError(t, err)
	assert.Len(t, active, 2, "general and matter scope stay independent")
	for _, o := range all {
		if o.ID == first.ID {
			assert.False(t, o.Active)
			require.NotNil(t, o.EndedBy)
			assert.Equal(t, "admin", *o.EndedBy)
		}
	}

	var ended int
	require.NoError(t, repo.WithinTx(ctx, func(tx repository.OverrideTx) error {
		var err error
		ended, err = tx.DeactivateAll(ctx, "u1", "admin", time.Now())
		return err
	}))
	assert.Equal(t, 2, ended)
	has, err := repo.HasActive(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestTicketStoreFailWith(t *testing.T) {
	ctx := context.Background()
	store := NewTicketStore()
	store.PutTicket("T-1", "open")

	status := domain.TicketStatusEscalated
	require.NoError(t, store.UpdateTicket(ctx, "T-1", domain.TicketPatch{Status: &status}))
	ticket, ok := store.Ticket("T-1")
	require.True(t, ok)
	assert.Equal(t, domain.TicketStatusEscalated, ticket.Status)

	store.FailWith = errors.New("ticket db down")
	assert.Error(t, store.AppendTicketActivity(ctx, "T-1", &domain.TicketActivity{}))
	assert.Empty(t, store.Activity("T-1"))

	store.FailWith = nil
	assert.True(t, repository.IsNotFound(store.UpdateTicket(ctx, "T-2", domain.TicketPatch{})))
}

func TestDirectoryLookup(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectory()
	dir.PutUser(domain.User{ID: "u1", Name: "Ann", Email: "Ann@School.test", Active: true})
	dir.PutStudent(domain.Student{ID: "s1", Name: "Sam", Class: "7A"})

	user, err := dir.GetByEmail(ctx, "ann@school.test")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	student, err := dir.ResolveStudent(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "7A", student.Class)

	_, err = dir.ResolveUser(ctx, "missing")
	assert.True(t, repository.IsNotFound(err))
}
