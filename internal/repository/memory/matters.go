// Package memory provides in-process implementations of the repository
// interfaces. They back the service when no database is configured and are
// used throughout the test suites.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/repository"
)

type matterState struct {
	matters  map[string]*domain.Matter
	steps    map[string][]domain.Step
	members  map[string][]domain.MatterMember
	students map[string][]domain.MatterStudent
	seq      int64
}

func newMatterState() *matterState {
	return &matterState{
		matters:  map[string]*domain.Matter{},
		steps:    map[string][]domain.Step{},
		members:  map[string][]domain.MatterMember{},
		students: map[string][]domain.MatterStudent{},
	}
}

func (s *matterState) clone() *matterState {
	cp := newMatterState()
	cp.seq = s.seq
	for id, m := range s.matters {
		cp.matters[id] = m.Clone()
	}
	for id, steps := range s.steps {
		cp.steps[id] = append([]domain.Step(nil), steps...)
	}
	for id, members := range s.members {
		cp.members[id] = append([]domain.MatterMember(nil), members...)
	}
	for id, students := range s.students {
		cp.students[id] = append([]domain.MatterStudent(nil), students...)
	}
	return cp
}

// MatterStore keeps matters in memory. Transactions run one at a time against a
// private copy that replaces the committed state only when fn succeeds.
type MatterStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	st   *matterState
	now  func() time.Time
}

// NewMatterStore returns an empty store.
func NewMatterStore() *MatterStore {
	return &MatterStore{st: newMatterState(), now: time.Now}
}

// SetClock replaces the clock used for timestamps.
func (s *MatterStore) SetClock(now func() time.Time) {
	s.now = now
}

func (s *MatterStore) WithinTx(ctx context.Context, fn func(tx repository.MatterTx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	work := s.st.clone()
	s.mu.RUnlock()

	if err := fn(&matterTx{st: work, now: s.now}); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = work
	s.mu.Unlock()
	return nil
}

func (s *MatterStore) read() *matterState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st
}

func (s *MatterStore) GetMatter(_ context.Context, id string) (*domain.Matter, error) {
	return s.read().getMatter(id)
}

func (s *MatterStore) ListMatters(_ context.Context, filter repository.MatterFilter) ([]domain.Matter, error) {
	return s.read().listMatters(filter), nil
}

func (s *MatterStore) CountMatters(_ context.Context, filter repository.MatterFilter) (int, error) {
	return len(s.read().filter(filter)), nil
}

func (s *MatterStore) ListSteps(_ context.Context, matterID string) ([]domain.Step, error) {
	return s.read().listSteps(matterID), nil
}

func (s *MatterStore) ListMembers(_ context.Context, matterID string) ([]domain.MatterMember, error) {
	return append([]domain.MatterMember(nil), s.read().members[matterID]...), nil
}

func (s *MatterStore) ListStudents(_ context.Context, matterID string) ([]domain.MatterStudent, error) {
	return append([]domain.MatterStudent(nil), s.read().students[matterID]...), nil
}

func (s *MatterStore) IsMember(_ context.Context, matterID, userID string) (bool, error) {
	return s.read().isMember(matterID, userID), nil
}

type matterTx struct {
	st  *matterState
	now func() time.Time
}

func (t *matterTx) GetMatter(_ context.Context, id string) (*domain.Matter, error) {
	return t.st.getMatter(id)
}

func (t *matterTx) ListMatters(_ context.Context, filter repository.MatterFilter) ([]domain.Matter, error) {
	return t.st.listMatters(filter), nil
}

func (t *matterTx) CountMatters(_ context.Context, filter repository.MatterFilter) (int, error) {
	return len(t.st.filter(filter)), nil
}

func (t *matterTx) ListSteps(_ context.Context, matterID string) ([]domain.Step, error) {
	return t.st.listSteps(matterID), nil
}

func (t *matterTx) ListMembers(_ context.Context, matterID string) ([]domain.MatterMember, error) {
	return append([]domain.MatterMember(nil), t.st.members[matterID]...), nil
}

func (t *matterTx) ListStudents(_ context.Context, matterID string) ([]domain.MatterStudent, error) {
	return append([]domain.MatterStudent(nil), t.st.students[matterID]...), nil
}

func (t *matterTx) IsMember(_ context.Context, matterID, userID string) (bool, error) {
	return t.st.isMember(matterID, userID), nil
}

func (t *matterTx) LockMatter(_ context.Context, id string) (*domain.Matter, error) {
	return t.st.getMatter(id)
}

func (t *matterTx) InsertMatter(_ context.Context, matter *domain.Matter) error {
	now := t.now()
	matter.ID = uuid.NewString()
	matter.Version = 1
	matter.CreatedAt = now
	matter.UpdatedAt = now
	t.st.matters[matter.ID] = matter.Clone()
	return nil
}

func (t *matterTx) UpdateMatter(_ context.Context, matter *domain.Matter) error {
	stored, ok := t.st.matters[matter.ID]
	if !ok || stored.Version != matter.Version {
		return repository.ErrStaleMatter
	}
	stored.Status = matter.Status
	stored.Level = matter.Level
	stored.CurrentAssigneeID = matter.CurrentAssigneeID
	stored.TicketID = matter.TicketID
	stored.Version++
	stored.UpdatedAt = t.now()

	matter.Version = stored.Version
	matter.UpdatedAt = stored.UpdatedAt
	return nil
}

func (t *matterTx) TouchMatter(_ context.Context, id string) error {
	stored, ok := t.st.matters[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.UpdatedAt = t.now()
	return nil
}

func (t *matterTx) AddMembers(_ context.Context, matterID string, userIDs []string) error {
	now := t.now()
	for _, userID := range userIDs {
		if t.st.isMember(matterID, userID) {
			continue
		}
		t.st.members[matterID] = append(t.st.members[matterID], domain.MatterMember{
			MatterID: matterID,
			UserID:   userID,
			AddedAt:  now,
		})
	}
	return nil
}

func (t *matterTx) AddStudents(_ context.Context, matterID string, studentIDs []string) error {
	now := t.now()
	for _, studentID := range studentIDs {
		exists := false
		for _, s := range t.st.students[matterID] {
			if s.StudentID == studentID {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		t.st.students[matterID] = append(t.st.students[matterID], domain.MatterStudent{
			MatterID:  matterID,
			StudentID: studentID,
			AddedAt:   now,
		})
	}
	return nil
}

func (t *matterTx) AppendStep(_ context.Context, step *domain.Step) error {
	if _, ok := t.st.matters[step.MatterID]; !ok {
		return pgx.ErrNoRows
	}
	t.st.seq++
	step.ID = uuid.NewString()
	step.Seq = t.st.seq
	step.CreatedAt = t.now()
	t.st.steps[step.MatterID] = append(t.st.steps[step.MatterID], *step)
	return nil
}

func (s *matterState) getMatter(id string) (*domain.Matter, error) {
	m, ok := s.matters[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return m.Clone(), nil
}

func (s *matterState) isMember(matterID, userID string) bool {
	for _, m := range s.members[matterID] {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

func (s *matterState) listSteps(matterID string) []domain.Step {
	steps := append([]domain.Step(nil), s.steps[matterID]...)
	domain.SortSteps(steps)
	return steps
}

func (s *matterState) filter(filter repository.MatterFilter) []*domain.Matter {
	var out []*domain.Matter
	for _, m := range s.matters {
		if filter.AssigneeID != nil && !m.IsAssignee(*filter.AssigneeID) {
			continue
		}
		if filter.CreatedByID != nil && !m.IsCreator(*filter.CreatedByID) {
			continue
		}
		if filter.InvolvedUserID != nil {
			uid := *filter.InvolvedUserID
			if !m.IsCreator(uid) && !m.IsAssignee(uid) && !s.isMember(m.ID, uid) {
				continue
			}
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, m.Status) {
			continue
		}
		if containsStatus(filter.ExcludeStatuses, m.Status) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (s *matterState) listMatters(filter repository.MatterFilter) []domain.Matter {
	matches := s.filter(filter)
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].UpdatedAt.Equal(matches[j].UpdatedAt) {
			return matches[i].UpdatedAt.After(matches[j].UpdatedAt)
		}
		return matches[i].ID < matches[j].ID
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matches) {
		return nil
	}
	end := offset + limit
	if end > len(matches) {
		end = len(matches)
	}

	out := make([]domain.Matter, 0, end-offset)
	for _, m := range matches[offset:end] {
		out = append(out, *m.Clone())
	}
	return out
}

func containsStatus(statuses []domain.MatterStatus, status domain.MatterStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
