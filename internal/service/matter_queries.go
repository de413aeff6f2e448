package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/repository"
	apperrors "github.com/spec-kit/escalation-service/pkg/util/errorutil"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Page selects a window of a listing. Page numbers start at 1.
type Page struct {
	Number int
	Size   int
}

func (p Page) normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = defaultPageSize
	}
	if p.Size > maxPageSize {
		p.Size = maxPageSize
	}
	return p
}

// MatterList is one page of matters plus the total across all pages.
type MatterList struct {
	Items []domain.Matter
	Total int
	Page  int
	Size  int
}

// MatterCounts summarizes the actor's listings.
type MatterCounts struct {
	ForYou     int
	RaisedByMe int
	Open       int
	Closed     int
}

// PersonRef is a user or student with a display name.
type PersonRef struct {
	ID    string
	Name  string
	Role  domain.Role
	Class string
}

// MatterDetail is the full view of one matter.
type MatterDetail struct {
	Matter           *domain.Matter
	Steps            []domain.Step
	Members          []PersonRef
	Students         []PersonRef
	Names            map[string]string
	Replayed         domain.ReplayedState
	ReplayConsistent bool
}

// MatterTimeline is the ordered step history and the state it implies.
type MatterTimeline struct {
	MatterID         string
	Steps            []domain.Step
	Replayed         domain.ReplayedState
	ReplayConsistent bool
	ReplayError      string
}

// ListForYou lists matters currently assigned to the actor that are not closed.
func (s *MatterService) ListForYou(ctx context.Context, actor domain.Actor, page Page) (*MatterList, error) {
	return s.list(ctx, s.forYouFilter(actor), page)
}

// ListRaisedByMe lists matters the actor created.
func (s *MatterService) ListRaisedByMe(ctx context.Context, actor domain.Actor, page Page) (*MatterList, error) {
	return s.list(ctx, s.raisedFilter(actor), page)
}

// ListOpen lists matters that are not closed. Non-managers only see matters
// they are involved in.
func (s *MatterService) ListOpen(ctx context.Context, actor domain.Actor, page Page) (*MatterList, error) {
	return s.list(ctx, s.openFilter(actor), page)
}

// ListClosed lists closed matters, scoped like ListOpen.
func (s *MatterService) ListClosed(ctx context.Context, actor domain.Actor, page Page) (*MatterList, error) {
	return s.list(ctx, s.closedFilter(actor), page)
}

// Counts returns the size of each listing.
func (s *MatterService) Counts(ctx context.Context, actor domain.Actor) (*MatterCounts, error) {
	var counts MatterCounts
	var err error
	if counts.ForYou, err = s.store.CountMatters(ctx, s.forYouFilter(actor)); err != nil {
		return nil, err
	}
	if counts.RaisedByMe, err = s.store.CountMatters(ctx, s.raisedFilter(actor)); err != nil {
		return nil, err
	}
	if counts.Open, err = s.store.CountMatters(ctx, s.openFilter(actor)); err != nil {
		return nil, err
	}
	if counts.Closed, err = s.store.CountMatters(ctx, s.closedFilter(actor)); err != nil {
		return nil, err
	}
	return &counts, nil
}

// GetDetail returns a matter with its steps, members and students. Matters the
// actor is not and never was part of are reported as not found.
func (s *MatterService) GetDetail(ctx context.Context, actor domain.Actor, matterID string) (*MatterDetail, error) {
	matter, err := s.visibleMatter(ctx, actor, matterID)
	if err != nil {
		return nil, err
	}

	steps, err := s.store.ListSteps(ctx, matter.ID)
	if err != nil {
		return nil, err
	}
	members, err := s.store.ListMembers(ctx, matter.ID)
	if err != nil {
		return nil, err
	}
	students, err := s.store.ListStudents(ctx, matter.ID)
	if err != nil {
		return nil, err
	}

	detail := &MatterDetail{Matter: matter, Steps: steps, Names: map[string]string{}}
	ids := []string{matter.CreatedByID}
	for _, ref := range []*string{matter.CurrentAssigneeID, matter.SuggestedLevel2ID} {
		if ref != nil {
			ids = append(ids, *ref)
		}
	}
	for _, step := range steps {
		ids = append(ids, step.FromUserID)
		if step.ToUserID != nil {
			ids = append(ids, *step.ToUserID)
		}
	}
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	users := s.lookupUsers(ctx, dedupe(ids))
	for id, user := range users {
		detail.Names[id] = user.Name
	}

	for _, m := range members {
		ref := PersonRef{ID: m.UserID, Name: m.UserID}
		if user, ok := users[m.UserID]; ok {
			ref.Name, ref.Role = user.Name, user.Role
		}
		detail.Members = append(detail.Members, ref)
	}
	for _, st := range students {
		ref := PersonRef{ID: st.StudentID, Name: st.StudentID}
		if student, err := s.directory.ResolveStudent(ctx, st.StudentID); err == nil {
			ref.Name, ref.Class = student.Name, student.Class
		}
		detail.Students = append(detail.Students, ref)
	}

	detail.Replayed, err = domain.Replay(steps)
	detail.ReplayConsistent = err == nil && detail.Replayed.Matches(matter)
	if !detail.ReplayConsistent {
		s.logger.Warn("matter history does not replay to its state", zap.String("matter_id", matter.ID), zap.Error(err))
	}
	return detail, nil
}

// Timeline returns the ordered step history with its replayed state.
func (s *MatterService) Timeline(ctx context.Context, actor domain.Actor, matterID string) (*MatterTimeline, error) {
	matter, err := s.visibleMatter(ctx, actor, matterID)
	if err != nil {
		return nil, err
	}
	steps, err := s.store.ListSteps(ctx, matter.ID)
	if err != nil {
		return nil, err
	}
	timeline := &MatterTimeline{MatterID: matter.ID, Steps: steps}
	timeline.Replayed, err = domain.Replay(steps)
	if err != nil {
		timeline.ReplayError = err.Error()
	}
	timeline.ReplayConsistent = err == nil && timeline.Replayed.Matches(matter)
	return timeline, nil
}

func (s *MatterService) visibleMatter(ctx context.Context, actor domain.Actor, matterID string) (*domain.Matter, error) {
	matter, err := s.store.GetMatter(ctx, matterID)
	if err != nil {
		return nil, notFoundOr(err, "matter", matterID)
	}
	if s.policy.IsManager(actor) {
		return matter, nil
	}
	involved, err := s.involved(ctx, s.store, matter, actor.UserID)
	if err != nil {
		return nil, err
	}
	if involved {
		return matter, nil
	}
	// former assignees keep read access through the history
	steps, err := s.store.ListSteps(ctx, matter.ID)
	if err != nil {
		return nil, err
	}
	for _, step := range steps {
		if step.FromUserID == actor.UserID || (step.ToUserID != nil && *step.ToUserID == actor.UserID) {
			return matter, nil
		}
	}
	return nil, apperrors.NewNotFound("matter", map[string]any{"id": matterID})
}

func (s *MatterService) lookupUsers(ctx context.Context, ids []string) map[string]*domain.User {
	users := make(map[string]*domain.User, len(ids))
	for _, id := range ids {
		user, err := s.directory.ResolveUser(ctx, id)
		if err != nil {
			continue
		}
		users[id] = user
	}
	return users
}

func (s *MatterService) list(ctx context.Context, filter repository.MatterFilter, page Page) (*MatterList, error) {
	page = page.normalize()
	filter.Limit = page.Size
	filter.Offset = (page.Number - 1) * page.Size

	items, err := s.store.ListMatters(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.store.CountMatters(ctx, filter)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Matter{}
	}
	return &MatterList{Items: items, Total: total, Page: page.Number, Size: page.Size}, nil
}

func (s *MatterService) forYouFilter(actor domain.Actor) repository.MatterFilter {
	id := actor.UserID
	return repository.MatterFilter{AssigneeID: &id, ExcludeStatuses: []domain.MatterStatus{domain.MatterStatusClosed}}
}

func (s *MatterService) raisedFilter(actor domain.Actor) repository.MatterFilter {
	id := actor.UserID
	return repository.MatterFilter{CreatedByID: &id}
}

func (s *MatterService) openFilter(actor domain.Actor) repository.MatterFilter {
	filter := repository.MatterFilter{ExcludeStatuses: []domain.MatterStatus{domain.MatterStatusClosed}}
	if !s.policy.IsManager(actor) {
		id := actor.UserID
		filter.InvolvedUserID = &id
	}
	return filter
}

func (s *MatterService) closedFilter(actor domain.Actor) repository.MatterFilter {
	filter := repository.MatterFilter{Statuses: []domain.MatterStatus{domain.MatterStatusClosed}}
	if !s.policy.IsManager(actor) {
		id := actor.UserID
		filter.InvolvedUserID = &id
	}
	return filter
}
