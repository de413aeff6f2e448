package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/events"
	"github.com/spec-kit/escalation-service/internal/observability"
	"github.com/spec-kit/escalation-service/internal/repository"
	apperrors "github.com/spec-kit/escalation-service/pkg/util/errorutil"
)

const (
	titleMinLength       = 3
	titleMaxLength       = 200
	descriptionMaxLength = 4000
	noteMaxLength        = 2000
	maxInvolved          = 50
)

// LifecycleNotifier queues lifecycle notifications for asynchronous delivery.
type LifecycleNotifier interface {
	Notify(ctx context.Context, event events.Event) error
}

// MatterService is the escalation lifecycle engine. Every mutation locks the
// matter, validates the transition and commits the new state together with
// its audit step. Ticket mirroring and notifications run after commit.
type MatterService struct {
	store      repository.MatterStore
	directory  repository.Directory
	tickets    repository.TicketTarget
	policy     *Policy
	audit      *AuditLogWriter
	mirror     *TicketMirror
	dispatcher *NotificationDispatcher
	notifier   LifecycleNotifier
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        func() time.Time
}

// MatterDependencies bundles collaborators for the matter service.
type MatterDependencies struct {
	Store      repository.MatterStore
	Directory  repository.Directory
	Tickets    repository.TicketTarget
	Policy     *Policy
	Mirror     *TicketMirror
	Dispatcher *NotificationDispatcher
	Notifier   LifecycleNotifier
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

// NewMatterService constructs the service.
func NewMatterService(deps MatterDependencies) *MatterService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatterService{
		store:      deps.Store,
		directory:  deps.Directory,
		tickets:    deps.Tickets,
		policy:     deps.Policy,
		audit:      NewAuditLogWriter(),
		mirror:     deps.Mirror,
		dispatcher: deps.Dispatcher,
		notifier:   deps.Notifier,
		logger:     logger,
		metrics:    deps.Metrics,
		now:        time.Now,
	}
}

// CreateMatterInput describes a new escalation.
type CreateMatterInput struct {
	Title              string
	Description        string
	L1AssigneeID       string
	SuggestedLevel2ID  string
	InvolvedUserIDs    []string
	InvolvedStudentIDs []string
	TicketID           string
}

// TransitionInput is shared by hold, withdraw, close and progress.
type TransitionInput struct {
	MatterID string
	Note     string
	// ExpectedVersion, when set, must equal the stored version.
	ExpectedVersion *int
}

// EscalateInput moves a matter to level 2. An empty L2AssigneeID falls back
// to the matter's suggested level 2 user.
type EscalateInput struct {
	TransitionInput
	L2AssigneeID string
}

// RemindInput sends a reminder to involved users.
type RemindInput struct {
	MatterID  string
	MemberIDs []string
	Note      string
}

// LinkTicketInput links a matter to an external ticket.
type LinkTicketInput struct {
	MatterID        string
	TicketID        string
	ExpectedVersion *int
}

// MatterResult is returned by every accepted mutation.
type MatterResult struct {
	Matter   *domain.Matter
	StepID   string
	Notified []string
	Warnings []string
}

// RemindResult reports a reminder fan-out.
type RemindResult struct {
	Matter    *domain.Matter
	StepIDs   []string
	SentCount int
	Results   []domain.DeliveryResult
	Warnings  []string
}

// CreateMatter raises a new matter at level 1 assigned to the L1 assignee.
func (s *MatterService) CreateMatter(ctx context.Context, actor domain.Actor, input CreateMatterInput) (*MatterResult, error) {
	if !s.policy.Can(actor, domain.CapRaiseEscalations) {
		return nil, apperrors.NewForbidden("role cannot raise escalations")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	assigneeID := strings.TrimSpace(input.L1AssigneeID)
	if n := utf8.RuneCountInString(title); n < titleMinLength || n > titleMaxLength {
		return nil, apperrors.NewValidationError("title must be between 3 and 200 characters", map[string]any{"field": "title"})
	}
	if utf8.RuneCountInString(description) > descriptionMaxLength {
		return nil, apperrors.NewValidationError("description too long", map[string]any{"field": "description"})
	}
	if assigneeID == "" {
		return nil, apperrors.NewValidationError("l1 assignee is required", map[string]any{"field": "l1AssigneeId"})
	}
	memberIDs := dedupe(input.InvolvedUserIDs, actor.UserID, assigneeID)
	studentIDs := dedupe(input.InvolvedStudentIDs)
	if len(memberIDs) > maxInvolved || len(studentIDs) > maxInvolved {
		return nil, apperrors.NewValidationError("too many involved users or students", map[string]any{"max": maxInvolved})
	}

	if _, err := s.resolveTarget(ctx, assigneeID, domain.CapHandleEscalations, "l1AssigneeId"); err != nil {
		return nil, err
	}
	suggestedID := strings.TrimSpace(input.SuggestedLevel2ID)
	if suggestedID != "" {
		if _, err := s.resolveTarget(ctx, suggestedID, domain.CapRespondEscalations, "suggestedLevel2Id"); err != nil {
			return nil, err
		}
	}
	for _, id := range memberIDs {
		if _, err := s.resolveUser(ctx, id); err != nil {
			return nil, err
		}
	}
	for _, id := range studentIDs {
		if _, err := s.directory.ResolveStudent(ctx, id); err != nil {
			if repository.IsNotFound(err) {
				return nil, apperrors.NewNotFound("student", map[string]any{"studentId": id})
			}
			return nil, err
		}
	}
	ticketID := strings.TrimSpace(input.TicketID)
	if ticketID != "" {
		if err := s.ensureTicket(ctx, ticketID); err != nil {
			return nil, err
		}
	}

	matter := &domain.Matter{
		Title:             title,
		Description:       domain.StringPtr(description),
		Status:            domain.MatterStatusOpen,
		Level:             domain.LevelInitial,
		CreatedByID:       actor.UserID,
		CurrentAssigneeID: &assigneeID,
		SuggestedLevel2ID: domain.StringPtr(suggestedID),
		TicketID:          domain.StringPtr(ticketID),
	}

	var stepID string
	err := s.store.WithinTx(ctx, func(tx repository.MatterTx) error {
		if err := tx.InsertMatter(ctx, matter); err != nil {
			return err
		}
		if err := tx.AddMembers(ctx, matter.ID, memberIDs); err != nil {
			return err
		}
		if err := tx.AddStudents(ctx, matter.ID, studentIDs); err != nil {
			return err
		}
		var err error
		stepID, err = s.audit.Append(ctx, tx, StepEntry{
			MatterID:   matter.ID,
			Level:      domain.LevelInitial,
			Action:     domain.StepActionCreated,
			FromUserID: actor.UserID,
			ToUserID:   &assigneeID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	result := &MatterResult{Matter: matter, StepID: stepID}
	s.afterCommit(ctx, actor, matter, domain.IntentCreate, description, result,
		events.EventMatterCreated, []string{assigneeID})
	return result, nil
}

// Escalate moves a level 1 matter to level 2 under a responder.
func (s *MatterService) Escalate(ctx context.Context, actor domain.Actor, input EscalateInput) (*MatterResult, error) {
	note, err := cleanNote(input.Note, false)
	if err != nil {
		return nil, err
	}

	targetID := strings.TrimSpace(input.L2AssigneeID)
	var creatorID string
	result, err := s.transition(ctx, actor, input.MatterID, input.ExpectedVersion, domain.IntentEscalate,
		func(m *domain.Matter) StepEntry {
			creatorID = m.CreatedByID
			if targetID == "" && m.SuggestedLevel2ID != nil {
				targetID = *m.SuggestedLevel2ID
			}
			m.CurrentAssigneeID = &targetID
			return StepEntry{ToUserID: &targetID, Note: note}
		}, func(m *domain.Matter) error {
			if targetID == "" {
				return apperrors.NewValidationError("l2 assignee is required", map[string]any{"field": "l2AssigneeId"})
			}
			_, err := s.resolveTarget(ctx, targetID, domain.CapRespondEscalations, "l2AssigneeId")
			return err
		})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, actor, result.Matter, domain.IntentEscalate, note, result,
		events.EventMatterEscalated, []string{targetID, creatorID})
	return result, nil
}

// Hold parks a matter. The note is optional.
func (s *MatterService) Hold(ctx context.Context, actor domain.Actor, input TransitionInput) (*MatterResult, error) {
	note, err := cleanNote(input.Note, false)
	if err != nil {
		return nil, err
	}
	result, err := s.transition(ctx, actor, input.MatterID, input.ExpectedVersion, domain.IntentHold,
		func(m *domain.Matter) StepEntry {
			return StepEntry{ToUserID: m.CurrentAssigneeID, Note: domain.HoldNote(note)}
		})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, actor, result.Matter, domain.IntentHold, note, result,
		events.EventMatterHeld, []string{result.Matter.CreatedByID})
	return result, nil
}

// Withdraw closes a matter on behalf of its creator.
func (s *MatterService) Withdraw(ctx context.Context, actor domain.Actor, input TransitionInput) (*MatterResult, error) {
	note, err := cleanNote(input.Note, true)
	if err != nil {
		return nil, err
	}
	var formerAssignee string
	result, err := s.transition(ctx, actor, input.MatterID, input.ExpectedVersion, domain.IntentWithdraw,
		func(m *domain.Matter) StepEntry {
			former := m.CurrentAssigneeID
			if former != nil {
				formerAssignee = *former
			}
			m.CurrentAssigneeID = nil
			return StepEntry{ToUserID: former, Note: domain.WithdrawNote(note)}
		})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, actor, result.Matter, domain.IntentWithdraw, note, result,
		events.EventMatterWithdrawn, []string{result.Matter.CreatedByID, formerAssignee})
	return result, nil
}

// Close resolves a matter. A closing note is required.
func (s *MatterService) Close(ctx context.Context, actor domain.Actor, input TransitionInput) (*MatterResult, error) {
	note, err := cleanNote(input.Note, true)
	if err != nil {
		return nil, err
	}
	var formerAssignee string
	result, err := s.transition(ctx, actor, input.MatterID, input.ExpectedVersion, domain.IntentClose,
		func(m *domain.Matter) StepEntry {
			former := m.CurrentAssigneeID
			if former != nil {
				formerAssignee = *former
			}
			m.CurrentAssigneeID = nil
			return StepEntry{ToUserID: former, Note: note}
		})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, actor, result.Matter, domain.IntentClose, note, result,
		events.EventMatterClosed, []string{result.Matter.CreatedByID, formerAssignee})
	return result, nil
}

// Progress appends a note without changing status or level.
func (s *MatterService) Progress(ctx context.Context, actor domain.Actor, input TransitionInput) (*MatterResult, error) {
	note, err := cleanNote(input.Note, true)
	if err != nil {
		return nil, err
	}
	result, err := s.transition(ctx, actor, input.MatterID, input.ExpectedVersion, domain.IntentProgress,
		func(m *domain.Matter) StepEntry {
			return StepEntry{ToUserID: m.CurrentAssigneeID, Note: note}
		})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, actor, result.Matter, domain.IntentProgress, note, result, "", nil)
	return result, nil
}

// LinkTicket attaches an external ticket to the matter.
func (s *MatterService) LinkTicket(ctx context.Context, actor domain.Actor, input LinkTicketInput) (*MatterResult, error) {
	ticketID := strings.TrimSpace(input.TicketID)
	if ticketID == "" {
		return nil, apperrors.NewValidationError("ticket id is required", map[string]any{"field": "ticketId"})
	}
	if err := s.ensureTicket(ctx, ticketID); err != nil {
		return nil, err
	}

	var sameTicket bool
	result, err := s.transition(ctx, actor, input.MatterID, input.ExpectedVersion, domain.IntentLinkTicket,
		func(m *domain.Matter) StepEntry {
			sameTicket = m.TicketID != nil && *m.TicketID == ticketID
			m.TicketID = &ticketID
			return StepEntry{ToUserID: m.CurrentAssigneeID, Note: domain.TicketLinkNote(ticketID)}
		}, func(m *domain.Matter) error {
			if sameTicket {
				return apperrors.NewValidationError("matter already linked to this ticket", map[string]any{"ticketId": ticketID})
			}
			return nil
		})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, actor, result.Matter, domain.IntentLinkTicket, "", result, "", nil)
	return result, nil
}

// RemindMembers records one reminder step per recipient, then delivers the
// reminders. Steps are kept whatever the delivery outcome.
func (s *MatterService) RemindMembers(ctx context.Context, actor domain.Actor, input RemindInput) (*RemindResult, error) {
	if !s.policy.Can(actor, domain.CapRaiseEscalations) {
		return nil, apperrors.NewForbidden("role cannot send reminders")
	}
	recipientIDs := dedupe(input.MemberIDs)
	if len(recipientIDs) == 0 {
		return nil, apperrors.NewValidationError("at least one recipient is required", map[string]any{"field": "memberIds"})
	}
	if len(recipientIDs) > maxInvolved {
		return nil, apperrors.NewValidationError("too many recipients", map[string]any{"max": maxInvolved})
	}
	note, err := cleanNote(input.Note, false)
	if err != nil {
		return nil, err
	}

	recipients := make(map[string]*domain.User, len(recipientIDs))
	for _, id := range recipientIDs {
		user, err := s.resolveUser(ctx, id)
		if err != nil {
			return nil, err
		}
		recipients[id] = user
	}

	result := &RemindResult{}
	err = s.store.WithinTx(ctx, func(tx repository.MatterTx) error {
		matter, err := tx.LockMatter(ctx, input.MatterID)
		if err != nil {
			return notFoundOr(err, "matter", input.MatterID)
		}
		if matter.Status.IsTerminal() {
			return apperrors.NewValidationError("cannot send reminders on a closed matter", map[string]any{"matterId": matter.ID})
		}
		for _, id := range recipientIDs {
			involved, err := s.involved(ctx, tx, matter, id)
			if err != nil {
				return err
			}
			if !involved {
				return apperrors.NewValidationError("recipient is not involved in this matter", map[string]any{"recipientId": id})
			}
		}
		for _, id := range recipientIDs {
			to := id
			stepID, err := s.audit.Append(ctx, tx, StepEntry{
				MatterID:   matter.ID,
				Level:      matter.Level,
				Action:     domain.StepActionProgress,
				FromUserID: actor.UserID,
				ToUserID:   &to,
				Note:       domain.ReminderNote(recipients[id].Name, note),
			})
			if err != nil {
				return err
			}
			result.StepIDs = append(result.StepIDs, stepID)
		}
		if err := tx.TouchMatter(ctx, matter.ID); err != nil {
			return err
		}
		result.Matter, err = tx.GetMatter(ctx, matter.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTransition(string(domain.IntentRemind))
	names := make([]string, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		names = append(names, recipients[id].Name)
	}
	comment := domain.ReminderNote(strings.Join(names, ", "), note)
	if err := s.mirror.Sync(ctx, result.Matter, domain.IntentProgress, actor.UserID, comment); err != nil {
		result.Warnings = append(result.Warnings, "ticket mirror: "+err.Error())
	}
	msg := domain.OutboundMessage{
		Subject: "Reminder: " + result.Matter.Title,
		Body:    reminderBody(actor, result.Matter, note),
		Meta:    map[string]string{"matterId": result.Matter.ID, "kind": "reminder"},
	}
	if s.dispatcher != nil {
		result.Results = s.dispatcher.Deliver(ctx, recipientIDs, msg, DeliveryOptions{Kind: "reminder", MatterID: result.Matter.ID})
	} else {
		for _, id := range recipientIDs {
			result.Results = append(result.Results, domain.DeliveryResult{
				RecipientID: id,
				Channel:     "none",
				Status:      domain.DeliveryFailed,
				Error:       domain.DeliveryErrChannelUnconfigured,
			})
		}
	}
	for _, r := range result.Results {
		if r.Status == domain.DeliverySent {
			result.SentCount++
		}
	}

	s.logger.Info("reminders sent",
		zap.String("matter_id", result.Matter.ID),
		zap.String("actor_id", actor.UserID),
		zap.Int("recipients", len(recipientIDs)),
		zap.Int("sent", result.SentCount))
	return result, nil
}

// transition runs the shared read-validate-write cycle for one matter. apply
// mutates the locked matter and returns the step to record; checks run after
// apply and before the write.
func (s *MatterService) transition(
	ctx context.Context,
	actor domain.Actor,
	matterID string,
	expectedVersion *int,
	intent domain.Intent,
	apply func(m *domain.Matter) StepEntry,
	checks ...func(m *domain.Matter) error,
) (*MatterResult, error) {
	result := &MatterResult{}
	err := s.store.WithinTx(ctx, func(tx repository.MatterTx) error {
		matter, err := tx.LockMatter(ctx, matterID)
		if err != nil {
			return notFoundOr(err, "matter", matterID)
		}
		if expectedVersion != nil && *expectedVersion != matter.Version {
			return apperrors.NewInvalidState("matter was modified concurrently", map[string]any{
				"expectedVersion": *expectedVersion,
				"currentVersion":  matter.Version,
			})
		}

		status, level, err := domain.NextState(matter.Status, matter.Level, intent)
		switch {
		case errors.Is(err, domain.ErrAlreadyClosed):
			return apperrors.NewAlreadyClosed(map[string]any{"matterId": matter.ID})
		case err != nil:
			return apperrors.NewInvalidState(
				fmt.Sprintf("cannot %s a matter that is %s at level %d", strings.ToLower(string(intent)), matter.Status, matter.Level),
				map[string]any{"matterId": matter.ID, "status": matter.Status, "level": matter.Level})
		}

		if err := s.authorize(ctx, tx, actor, matter, intent); err != nil {
			return err
		}

		entry := apply(matter)
		for _, check := range checks {
			if err := check(matter); err != nil {
				return err
			}
		}
		entry.MatterID = matter.ID
		entry.FromUserID = actor.UserID
		entry.Action = domain.StepActionFor(intent)
		entry.Level = level

		changed := status != matter.Status || level != matter.Level || intent == domain.IntentEscalate ||
			intent == domain.IntentWithdraw || intent == domain.IntentClose || intent == domain.IntentLinkTicket
		matter.Status, matter.Level = status, level
		if changed {
			if err := tx.UpdateMatter(ctx, matter); err != nil {
				if errors.Is(err, repository.ErrStaleMatter) {
					return apperrors.NewInvalidState("matter was modified concurrently", map[string]any{"matterId": matter.ID})
				}
				return err
			}
		} else if err := tx.TouchMatter(ctx, matter.ID); err != nil {
			return err
		}

		result.StepID, err = s.audit.Append(ctx, tx, entry)
		if err != nil {
			return err
		}
		result.Matter, err = tx.GetMatter(ctx, matter.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// authorize applies the per-intent actor rules. Managers may act on any matter.
func (s *MatterService) authorize(ctx context.Context, tx repository.MatterReader, actor domain.Actor, matter *domain.Matter, intent domain.Intent) error {
	if s.policy.IsManager(actor) {
		return nil
	}
	switch intent {
	case domain.IntentEscalate, domain.IntentHold, domain.IntentClose:
		if matter.IsAssignee(actor.UserID) {
			return nil
		}
		return apperrors.NewForbidden("only the current assignee can " + strings.ToLower(string(intent)) + " this matter")
	case domain.IntentWithdraw:
		if matter.IsCreator(actor.UserID) {
			return nil
		}
		return apperrors.NewForbidden("only the creator can withdraw this matter")
	case domain.IntentLinkTicket:
		if matter.IsCreator(actor.UserID) || matter.IsAssignee(actor.UserID) {
			return nil
		}
		return apperrors.NewForbidden("only the creator or assignee can link a ticket")
	case domain.IntentProgress:
		involved, err := s.involved(ctx, tx, matter, actor.UserID)
		if err != nil {
			return err
		}
		if involved {
			return nil
		}
		return apperrors.NewForbidden("only involved users can add progress notes")
	}
	return apperrors.NewForbidden("action not permitted")
}

func (s *MatterService) involved(ctx context.Context, reader repository.MatterReader, matter *domain.Matter, userID string) (bool, error) {
	if matter.IsCreator(userID) || matter.IsAssignee(userID) {
		return true, nil
	}
	return reader.IsMember(ctx, matter.ID, userID)
}

// afterCommit runs the side effects of a committed transition. None of them
// can fail the operation.
func (s *MatterService) afterCommit(
	ctx context.Context,
	actor domain.Actor,
	matter *domain.Matter,
	intent domain.Intent,
	note string,
	result *MatterResult,
	eventType events.EventType,
	recipients []string,
) {
	s.metrics.RecordTransition(string(intent))
	s.logger.Info("matter transition",
		zap.String("matter_id", matter.ID),
		zap.String("intent", string(intent)),
		zap.String("actor_id", actor.UserID),
		zap.String("status", string(matter.Status)),
		zap.Int("level", matter.Level),
		zap.Int("version", matter.Version))

	if err := s.mirror.Sync(ctx, matter, intent, actor.UserID, note); err != nil {
		result.Warnings = append(result.Warnings, "ticket mirror: "+err.Error())
	}

	if eventType == "" || s.notifier == nil {
		return
	}
	to := dedupe(recipients, actor.UserID)
	if len(to) == 0 {
		return
	}
	event := events.Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		MatterID:   matter.ID,
		ActorID:    actor.UserID,
		Recipients: to,
		Subject:    lifecycleSubject(eventType, matter),
		Body:       lifecycleBody(eventType, actor, matter, note),
		Timestamp:  s.now(),
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warn("notification enqueue failed", zap.String("matter_id", matter.ID), zap.Error(err))
		result.Warnings = append(result.Warnings, "notification: "+err.Error())
		return
	}
	result.Notified = to
}

func (s *MatterService) resolveUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.directory.ResolveUser(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user", id)
	}
	return user, nil
}

// resolveTarget loads an assignee and checks it holds capability.
func (s *MatterService) resolveTarget(ctx context.Context, id string, capability domain.Capability, field string) (*domain.User, error) {
	user, err := s.resolveUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.Active {
		return nil, apperrors.NewInvalidTarget("assignee is inactive", map[string]any{"field": field, "userId": id})
	}
	if !s.policy.Capabilities(user.Role).Has(capability) {
		return nil, apperrors.NewInvalidTarget("assignee role is not allowed for this level", map[string]any{
			"field":  field,
			"userId": id,
			"role":   user.Role,
		})
	}
	return user, nil
}

func (s *MatterService) ensureTicket(ctx context.Context, ticketID string) error {
	if s.tickets == nil {
		return apperrors.NewValidationError("ticket linking is not available", nil)
	}
	exists, err := s.tickets.TicketExists(ctx, ticketID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewNotFound("ticket", map[string]any{"ticketId": ticketID})
	}
	return nil
}

// cleanNote trims note and enforces presence, length and reserved prefixes.
func cleanNote(note string, required bool) (string, error) {
	note = strings.TrimSpace(note)
	if required && note == "" {
		return "", apperrors.NewValidationError("note is required", map[string]any{"field": "note"})
	}
	if utf8.RuneCountInString(note) > noteMaxLength {
		return "", apperrors.NewValidationError("note too long", map[string]any{"field": "note", "max": noteMaxLength})
	}
	if domain.HasReservedPrefix(note) {
		return "", apperrors.NewValidationError("note uses a reserved prefix", map[string]any{"field": "note"})
	}
	return note, nil
}

func notFoundOr(err error, resource, id string) error {
	if repository.IsNotFound(err) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return err
}

// dedupe trims ids, drops empties and anything in exclude, and keeps first-seen order.
func dedupe(ids []string, exclude ...string) []string {
	seen := make(map[string]struct{}, len(ids)+len(exclude))
	for _, e := range exclude {
		seen[e] = struct{}{}
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
