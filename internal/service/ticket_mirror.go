package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/observability"
	"github.com/spec-kit/escalation-service/internal/repository"
)

// TicketMirror reflects matter transitions onto the linked ticket.
type TicketMirror struct {
	target  repository.TicketTarget
	logger  *zap.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// NewTicketMirror builds a mirror. A nil target disables mirroring.
func NewTicketMirror(target repository.TicketTarget, logger *zap.Logger, metrics *observability.Metrics) *TicketMirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketMirror{target: target, logger: logger, metrics: metrics, now: time.Now}
}

// Sync mirrors intent onto matter's ticket. It is a no-op when the matter has
// no ticket or the intent has no ticket-side effect.
func (m *TicketMirror) Sync(ctx context.Context, matter *domain.Matter, intent domain.Intent, actorID, note string) error {
	if m == nil || m.target == nil || matter == nil || matter.TicketID == nil {
		return nil
	}

	patch, kind, ok := m.plan(intent)
	if !ok {
		return nil
	}
	ticketID := *matter.TicketID

	if patch != nil {
		if err := m.target.UpdateTicket(ctx, ticketID, *patch); err != nil {
			return m.fail(ticketID, matter.ID, intent, fmt.Errorf("update ticket: %w", err))
		}
	}

	entry := &domain.TicketActivity{
		MatterID: matter.ID,
		ActorID:  actorID,
		Kind:     kind,
		Comment:  note,
	}
	if err := m.target.AppendTicketActivity(ctx, ticketID, entry); err != nil {
		return m.fail(ticketID, matter.ID, intent, fmt.Errorf("append ticket activity: %w", err))
	}
	return nil
}

func (m *TicketMirror) plan(intent domain.Intent) (*domain.TicketPatch, domain.TicketActivityKind, bool) {
	now := m.now()
	switch intent {
	case domain.IntentCreate:
		return &domain.TicketPatch{LastActivityAt: now}, domain.TicketActivityRaised, true
	case domain.IntentLinkTicket:
		return &domain.TicketPatch{LastActivityAt: now}, domain.TicketActivityLinked, true
	case domain.IntentEscalate:
		status, escalated := domain.TicketStatusEscalated, true
		return &domain.TicketPatch{Status: &status, Escalated: &escalated, LastActivityAt: now},
			domain.TicketActivityEscalated, true
	case domain.IntentWithdraw, domain.IntentClose:
		status, escalated := domain.TicketStatusResolved, false
		return &domain.TicketPatch{Status: &status, Escalated: &escalated, ResolvedAt: &now, LastActivityAt: now},
			domain.TicketActivityResolved, true
	case domain.IntentHold:
		return &domain.TicketPatch{LastActivityAt: now}, domain.TicketActivityHeld, true
	case domain.IntentProgress:
		return nil, domain.TicketActivityComment, true
	}
	return nil, "", false
}

func (m *TicketMirror) fail(ticketID, matterID string, intent domain.Intent, err error) error {
	m.metrics.RecordMirrorError()
	m.logger.Warn("ticket mirror failed",
		zap.String("ticket_id", ticketID),
		zap.String("matter_id", matterID),
		zap.String("intent", string(intent)),
		zap.Error(err))
	return err
}
