package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/repository"
	apperrors "github.com/spec-kit/escalation-service/pkg/util/errorutil"
)

const reasonMaxLength = 500

// DayCloseService answers whether a user may close their day and manages the
// admin overrides that lift the block.
type DayCloseService struct {
	matters   repository.MatterReader
	overrides repository.OverrideRepository
	directory repository.Directory
	policy    *Policy
	logger    *zap.Logger
	now       func() time.Time
}

// DayCloseDependencies bundles collaborators for the day-close service.
type DayCloseDependencies struct {
	Matters   repository.MatterReader
	Overrides repository.OverrideRepository
	Directory repository.Directory
	Policy    *Policy
	Logger    *zap.Logger
}

// GrantOverrideInput describes a new override.
type GrantOverrideInput struct {
	UserID   string
	MatterID string
	Reason   string
}

// RevokeOverrideInput ends overrides. An empty MatterID ends all of the
// user's overrides; otherwise only that matter's scope is ended.
type RevokeOverrideInput struct {
	UserID   string
	MatterID string
}

// NewDayCloseService constructs the service.
func NewDayCloseService(deps DayCloseDependencies) *DayCloseService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DayCloseService{
		matters:   deps.Matters,
		overrides: deps.Overrides,
		directory: deps.Directory,
		policy:    deps.Policy,
		logger:    logger,
		now:       time.Now,
	}
}

// IsPaused reports whether userID is blocked: they are involved in at least
// one matter that is not closed and hold no active override.
func (s *DayCloseService) IsPaused(ctx context.Context, userID string) (*domain.DayCloseStatus, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewValidationError("user id is required", map[string]any{"field": "userId"})
	}

	openCount, err := s.matters.CountMatters(ctx, repository.MatterFilter{
		InvolvedUserID:  &userID,
		ExcludeStatuses: []domain.MatterStatus{domain.MatterStatusClosed},
	})
	if err != nil {
		return nil, err
	}
	overrideActive, err := s.overrides.HasActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &domain.DayCloseStatus{
		UserID:         userID,
		Paused:         openCount > 0 && !overrideActive,
		OpenCount:      openCount,
		OverrideActive: overrideActive,
	}, nil
}

// StatusFor returns another user's status. Only managers and day-close
// admins may look at other users.
func (s *DayCloseService) StatusFor(ctx context.Context, actor domain.Actor, userID string) (*domain.DayCloseStatus, error) {
	if userID != actor.UserID && !s.policy.IsManager(actor) && !s.policy.Can(actor, domain.CapManageDayClose) {
		return nil, apperrors.NewForbidden("cannot view another user's day-close status")
	}
	return s.IsPaused(ctx, userID)
}

// GrantOverride deactivates any active override with the same scope and
// records a new active one.
func (s *DayCloseService) GrantOverride(ctx context.Context, actor domain.Actor, input GrantOverrideInput) (*domain.DayCloseOverride, error) {
	if !s.policy.Can(actor, domain.CapManageDayClose) {
		return nil, apperrors.NewForbidden("only day-close admins can grant overrides")
	}

	userID := strings.TrimSpace(input.UserID)
	reason := strings.TrimSpace(input.Reason)
	matterID := strings.TrimSpace(input.MatterID)
	if userID == "" {
		return nil, apperrors.NewValidationError("user id is required", map[string]any{"field": "userId"})
	}
	if utf8.RuneCountInString(reason) > reasonMaxLength {
		return nil, apperrors.NewValidationError("reason too long", map[string]any{"field": "reason", "max": reasonMaxLength})
	}
	if err := s.ensureUser(ctx, userID); err != nil {
		return nil, err
	}
	if matterID != "" {
		if _, err := s.matters.GetMatter(ctx, matterID); err != nil {
			if repository.IsNotFound(err) {
				return nil, apperrors.NewValidationError("unknown matter", map[string]any{"matterId": matterID})
			}
			return nil, err
		}
	}

	override := &domain.DayCloseOverride{
		UserID:    userID,
		MatterID:  domain.StringPtr(matterID),
		Reason:    reason,
		CreatedBy: actor.UserID,
	}
	now := s.now()
	var replaced int
	err := s.overrides.WithinTx(ctx, func(tx repository.OverrideTx) error {
		var err error
		replaced, err = tx.DeactivateScope(ctx, userID, override.MatterID, actor.UserID, now)
		if err != nil {
			return err
		}
		return tx.Insert(ctx, override)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("day-close override granted",
		zap.String("override_id", override.ID),
		zap.String("user_id", userID),
		zap.String("matter_id", matterID),
		zap.String("granted_by", actor.UserID),
		zap.Int("replaced", replaced))
	return override, nil
}

// RevokeOverride deactivates overrides and returns how many were ended.
func (s *DayCloseService) RevokeOverride(ctx context.Context, actor domain.Actor, input RevokeOverrideInput) (int, error) {
	if !s.policy.Can(actor, domain.CapManageDayClose) {
		return 0, apperrors.NewForbidden("only day-close admins can revoke overrides")
	}
	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return 0, apperrors.NewValidationError("user id is required", map[string]any{"field": "userId"})
	}
	matterID := domain.StringPtr(strings.TrimSpace(input.MatterID))

	now := s.now()
	var ended int
	err := s.overrides.WithinTx(ctx, func(tx repository.OverrideTx) error {
		var err error
		if matterID == nil {
			ended, err = tx.DeactivateAll(ctx, userID, actor.UserID, now)
		} else {
			ended, err = tx.DeactivateScope(ctx, userID, matterID, actor.UserID, now)
		}
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("day-close override revoked",
		zap.String("user_id", userID),
		zap.String("revoked_by", actor.UserID),
		zap.Int("ended", ended))
	return ended, nil
}

// ListOverrides returns a user's overrides, newest first.
func (s *DayCloseService) ListOverrides(ctx context.Context, actor domain.Actor, userID string, includeInactive bool) ([]domain.DayCloseOverride, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = actor.UserID
	}
	if userID != actor.UserID && !s.policy.Can(actor, domain.CapManageDayClose) {
		return nil, apperrors.NewForbidden("cannot view another user's overrides")
	}
	return s.overrides.ListByUser(ctx, userID, includeInactive)
}

func (s *DayCloseService) ensureUser(ctx context.Context, userID string) error {
	if _, err := s.directory.ResolveUser(ctx, userID); err != nil {
		if repository.IsNotFound(err) {
			return apperrors.NewValidationError("unknown user", map[string]any{"userId": userID})
		}
		return err
	}
	return nil
}
