package service

import (
	"context"
	"fmt"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/repository"
)

// StepEntry is the input to AuditLogWriter.Append.
type StepEntry struct {
	MatterID   string
	Level      int
	Action     domain.StepAction
	FromUserID string
	ToUserID   *string
	Note       string
}

// AuditLogWriter appends steps inside the caller's transaction. There is no
// update or delete path.
type AuditLogWriter struct{}

// NewAuditLogWriter returns a writer.
func NewAuditLogWriter() *AuditLogWriter {
	return &AuditLogWriter{}
}

// Append writes one step through tx and returns its id.
func (w *AuditLogWriter) Append(ctx context.Context, tx repository.StepAppender, entry StepEntry) (string, error) {
	if entry.MatterID == "" || entry.FromUserID == "" {
		return "", fmt.Errorf("audit: matter and actor are required")
	}
	if !entry.Action.Valid() {
		return "", fmt.Errorf("audit: unknown action %q", entry.Action)
	}
	if entry.Level != domain.LevelInitial && entry.Level != domain.LevelEscalated {
		return "", fmt.Errorf("audit: level %d out of range", entry.Level)
	}

	step := &domain.Step{
		MatterID:   entry.MatterID,
		Level:      entry.Level,
		Action:     entry.Action,
		FromUserID: entry.FromUserID,
		ToUserID:   entry.ToUserID,
		Note:       domain.StringPtr(entry.Note),
	}
	if err := tx.AppendStep(ctx, step); err != nil {
		return "", err
	}
	return step.ID, nil
}
