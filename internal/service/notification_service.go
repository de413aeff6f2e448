package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/events"
	"github.com/spec-kit/escalation-service/internal/repository"
)

// NotificationService queues lifecycle events and turns dequeued events into
// deliveries.
type NotificationService struct {
	queue         events.Queue
	dispatcher    *NotificationDispatcher
	notifications repository.NotificationRepository
	logger        *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(queue events.Queue, dispatcher *NotificationDispatcher, notifications repository.NotificationRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		queue:         queue,
		dispatcher:    dispatcher,
		notifications: notifications,
		logger:        logger,
	}
}

// Notify puts event on the delivery queue.
func (n *NotificationService) Notify(ctx context.Context, event events.Event) error {
	if n.queue == nil {
		return nil
	}
	if err := n.queue.Enqueue(ctx, event); err != nil {
		return err
	}
	n.logger.Debug("notification queued",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("matter_id", event.MatterID),
		zap.Strings("recipients", event.Recipients))
	return nil
}

// HandleEvent delivers event to its recipients and returns the ones whose
// failure is worth retrying. In-app rows are only written on the first
// attempt so retries do not duplicate them.
func (n *NotificationService) HandleEvent(ctx context.Context, event events.Event) ([]string, error) {
	msg := domain.OutboundMessage{
		Subject: event.Subject,
		Body:    event.Body,
		Meta: map[string]string{
			"matterId": event.MatterID,
			"event":    string(event.Type),
		},
	}

	var retry []string
	for _, recipientID := range event.Recipients {
		var result domain.DeliveryResult
		if event.Attempt == 0 {
			result = n.dispatcher.Deliver(ctx, []string{recipientID}, msg, DeliveryOptions{
				EmailCopy: true,
				Kind:      string(event.Type),
				MatterID:  event.MatterID,
			})[0]
		} else {
			result = n.dispatcher.Send(ctx, recipientID, msg, event.MatterID)
		}
		if Retryable(result) {
			retry = append(retry, recipientID)
		}
		if err := ctx.Err(); err != nil {
			return retry, err
		}
	}

	n.logger.Info("notification event handled",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Int("attempt", event.Attempt),
		zap.Int("recipients", len(event.Recipients)),
		zap.Int("retry", len(retry)))
	return retry, nil
}

// ListForUser returns the user's most recent in-app notifications.
func (n *NotificationService) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if n.notifications == nil {
		return nil, nil
	}
	return n.notifications.ListForUser(ctx, userID, limit)
}
