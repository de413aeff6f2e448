package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/observability"
	"github.com/spec-kit/escalation-service/internal/repository"
)

// Channel delivers one message to one recipient.
type Channel interface {
	Name() string
	Send(ctx context.Context, recipient *domain.User, msg domain.OutboundMessage) error
}

// DeliveryOptions tunes a dispatch.
type DeliveryOptions struct {
	// EmailCopy also sends the message by e-mail when the recipient has an address.
	EmailCopy bool
	// Kind labels the in-app notification.
	Kind     string
	MatterID string
}

// NotificationDispatcher sends outbound messages and records in-app
// notifications. Failures are reported per recipient, never returned as errors.
type NotificationDispatcher struct {
	directory     repository.Directory
	primary       Channel
	email         Channel
	notifications repository.NotificationRepository
	timeout       time.Duration
	logger        *zap.Logger
	metrics       *observability.Metrics
}

// DispatcherDependencies bundles collaborators for the dispatcher.
type DispatcherDependencies struct {
	Directory     repository.Directory
	Primary       Channel
	Email         Channel
	Notifications repository.NotificationRepository
	Timeout       time.Duration
	Logger        *zap.Logger
	Metrics       *observability.Metrics
}

// NewNotificationDispatcher builds a dispatcher.
func NewNotificationDispatcher(deps DispatcherDependencies) *NotificationDispatcher {
	timeout := deps.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationDispatcher{
		directory:     deps.Directory,
		primary:       deps.Primary,
		email:         deps.Email,
		notifications: deps.Notifications,
		timeout:       timeout,
		logger:        logger,
		metrics:       deps.Metrics,
	}
}

// Deliver sends msg to every recipient and records an in-app notification for
// each, whatever the outbound outcome.
func (d *NotificationDispatcher) Deliver(ctx context.Context, recipientIDs []string, msg domain.OutboundMessage, opts DeliveryOptions) []domain.DeliveryResult {
	results := make([]domain.DeliveryResult, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		recipient, result := d.resolve(ctx, id)
		if recipient != nil {
			result = d.send(ctx, recipient, msg, opts.MatterID)
			if opts.EmailCopy && d.email != nil && recipient.Email != "" {
				d.send(ctx, recipient, msg, opts.MatterID, d.email)
			}
		}
		if err := d.RecordInApp(ctx, id, msg, opts); err != nil {
			d.logger.Warn("in-app notification failed", zap.String("recipient_id", id), zap.Error(err))
		}
		results = append(results, result)
	}
	return results
}

// Send attempts outbound delivery to one recipient on the primary channel.
func (d *NotificationDispatcher) Send(ctx context.Context, recipientID string, msg domain.OutboundMessage, matterID string) domain.DeliveryResult {
	recipient, result := d.resolve(ctx, recipientID)
	if recipient == nil {
		return result
	}
	return d.send(ctx, recipient, msg, matterID)
}

// RecordInApp stores an in-app notification for recipientID.
func (d *NotificationDispatcher) RecordInApp(ctx context.Context, recipientID string, msg domain.OutboundMessage, opts DeliveryOptions) error {
	if d.notifications == nil {
		return nil
	}
	kind := opts.Kind
	if kind == "" {
		kind = "escalation"
	}
	return d.notifications.CreateInApp(ctx, &domain.Notification{
		UserID:   recipientID,
		Title:    msg.Subject,
		Body:     msg.Body,
		Kind:     kind,
		MatterID: domain.StringPtr(opts.MatterID),
	})
}

func (d *NotificationDispatcher) resolve(ctx context.Context, recipientID string) (*domain.User, domain.DeliveryResult) {
	result := domain.DeliveryResult{RecipientID: recipientID, Channel: d.primaryName(), Status: domain.DeliveryFailed}
	recipient, err := d.directory.ResolveUser(ctx, recipientID)
	if err != nil {
		if repository.IsNotFound(err) {
			result.Error = domain.DeliveryErrRecipientNotFound
		} else {
			d.logger.Warn("recipient lookup failed", zap.String("recipient_id", recipientID), zap.Error(err))
			result.Error = domain.DeliveryErrSendFailed
		}
		d.record(ctx, result, "")
		return nil, result
	}
	if !recipient.Active {
		result.Error = domain.DeliveryErrRecipientInactive
		d.record(ctx, result, "")
		return nil, result
	}
	return recipient, result
}

func (d *NotificationDispatcher) send(ctx context.Context, recipient *domain.User, msg domain.OutboundMessage, matterID string, channel ...Channel) domain.DeliveryResult {
	ch := d.primary
	if len(channel) > 0 {
		ch = channel[0]
	}
	result := domain.DeliveryResult{RecipientID: recipient.ID, Channel: d.primaryName(), Status: domain.DeliveryFailed}
	if ch == nil {
		result.Error = domain.DeliveryErrChannelUnconfigured
		d.record(ctx, result, matterID)
		return result
	}
	result.Channel = ch.Name()

	if ch == d.primary && strings.TrimSpace(recipient.WhatsApp) == "" {
		result.Error = domain.DeliveryErrMissingWhatsApp
		d.record(ctx, result, matterID)
		return result
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := ch.Send(sendCtx, recipient, msg); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(sendCtx.Err(), context.DeadlineExceeded) {
			result.Error = domain.DeliveryErrTimeout
		} else {
			result.Error = domain.DeliveryErrSendFailed
		}
		d.logger.Warn("notification delivery failed",
			zap.String("recipient_id", recipient.ID),
			zap.String("channel", ch.Name()),
			zap.Error(err))
	} else {
		result.Status = domain.DeliverySent
	}
	d.record(ctx, result, matterID)
	return result
}

func (d *NotificationDispatcher) record(ctx context.Context, result domain.DeliveryResult, matterID string) {
	d.metrics.RecordDelivery(result.Channel, string(result.Status))
	if d.notifications == nil {
		return
	}
	if err := d.notifications.RecordDelivery(ctx, &domain.DeliveryRecord{
		RecipientID: result.RecipientID,
		MatterID:    domain.StringPtr(matterID),
		Channel:     result.Channel,
		Status:      result.Status,
		Error:       result.Error,
	}); err != nil {
		d.logger.Warn("delivery log write failed", zap.String("recipient_id", result.RecipientID), zap.Error(err))
	}
}

func (d *NotificationDispatcher) primaryName() string {
	if d.primary == nil {
		return "none"
	}
	return d.primary.Name()
}

// Retryable reports whether a failed result may succeed on a later attempt.
func Retryable(result domain.DeliveryResult) bool {
	if result.Status != domain.DeliveryFailed {
		return false
	}
	return result.Error == domain.DeliveryErrSendFailed || result.Error == domain.DeliveryErrTimeout
}
