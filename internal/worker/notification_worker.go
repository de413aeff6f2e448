package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/events"
	"github.com/spec-kit/escalation-service/internal/observability"
)

// EventHandler delivers one event and returns the recipients to retry.
type EventHandler interface {
	HandleEvent(ctx context.Context, event events.Event) ([]string, error)
}

// NotificationWorker drains the notification queue.
type NotificationWorker struct {
	queue       events.Queue
	handler     EventHandler
	poll        time.Duration
	maxAttempts int
	backoff     time.Duration
	deferPause  time.Duration
	logger      *zap.Logger
	metrics     *observability.Metrics
}

// NewNotificationWorker builds a worker.
func NewNotificationWorker(queue events.Queue, handler EventHandler, poll time.Duration, maxAttempts int, logger *zap.Logger, metrics *observability.Metrics) *NotificationWorker {
	if poll <= 0 {
		poll = 5 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		queue:       queue,
		handler:     handler,
		poll:        poll,
		maxAttempts: maxAttempts,
		backoff:     2 * time.Second,
		deferPause:  100 * time.Millisecond,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run processes events until ctx is cancelled.
func (w *NotificationWorker) Run(ctx context.Context) {
	w.logger.Info("notification worker started", zap.Int("max_attempts", w.maxAttempts))
	for {
		if ctx.Err() != nil {
			w.logger.Info("notification worker stopped")
			return
		}
		if _, err := w.ProcessOne(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Warn("notification worker error", zap.Error(err))
			// back off so a broken queue does not spin
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

// ProcessOne handles at most one event. It reports whether an event was
// handled. Events that are not yet due go back on the queue untouched.
func (w *NotificationWorker) ProcessOne(ctx context.Context) (bool, error) {
	delivery, err := w.queue.Dequeue(ctx, w.poll)
	if err != nil || delivery == nil {
		return false, err
	}

	event := delivery.Event
	if wait := time.Until(event.NotBefore); wait > 0 {
		if err := w.queue.Retry(ctx, delivery, event); err != nil {
			return false, err
		}
		if wait > w.deferPause {
			wait = w.deferPause
		}
		if wait > 0 {
			select {
			case <-ctx.Done():
				return false, ctx.Err()
			case <-time.After(wait):
			}
		}
		return false, nil
	}

	retry, handleErr := w.handler.HandleEvent(ctx, event)
	if handleErr != nil {
		w.logger.Warn("notification event failed",
			zap.String("event_id", event.ID),
			zap.Int("attempt", event.Attempt),
			zap.Error(handleErr))
		if len(retry) == 0 {
			retry = event.Recipients
		}
	}

	if len(retry) == 0 {
		return true, w.queue.Ack(ctx, delivery)
	}

	if event.Attempt+1 >= w.maxAttempts {
		w.logger.Warn("notification delivery abandoned",
			zap.String("event_id", event.ID),
			zap.String("matter_id", event.MatterID),
			zap.Strings("recipients", retry),
			zap.Int("attempts", event.Attempt+1))
		return true, w.queue.Ack(ctx, delivery)
	}

	next := event
	next.Recipients = retry
	next.Attempt++
	next.NotBefore = time.Now().Add(w.backoff * time.Duration(next.Attempt))
	w.metrics.RecordQueueRetry()
	return true, w.queue.Retry(ctx, delivery, next)
}
