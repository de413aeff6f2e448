package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/escalation-service/internal/events"
	"github.com/spec-kit/escalation-service/internal/observability"
)

type scriptedHandler struct {
	mu    sync.Mutex
	calls []events.Event
	fn    func(events.Event) ([]string, error)
}

func (h *scriptedHandler) HandleEvent(_ context.Context, event events.Event) ([]string, error) {
	h.mu.Lock()
	h.calls = append(h.calls, event)
	h.mu.Unlock()
	return h.fn(event)
}

func newTestWorker(handler EventHandler, maxAttempts int) (*NotificationWorker, events.Queue, *observability.Metrics) {
	queue := events.NewMemoryQueue(8)
	metrics := observability.NewMetrics()
	w := NewNotificationWorker(queue, handler, 10*time.Millisecond, maxAttempts, nil, metrics)
	w.backoff = 0
	w.deferPause = 0
	return w, queue, metrics
}

func TestProcessOneAcksDelivered(t *testing.T) {
	handler := &scriptedHandler{fn: func(events.Event) ([]string, error) { return nil, nil }}
	w, queue, _ := newTestWorker(handler, 3)
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, events.Event{ID: "e1", Recipients: []string{"a"}}))
	took, err := w.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, took)

	took, err = w.ProcessOne(ctx)
	require.NoError(t, err)
	assert.False(t, took, "queue should be empty")
}

func TestProcessOneRetriesFailedRecipients(t *testing.T) {
	handler := &scriptedHandler{fn: func(e events.Event) ([]string, error) {
		if e.Attempt == 0 {
			return []string{"b"}, nil
		}
		return nil, nil
	}}
	w, queue, metrics := newTestWorker(handler, 3)
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, events.Event{ID: "e1", Recipients: []string{"a", "b"}}))
	_, err := w.ProcessOne(ctx)
	require.NoError(t, err)
	_, err = w.ProcessOne(ctx)
	require.NoError(t, err)

	require.Len(t, handler.calls, 2)
	assert.Equal(t, 1, handler.calls[1].Attempt)
	assert.Equal(t, []string{"b"}, handler.calls[1].Recipients)
	assert.Equal(t, int64(1), metrics.Snapshot().QueueRetries)
}

func TestProcessOneAbandonsAfterMaxAttempts(t *testing.T) {
	handler := &scriptedHandler{fn: func(e events.Event) ([]string, error) {
		return e.Recipients, nil
	}}
	w, queue, _ := newTestWorker(handler, 2)
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, events.Event{ID: "e1", Recipients: []string{"a"}}))
	for i := 0; i < 3; i++ {
		_, err := w.ProcessOne(ctx)
		require.NoError(t, err)
	}
	assert.Len(t, handler.calls, 2)
}

func TestProcessOneRetriesAllOnHandlerError(t *testing.T) {
	handler := &scriptedHandler{fn: func(e events.Event) ([]string, error) {
		if e.Attempt == 0 {
			return nil, errors.New("directory unavailable")
		}
		return nil, nil
	}}
	w, queue, _ := newTestWorker(handler, 3)
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, events.Event{ID: "e1", Recipients: []string{"a", "b"}}))
	_, err := w.ProcessOne(ctx)
	require.NoError(t, err)
	_, err = w.ProcessOne(ctx)
	require.NoError(t, err)

	require.Len(t, handler.calls, 2)
	assert.Equal(t, []string{"a", "b"}, handler.calls[1].Recipients)
}

func TestProcessOneDefersEventsNotYetDue(t *testing.T) {
	handler := &scriptedHandler{fn: func(events.Event) ([]string, error) { return nil, nil }}
	w, queue, _ := newTestWorker(handler, 3)
	ctx := context.Background()

	later := events.Event{ID: "later", Recipients: []string{"a"}, Attempt: 1, NotBefore: time.Now().Add(time.Hour)}
	require.NoError(t, queue.Enqueue(ctx, later))
	require.NoError(t, queue.Enqueue(ctx, events.Event{ID: "now", Recipients: []string{"b"}}))

	start := time.Now()
	handled, err := w.ProcessOne(ctx)
	require.NoError(t, err)
	assert.False(t, handled)

	handled, err = w.ProcessOne(ctx)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Less(t, time.Since(start), time.Second)

	require.Len(t, handler.calls, 1)
	assert.Equal(t, "now", handler.calls[0].ID)

	delivery, err := queue.Dequeue(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, delivery)
	assert.Equal(t, "later", delivery.Event.ID)
	assert.Equal(t, 1, delivery.Event.Attempt)
}

func TestRunStopsOnCancel(t *testing.T) {
	handler := &scriptedHandler{fn: func(events.Event) ([]string, error) { return nil, nil }}
	w, _, _ := newTestWorker(handler, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
