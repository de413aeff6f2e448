package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryQueueFIFO(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(4)

	require.NoError(t, q.Enqueue(ctx, Event{ID: "1", Type: EventMatterCreated}))
	require.NoError(t, q.Enqueue(ctx, Event{ID: "2", Type: EventMatterClosed}))

	first, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "1", first.Event.ID)
	require.NoError(t, q.Ack(ctx, first))

	second, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "2", second.Event.ID)
}

func TestMemoryQueueDequeueTimesOut(t *testing.T) {
	q := NewMemoryQueue(1)
	delivery, err := q.Dequeue(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, delivery)
}

func TestMemoryQueueRetryRequeues(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(1)
	require.NoError(t, q.Enqueue(ctx, Event{ID: "1", Recipients: []string{"a", "b"}}))

	delivery, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)

	next := delivery.Event
	next.Recipients = []string{"b"}
	next.Attempt++
	require.NoError(t, q.Retry(ctx, delivery, next))

	again, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, again.Event.Recipients)
	assert.Equal(t, 1, again.Event.Attempt)
}

func TestMemoryQueueEnqueueRespectsContext(t *testing.T) {
	q := NewMemoryQueue(1)
	require.NoError(t, q.Enqueue(context.Background(), Event{ID: "1"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, q.Enqueue(ctx, Event{ID: "2"}), context.Canceled)
}
