//go:build integration

package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/escalation-service/internal/testutils"
)

func TestRedisQueueAckAndRetry(t *testing.T) {
	ctx := context.Background()
	client := testutils.SetupRedis(t)
	key := "test:queue:" + uuid.NewString()
	q := NewRedisQueue(client, key)

	require.NoError(t, q.Enqueue(ctx, Event{ID: "e1", Type: EventMatterEscalated, Recipients: []string{"u1", "u2"}}))

	delivery, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, delivery)
	assert.Equal(t, "e1", delivery.Event.ID)
	assert.Equal(t, int64(1), client.LLen(ctx, key+":processing").Val())

	next := delivery.Event
	next.Recipients = []string{"u2"}
	next.Attempt = 1
	require.NoError(t, q.Retry(ctx, delivery, next))
	assert.Zero(t, client.LLen(ctx, key+":processing").Val())

	again, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, again.Event.Recipients)
	require.NoError(t, q.Ack(ctx, again))
	assert.Zero(t, client.LLen(ctx, key+":processing").Val())

	empty, err := q.Dequeue(ctx, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestRecoverRedisQueue(t *testing.T) {
	ctx := context.Background()
	client := testutils.SetupRedis(t)
	key := "test:queue:" + uuid.NewString()
	q := NewRedisQueue(client, key)

	require.NoError(t, q.Enqueue(ctx, Event{ID: "lost"}))
	_, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)

	moved, err := RecoverRedisQueue(ctx, client, key)
	require.NoError(t, err)
	assert.Equal(t, 1, moved)

	delivery, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "lost", delivery.Event.ID)
}
