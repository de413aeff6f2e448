package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisQueue stores events in a Redis list. Dequeued events move atomically
// to a processing list and stay there until acked, so a crashed worker's
// events are recovered on the next start.
type redisQueue struct {
	client        *redis.Client
	key           string
	processingKey string
}

// NewRedisQueue creates a queue backed by the list at key.
func NewRedisQueue(client *redis.Client, key string) Queue {
	return &redisQueue{client: client, key: key, processingKey: key + ":processing"}
}

func (q *redisQueue) Enqueue(ctx context.Context, event Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	return q.client.LPush(ctx, q.key, raw).Err()
}

func (q *redisQueue) Dequeue(ctx context.Context, wait time.Duration) (*Delivery, error) {
	raw, err := q.client.BLMove(ctx, q.key, q.processingKey, "RIGHT", "LEFT", wait).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var event Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		// drop undecodable payloads so they do not block the processing list
		_ = q.client.LRem(ctx, q.processingKey, 1, raw).Err()
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return &Delivery{Event: event, raw: raw}, nil
}

func (q *redisQueue) Ack(ctx context.Context, delivery *Delivery) error {
	if delivery == nil {
		return nil
	}
	return q.client.LRem(ctx, q.processingKey, 1, delivery.raw).Err()
}

func (q *redisQueue) Retry(ctx context.Context, delivery *Delivery, next Event) error {
	raw, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	_, err = q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, q.processingKey, 1, delivery.raw)
		pipe.LPush(ctx, q.key, raw)
		return nil
	})
	return err
}

// RecoverRedisQueue moves events left in the processing list by a previous
// run back onto the queue. It returns how many were moved.
func RecoverRedisQueue(ctx context.Context, client *redis.Client, key string) (int, error) {
	moved := 0
	for {
		err := client.LMove(ctx, key+":processing", key, "RIGHT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, err
		}
		moved++
	}
}
