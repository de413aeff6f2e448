package events

import (
	"context"
	"time"
)

const defaultMemoryQueueSize = 1024

// memoryQueue is an in-process queue. Events are lost on restart.
type memoryQueue struct {
	ch chan Event
}

// NewMemoryQueue creates a bounded in-process queue.
func NewMemoryQueue(size int) Queue {
	if size <= 0 {
		size = defaultMemoryQueueSize
	}
	return &memoryQueue{ch: make(chan Event, size)}
}

func (q *memoryQueue) Enqueue(ctx context.Context, event Event) error {
	select {
	case q.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *memoryQueue) Dequeue(ctx context.Context, wait time.Duration) (*Delivery, error) {
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case event := <-q.ch:
		return &Delivery{Event: event}, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *memoryQueue) Ack(context.Context, *Delivery) error {
	return nil
}

func (q *memoryQueue) Retry(ctx context.Context, _ *Delivery, next Event) error {
	return q.Enqueue(ctx, next)
}
