package events

import (
	"context"
	"time"
)

// Delivery is an event handed to a consumer. It must be acked or retried.
type Delivery struct {
	Event Event
	raw   string
}

// Queue is an at-least-once event queue.
type Queue interface {
	Enqueue(ctx context.Context, event Event) error
	// Dequeue blocks up to wait for the next event. It returns nil, nil when
	// nothing arrived in time.
	Dequeue(ctx context.Context, wait time.Duration) (*Delivery, error)
	Ack(ctx context.Context, delivery *Delivery) error
	// Retry acks delivery and enqueues next in its place.
	Retry(ctx context.Context, delivery *Delivery, next Event) error
}
