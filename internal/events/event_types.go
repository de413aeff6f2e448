package events

import (
	"time"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventMatterCreated   EventType = "matter_created"
	EventMatterEscalated EventType = "matter_escalated"
	EventMatterHeld      EventType = "matter_held"
	EventMatterWithdrawn EventType = "matter_withdrawn"
	EventMatterClosed    EventType = "matter_closed"
)

// Event is a lifecycle notification waiting to be delivered. Recipients
// shrinks on retry to the users whose delivery failed, and NotBefore delays
// the next attempt.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	MatterID   string    `json:"matter_id"`
	ActorID    string    `json:"actor_id"`
	Recipients []string  `json:"recipients"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	Attempt    int       `json:"attempt"`
	Timestamp  time.Time `json:"timestamp"`
	NotBefore  time.Time `json:"not_before,omitempty"`
}
