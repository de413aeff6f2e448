package domain

import "time"

// TicketStatus is the status vocabulary of the external ticket record.
type TicketStatus string

const (
	TicketStatusEscalated TicketStatus = "escalated"
	TicketStatusResolved  TicketStatus = "resolved"
)

// TicketPatch describes the fields the mirror may change on a ticket.
// Nil fields are left untouched.
type TicketPatch struct {
	Status         *TicketStatus
	Escalated      *bool
	ResolvedAt     *time.Time
	LastActivityAt time.Time
}

// TicketActivityKind classifies mirrored activity entries.
type TicketActivityKind string

const (
	TicketActivityRaised    TicketActivityKind = "escalation_raised"
	TicketActivityEscalated TicketActivityKind = "escalation_escalated"
	TicketActivityHeld      TicketActivityKind = "escalation_on_hold"
	TicketActivityResolved  TicketActivityKind = "escalation_resolved"
	TicketActivityComment   TicketActivityKind = "escalation_comment"
	TicketActivityLinked    TicketActivityKind = "escalation_linked"
)

// TicketActivity is one entry in a ticket's activity log.
type TicketActivity struct {
	ID        string
	TicketID  string
	MatterID  string
	ActorID   string
	Kind      TicketActivityKind
	Comment   string
	CreatedAt time.Time
}
