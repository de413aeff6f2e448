package domain

import "time"

// MatterStatus enumerates lifecycle states for escalation matters.
type MatterStatus string

const (
	MatterStatusOpen      MatterStatus = "OPEN"
	MatterStatusEscalated MatterStatus = "ESCALATED"
	MatterStatusOnHold    MatterStatus = "ON_HOLD"
	MatterStatusClosed    MatterStatus = "CLOSED"
)

// Valid reports whether s is a known status.
func (s MatterStatus) Valid() bool {
	switch s {
	case MatterStatusOpen, MatterStatusEscalated, MatterStatusOnHold, MatterStatusClosed:
		return true
	}
	return false
}

// IsTerminal reports whether no further lifecycle transition is allowed.
func (s MatterStatus) IsTerminal() bool {
	return s == MatterStatusClosed
}

// Escalation levels. A matter only ever moves from LevelInitial to LevelEscalated.
const (
	LevelInitial   = 1
	LevelEscalated = 2
)

// Matter is the aggregate root for an escalation case.
type Matter struct {
	ID                string
	Title             string
	Description       *string
	Status            MatterStatus
	Level             int
	CreatedByID       string
	CurrentAssigneeID *string
	SuggestedLevel2ID *string
	TicketID          *string
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsAssignee reports whether userID currently holds the matter.
func (m *Matter) IsAssignee(userID string) bool {
	return m.CurrentAssigneeID != nil && *m.CurrentAssigneeID == userID
}

// IsCreator reports whether userID raised the matter.
func (m *Matter) IsCreator(userID string) bool {
	return m.CreatedByID == userID
}

// Clone returns a deep copy of the matter.
func (m *Matter) Clone() *Matter {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Description = cloneString(m.Description)
	cp.CurrentAssigneeID = cloneString(m.CurrentAssigneeID)
	cp.SuggestedLevel2ID = cloneString(m.SuggestedLevel2ID)
	cp.TicketID = cloneString(m.TicketID)
	return &cp
}

// MatterMember links a user involved in a matter besides creator and assignee.
type MatterMember struct {
	MatterID string
	UserID   string
	AddedAt  time.Time
}

// MatterStudent links a student referenced by a matter.
type MatterStudent struct {
	MatterID  string
	StudentID string
	AddedAt   time.Time
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
