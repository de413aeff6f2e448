package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/escalation-service/internal/domain"
)

// Ticket is the in-memory view of a ticket record.
type Ticket struct {
	ID             string
	Status         domain.TicketStatus
	Escalated      bool
	ResolvedAt     *time.Time
	LastActivityAt time.Time
}

// TicketStore is an in-memory ticket target.
type TicketStore struct {
	mu       sync.Mutex
	tickets  map[string]*Ticket
	activity map[string][]domain.TicketActivity
	now      func() time.Time

	// FailWith, when set, makes every write return it.
	FailWith error
}

// NewTicketStore returns an empty ticket store.
func NewTicketStore() *TicketStore {
	return &TicketStore{
		tickets:  map[string]*Ticket{},
		activity: map[string][]domain.TicketActivity{},
		now:      time.Now,
	}
}

// PutTicket adds a ticket with the given id and status.
func (s *TicketStore) PutTicket(id string, status domain.TicketStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets[id] = &Ticket{ID: id, Status: status}
}

// Ticket returns a snapshot of the ticket.
func (s *TicketStore) Ticket(id string) (Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return Ticket{}, false
	}
	return *t, true
}

// Activity returns the activity entries of a ticket in insertion order.
func (s *TicketStore) Activity(id string) []domain.TicketActivity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.TicketActivity(nil), s.activity[id]...)
}

func (s *TicketStore) TicketExists(_ context.Context, ticketID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tickets[ticketID]
	return ok, nil
}

func (s *TicketStore) UpdateTicket(_ context.Context, ticketID string, patch domain.TicketPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	t, ok := s.tickets[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Escalated != nil {
		t.Escalated = *patch.Escalated
	}
	if patch.ResolvedAt != nil {
		at := *patch.ResolvedAt
		t.ResolvedAt = &at
	}
	t.LastActivityAt = patch.LastActivityAt
	return nil
}

func (s *TicketStore) AppendTicketActivity(_ context.Context, ticketID string, entry *domain.TicketActivity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	if _, ok := s.tickets[ticketID]; !ok {
		return pgx.ErrNoRows
	}
	entry.ID = uuid.NewString()
	entry.TicketID = ticketID
	entry.CreatedAt = s.now()
	s.activity[ticketID] = append(s.activity[ticketID], *entry)
	return nil
}
