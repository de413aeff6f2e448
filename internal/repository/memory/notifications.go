package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/escalation-service/internal/domain"
)

// NotificationStore keeps in-app notifications and delivery records in memory.
type NotificationStore struct {
	mu            sync.Mutex
	notifications []domain.Notification
	deliveries    []domain.DeliveryRecord
	now           func() time.Time
}

// NewNotificationStore returns an empty store.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{now: time.Now}
}

func (s *NotificationStore) CreateInApp(_ context.Context, n *domain.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = uuid.NewString()
	n.CreatedAt = s.now()
	s.notifications = append(s.notifications, *n)
	return nil
}

func (s *NotificationStore) RecordDelivery(_ context.Context, record *domain.DeliveryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record.ID = uuid.NewString()
	record.CreatedAt = s.now()
	s.deliveries = append(s.deliveries, *record)
	return nil
}

func (s *NotificationStore) ListForUser(_ context.Context, userID string, limit int) ([]domain.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	var out []domain.Notification
	for _, n := range s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Deliveries returns every recorded delivery attempt.
func (s *NotificationStore) Deliveries() []domain.DeliveryRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.DeliveryRecord(nil), s.deliveries...)
}
