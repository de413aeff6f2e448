package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/escalation-service/internal/domain"
)

type notificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository returns the Postgres notification store.
func NewNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &notificationRepository{pool: pool}
}

func (r *notificationRepository) CreateInApp(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (user_id, title, body, kind, matter_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, is_read, created_at`
	return r.pool.QueryRow(ctx, query,
		n.UserID,
		n.Title,
		n.Body,
		n.Kind,
		n.MatterID,
	).Scan(&n.ID, &n.IsRead, &n.CreatedAt)
}

func (r *notificationRepository) RecordDelivery(ctx context.Context, record *domain.DeliveryRecord) error {
	const query = `
        INSERT INTO notification_deliveries (recipient_id, matter_id, channel, status, error)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		record.RecipientID,
		record.MatterID,
		record.Channel,
		string(record.Status),
		record.Error,
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
        SELECT id, user_id, title, body, kind, matter_id, is_read, created_at
        FROM notifications WHERE user_id=$1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.Kind, &n.MatterID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}
