package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/escalation-service/internal/domain"
)

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository returns the Postgres ticket target used by the mirror.
func NewTicketRepository(pool *pgxpool.Pool) TicketTarget {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) TicketExists(ctx context.Context, ticketID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE id=$1)`, ticketID).Scan(&exists)
	return exists, err
}

func (r *ticketRepository) UpdateTicket(ctx context.Context, ticketID string, patch domain.TicketPatch) error {
	sets := []string{}
	args := []any{}

	if patch.Status != nil {
		args = append(args, string(*patch.Status))
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}
	if patch.Escalated != nil {
		args = append(args, *patch.Escalated)
		sets = append(sets, fmt.Sprintf("escalated=$%d", len(args)))
	}
	if patch.ResolvedAt != nil {
		args = append(args, *patch.ResolvedAt)
		sets = append(sets, fmt.Sprintf("resolved_at=$%d", len(args)))
	}
	args = append(args, patch.LastActivityAt)
	sets = append(sets, fmt.Sprintf("last_activity_at=$%d", len(args)))
	sets = append(sets, "updated_at=NOW()")

	args = append(args, ticketID)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d`, strings.Join(sets, ", "), len(args))

	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) AppendTicketActivity(ctx context.Context, ticketID string, entry *domain.TicketActivity) error {
	const query = `
        INSERT INTO ticket_activity (ticket_id, matter_id, actor_id, kind, comment)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	entry.TicketID = ticketID
	return r.pool.QueryRow(ctx, query,
		ticketID,
		entry.MatterID,
		entry.ActorID,
		string(entry.Kind),
		entry.Comment,
	).Scan(&entry.ID, &entry.CreatedAt)
}
