package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/escalation-service/internal/domain"
)

type overrideRepository struct {
	pool *pgxpool.Pool
}

// NewOverrideRepository returns a Postgres-backed override repository.
func NewOverrideRepository(pool *pgxpool.Pool) OverrideRepository {
	return &overrideRepository{pool: pool}
}

func (r *overrideRepository) WithinTx(ctx context.Context, fn func(tx OverrideTx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	// Override writes are serialized so deactivate-then-insert cannot interleave.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('day_close_overrides'))`); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := fn(&overrideTx{tx: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func (r *overrideRepository) HasActive(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM day_close_overrides WHERE user_id=$1 AND active)`, userID).Scan(&exists)
	return exists, err
}

func (r *overrideRepository) ListByUser(ctx context.Context, userID string, includeInactive bool) ([]domain.DayCloseOverride, error) {
	query := `
        SELECT id, user_id, matter_id, reason, active, created_by, created_at, ended_at, ended_by
        FROM day_close_overrides WHERE user_id=$1`
	if !includeInactive {
		query += ` AND active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DayCloseOverride
	for rows.Next() {
		var o domain.DayCloseOverride
		if err := rows.Scan(
			&o.ID,
			&o.UserID,
			&o.MatterID,
			&o.Reason,
			&o.Active,
			&o.CreatedBy,
			&o.CreatedAt,
			&o.EndedAt,
			&o.EndedBy,
		); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

type overrideTx struct {
	tx pgx.Tx
}

func (t *overrideTx) DeactivateScope(ctx context.Context, userID string, matterID *string, endedBy string, endedAt time.Time) (int, error) {
	cmd, err := t.tx.Exec(ctx, `
        UPDATE day_close_overrides SET active=FALSE, ended_at=$1, ended_by=$2
        WHERE user_id=$3 AND active AND matter_id IS NOT DISTINCT FROM $4`,
		endedAt, endedBy, userID, matterID)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

func (t *overrideTx) DeactivateAll(ctx context.Context, userID string, endedBy string, endedAt time.Time) (int, error) {
	cmd, err := t.tx.Exec(ctx, `
        UPDATE day_close_overrides SET active=FALSE, ended_at=$1, ended_by=$2
        WHERE user_id=$3 AND active`,
		endedAt, endedBy, userID)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

func (t *overrideTx) Insert(ctx context.Context, o *domain.DayCloseOverride) error {
	const query = `
        INSERT INTO day_close_overrides (user_id, matter_id, reason, active, created_by)
        VALUES ($1,$2,$3,TRUE,$4)
        RETURNING id, active, created_at`
	return t.tx.QueryRow(ctx, query,
		o.UserID,
		o.MatterID,
		o.Reason,
		o.CreatedBy,
	).Scan(&o.ID, &o.Active, &o.CreatedAt)
}
