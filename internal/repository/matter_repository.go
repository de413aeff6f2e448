package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/escalation-service/internal/domain"
)

const matterColumns = `id, title, description, status, level, created_by_id, current_assignee_id,
               suggested_level2_id, ticket_id, version, created_at, updated_at`

type matterStore struct {
	pool *pgxpool.Pool
	matterQueries
}

// NewMatterStore returns a Postgres-backed matter store.
func NewMatterStore(pool *pgxpool.Pool) MatterStore {
	return &matterStore{pool: pool, matterQueries: matterQueries{db: pool}}
}

func (s *matterStore) WithinTx(ctx context.Context, fn func(tx MatterTx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	if err := fn(&matterTx{tx: tx, matterQueries: matterQueries{db: tx}}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type matterTx struct {
	tx pgx.Tx
	matterQueries
}

func (t *matterTx) LockMatter(ctx context.Context, id string) (*domain.Matter, error) {
	query := `SELECT ` + matterColumns + ` FROM matters WHERE id=$1 FOR UPDATE`
	return scanMatter(t.tx.QueryRow(ctx, query, id))
}

func (t *matterTx) InsertMatter(ctx context.Context, matter *domain.Matter) error {
	const query = `
        INSERT INTO matters (title, description, status, level, created_by_id, current_assignee_id,
                             suggested_level2_id, ticket_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, version, created_at, updated_at`
	return t.tx.QueryRow(ctx, query,
		matter.Title,
		matter.Description,
		matter.Status,
		matter.Level,
		matter.CreatedByID,
		matter.CurrentAssigneeID,
		matter.SuggestedLevel2ID,
		matter.TicketID,
	).Scan(&matter.ID, &matter.Version, &matter.CreatedAt, &matter.UpdatedAt)
}

func (t *matterTx) UpdateMatter(ctx context.Context, matter *domain.Matter) error {
	const query = `
        UPDATE matters SET status=$1, level=$2, current_assignee_id=$3, ticket_id=$4,
            version=version+1, updated_at=NOW()
        WHERE id=$5 AND version=$6
        RETURNING version, updated_at`
	err := t.tx.QueryRow(ctx, query,
		matter.Status,
		matter.Level,
		matter.CurrentAssigneeID,
		matter.TicketID,
		matter.ID,
		matter.Version,
	).Scan(&matter.Version, &matter.UpdatedAt)
	if IsNotFound(err) {
		return ErrStaleMatter
	}
	return err
}

func (t *matterTx) TouchMatter(ctx context.Context, id string) error {
	cmd, err := t.tx.Exec(ctx, `UPDATE matters SET updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (t *matterTx) AddMembers(ctx context.Context, matterID string, userIDs []string) error {
	for _, userID := range userIDs {
		if _, err := t.tx.Exec(ctx, `
            INSERT INTO matter_members (matter_id, user_id) VALUES ($1,$2)
            ON CONFLICT (matter_id, user_id) DO NOTHING`, matterID, userID); err != nil {
			return err
		}
	}
	return nil
}

func (t *matterTx) AddStudents(ctx context.Context, matterID string, studentIDs []string) error {
	for _, studentID := range studentIDs {
		if _, err := t.tx.Exec(ctx, `
            INSERT INTO matter_students (matter_id, student_id) VALUES ($1,$2)
            ON CONFLICT (matter_id, student_id) DO NOTHING`, matterID, studentID); err != nil {
			return err
		}
	}
	return nil
}

func (t *matterTx) AppendStep(ctx context.Context, step *domain.Step) error {
	const query = `
        INSERT INTO matter_steps (matter_id, level, action, from_user_id, to_user_id, note)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, seq, created_at`
	return t.tx.QueryRow(ctx, query,
		step.MatterID,
		step.Level,
		step.Action,
		step.FromUserID,
		step.ToUserID,
		step.Note,
	).Scan(&step.ID, &step.Seq, &step.CreatedAt)
}

// matterQueries holds the read side shared by the pool and open transactions.
type matterQueries struct {
	db dbtx
}

func (q matterQueries) GetMatter(ctx context.Context, id string) (*domain.Matter, error) {
	query := `SELECT ` + matterColumns + ` FROM matters WHERE id=$1`
	return scanMatter(q.db.QueryRow(ctx, query, id))
}

func (q matterQueries) ListMatters(ctx context.Context, filter MatterFilter) ([]domain.Matter, error) {
	where, args := matterWhere(filter)
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`SELECT %s FROM matters WHERE %s ORDER BY updated_at DESC, id LIMIT %d OFFSET %d`,
		matterColumns, where, limit, offset)

	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Matter
	for rows.Next() {
		matter, err := scanMatter(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *matter)
	}
	return result, rows.Err()
}

func (q matterQueries) CountMatters(ctx context.Context, filter MatterFilter) (int, error) {
	where, args := matterWhere(filter)
	var count int
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM matters WHERE `+where, args...).Scan(&count)
	return count, err
}

func (q matterQueries) ListSteps(ctx context.Context, matterID string) ([]domain.Step, error) {
	const query = `
        SELECT id, seq, matter_id, level, action, from_user_id, to_user_id, note, created_at
        FROM matter_steps WHERE matter_id=$1 ORDER BY created_at ASC, seq ASC`
	rows, err := q.db.Query(ctx, query, matterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Step
	for rows.Next() {
		var step domain.Step
		if err := rows.Scan(
			&step.ID,
			&step.Seq,
			&step.MatterID,
			&step.Level,
			&step.Action,
			&step.FromUserID,
			&step.ToUserID,
			&step.Note,
			&step.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, step)
	}
	return result, rows.Err()
}

func (q matterQueries) ListMembers(ctx context.Context, matterID string) ([]domain.MatterMember, error) {
	rows, err := q.db.Query(ctx, `
        SELECT matter_id, user_id, added_at FROM matter_members
        WHERE matter_id=$1 ORDER BY added_at ASC, user_id`, matterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MatterMember
	for rows.Next() {
		var member domain.MatterMember
		if err := rows.Scan(&member.MatterID, &member.UserID, &member.AddedAt); err != nil {
			return nil, err
		}
		result = append(result, member)
	}
	return result, rows.Err()
}

func (q matterQueries) ListStudents(ctx context.Context, matterID string) ([]domain.MatterStudent, error) {
	rows, err := q.db.Query(ctx, `
        SELECT matter_id, student_id, added_at FROM matter_students
        WHERE matter_id=$1 ORDER BY added_at ASC, student_id`, matterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MatterStudent
	for rows.Next() {
		var student domain.MatterStudent
		if err := rows.Scan(&student.MatterID, &student.StudentID, &student.AddedAt); err != nil {
			return nil, err
		}
		result = append(result, student)
	}
	return result, rows.Err()
}

func (q matterQueries) IsMember(ctx context.Context, matterID, userID string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM matter_members WHERE matter_id=$1 AND user_id=$2)`,
		matterID, userID).Scan(&exists)
	return exists, err
}

func matterWhere(filter MatterFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("current_assignee_id=$%d", len(args)))
	}
	if filter.CreatedByID != nil {
		args = append(args, *filter.CreatedByID)
		clauses = append(clauses, fmt.Sprintf("created_by_id=$%d", len(args)))
	}
	if filter.InvolvedUserID != nil {
		args = append(args, *filter.InvolvedUserID)
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(`(created_by_id=%s OR current_assignee_id=%s OR EXISTS (
            SELECT 1 FROM matter_members mm WHERE mm.matter_id = matters.id AND mm.user_id=%s))`, p, p, p))
	}
	if len(filter.Statuses) > 0 {
		clauses = append(clauses, "status IN ("+statusPlaceholders(filter.Statuses, &args)+")")
	}
	if len(filter.ExcludeStatuses) > 0 {
		clauses = append(clauses, "status NOT IN ("+statusPlaceholders(filter.ExcludeStatuses, &args)+")")
	}
	return strings.Join(clauses, " AND "), args
}

func statusPlaceholders(statuses []domain.MatterStatus, args *[]any) string {
	placeholders := make([]string, len(statuses))
	for i, status := range statuses {
		*args = append(*args, status)
		placeholders[i] = fmt.Sprintf("$%d", len(*args))
	}
	return strings.Join(placeholders, ",")
}

func scanMatter(row pgx.Row) (*domain.Matter, error) {
	var matter domain.Matter
	if err := row.Scan(
		&matter.ID,
		&matter.Title,
		&matter.Description,
		&matter.Status,
		&matter.Level,
		&matter.CreatedByID,
		&matter.CurrentAssigneeID,
		&matter.SuggestedLevel2ID,
		&matter.TicketID,
		&matter.Version,
		&matter.CreatedAt,
		&matter.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &matter, nil
}
