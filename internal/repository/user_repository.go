package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/escalation-service/internal/domain"
)

const userColumns = `id, name, email, COALESCE(whatsapp_number, ''), role, active, password_hash`

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed directory over the portal's
// users and students tables. It never writes to them.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) ResolveUser(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchUser(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchUser(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(email)=LOWER($1)`, email)
}

func (r *userRepository) ResolveStudent(ctx context.Context, id string) (*domain.Student, error) {
	var student domain.Student
	if err := r.pool.QueryRow(ctx, `
        SELECT id, name, COALESCE(class_name, '') FROM students WHERE id=$1`, id).Scan(
		&student.ID,
		&student.Name,
		&student.Class,
	); err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *userRepository) fetchUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.WhatsApp,
		&user.Role,
		&user.Active,
		&user.PasswordHash,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
