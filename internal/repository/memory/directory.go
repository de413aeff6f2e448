package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/escalation-service/internal/domain"
)

// Directory is an in-memory user and student directory.
type Directory struct {
	mu       sync.RWMutex
	users    map[string]domain.User
	students map[string]domain.Student
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{
		users:    map[string]domain.User{},
		students: map[string]domain.Student{},
	}
}

// PutUser adds or replaces a user.
func (d *Directory) PutUser(user domain.User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[user.ID] = user
}

// PutStudent adds or replaces a student.
func (d *Directory) PutStudent(student domain.Student) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.students[student.ID] = student
}

func (d *Directory) ResolveUser(_ context.Context, id string) (*domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	user, ok := d.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (d *Directory) ResolveStudent(_ context.Context, id string) (*domain.Student, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	student, ok := d.students[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &student, nil
}

func (d *Directory) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, user := range d.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}
