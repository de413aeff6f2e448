package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spec-kit/escalation-service/internal/domain"
)

// ErrStaleMatter is returned when a matter update loses a version race.
var ErrStaleMatter = errors.New("matter version changed")

// IsNotFound reports whether err is a missing-row error.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx so read queries can be shared.
type dbtx interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// MatterFilter captures listing parameters for matters.
type MatterFilter struct {
	AssigneeID      *string
	CreatedByID     *string
	InvolvedUserID  *string
	Statuses        []domain.MatterStatus
	ExcludeStatuses []domain.MatterStatus
	Limit           int
	Offset          int
}

// MatterReader exposes read projections over matters and their children.
type MatterReader interface {
	GetMatter(ctx context.Context, id string) (*domain.Matter, error)
	ListMatters(ctx context.Context, filter MatterFilter) ([]domain.Matter, error)
	CountMatters(ctx context.Context, filter MatterFilter) (int, error)
	ListSteps(ctx context.Context, matterID string) ([]domain.Step, error)
	ListMembers(ctx context.Context, matterID string) ([]domain.MatterMember, error)
	ListStudents(ctx context.Context, matterID string) ([]domain.MatterStudent, error)
	IsMember(ctx context.Context, matterID, userID string) (bool, error)
}

// StepAppender is the only write path into the step log.
type StepAppender interface {
	AppendStep(ctx context.Context, step *domain.Step) error
}

// MatterTx is a unit of work over one or more matters.
type MatterTx interface {
	MatterReader
	StepAppender
	// LockMatter loads the matter and holds it against concurrent writers until the tx ends.
	LockMatter(ctx context.Context, id string) (*domain.Matter, error)
	InsertMatter(ctx context.Context, matter *domain.Matter) error
	// UpdateMatter persists state changes when matter.Version still matches the stored
	// row, then advances matter.Version. Returns ErrStaleMatter otherwise.
	UpdateMatter(ctx context.Context, matter *domain.Matter) error
	TouchMatter(ctx context.Context, id string) error
	AddMembers(ctx context.Context, matterID string, userIDs []string) error
	AddStudents(ctx context.Context, matterID string, studentIDs []string) error
}

// MatterStore owns the matters, matter_members, matter_students and matter_steps tables.
type MatterStore interface {
	MatterReader
	WithinTx(ctx context.Context, fn func(tx MatterTx) error) error
}

// OverrideTx is a unit of work over day-close overrides.
type OverrideTx interface {
	// DeactivateScope ends active overrides for userID whose matter scope equals matterID
	// (nil matches general overrides only).
	DeactivateScope(ctx context.Context, userID string, matterID *string, endedBy string, endedAt time.Time) (int, error)
	// DeactivateAll ends every active override for userID.
	DeactivateAll(ctx context.Context, userID string, endedBy string, endedAt time.Time) (int, error)
	Insert(ctx context.Context, override *domain.DayCloseOverride) error
}

// OverrideRepository owns the day_close_overrides table.
type OverrideRepository interface {
	WithinTx(ctx context.Context, fn func(tx OverrideTx) error) error
	HasActive(ctx context.Context, userID string) (bool, error)
	ListByUser(ctx context.Context, userID string, includeInactive bool) ([]domain.DayCloseOverride, error)
}

// Directory resolves users and students owned by the wider portal.
type Directory interface {
	ResolveUser(ctx context.Context, id string) (*domain.User, error)
	ResolveStudent(ctx context.Context, id string) (*domain.Student, error)
}

// UserRepository adds credential lookups used by login.
type UserRepository interface {
	Directory
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TicketTarget is the external ticket record the mirror writes to.
type TicketTarget interface {
	TicketExists(ctx context.Context, ticketID string) (bool, error)
	UpdateTicket(ctx context.Context, ticketID string, patch domain.TicketPatch) error
	AppendTicketActivity(ctx context.Context, ticketID string, entry *domain.TicketActivity) error
}

// NotificationRepository records in-app notifications and delivery attempts.
type NotificationRepository interface {
	CreateInApp(ctx context.Context, n *domain.Notification) error
	RecordDelivery(ctx context.Context, record *domain.DeliveryRecord) error
	ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error)
}
