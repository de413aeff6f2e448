package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/escalation-service/internal/config"
	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/events"
	"github.com/spec-kit/escalation-service/internal/mocks"
	"github.com/spec-kit/escalation-service/internal/observability"
	"github.com/spec-kit/escalation-service/internal/repository/memory"
	apperrors "github.com/spec-kit/escalation-service/pkg/util/errorutil"
)

// Directory users shared by the service tests.
const (
	creatorID   = "t1"
	l1ID        = "42"
	l2ID        = "7"
	memberID    = "9"
	adminID     = "admin"
	outsiderID  = "outsider"
	inactiveID  = "inactive"
	parentID    = "parent"
	studentID   = "s1"
	ticketID    = "T-1"
	channelName = "whatsapp"
)

type fixture struct {
	svc      *MatterService
	dayClose *DayCloseService
	store    *memory.MatterStore
	dir      *memory.Directory
	tickets  *memory.TicketStore
	notes    *memory.NotificationStore
	queue    events.Queue
	primary  *mocks.MockChannel
	metrics  *observability.Metrics
	policy   *Policy
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	dir := memory.NewDirectory()
	dir.PutUser(domain.User{ID: creatorID, Name: "Tina Teacher", Role: domain.RoleTeacher, WhatsApp: "+100", Email: "tina@school.test", Active: true})
	dir.PutUser(domain.User{ID: l1ID, Name: "Lee Coordinator", Role: domain.RoleCoordinator, WhatsApp: "+142", Active: true})
	dir.PutUser(domain.User{ID: l2ID, Name: "Pat Principal", Role: domain.RolePrincipal, WhatsApp: "+107", Active: true})
	dir.PutUser(domain.User{ID: memberID, Name: "Sam Staff", Role: domain.RoleStaff, Active: true})
	dir.PutUser(domain.User{ID: adminID, Name: "Ada Admin", Role: domain.RoleAdmin, WhatsApp: "+1", Active: true})
	dir.PutUser(domain.User{ID: outsiderID, Name: "Oscar Outsider", Role: domain.RoleTeacher, WhatsApp: "+199", Active: true})
	dir.PutUser(domain.User{ID: inactiveID, Name: "Ivy Inactive", Role: domain.RoleCoordinator, WhatsApp: "+155", Active: false})
	dir.PutUser(domain.User{ID: parentID, Name: "Paula Parent", Role: domain.Role("PARENT"), Active: true})
	dir.PutStudent(domain.Student{ID: studentID, Name: "Stu Dent", Class: "7A"})

	tickets := memory.NewTicketStore()
	tickets.PutTicket(ticketID, "open")

	primary := mocks.NewMockChannel(ctrl)
	primary.EXPECT().Name().Return(channelName).AnyTimes()

	metrics := observability.NewMetrics()
	notes := memory.NewNotificationStore()
	policy := NewPolicy(config.DefaultEscalationConfig())
	store := memory.NewMatterStore()
	queue := events.NewMemoryQueue(64)
	logger := zap.NewNop()

	dispatcher := NewNotificationDispatcher(DispatcherDependencies{
		Directory:     dir,
		Primary:       primary,
		Notifications: notes,
		Timeout:       time.Second,
		Logger:        logger,
		Metrics:       metrics,
	})

	svc := NewMatterService(MatterDependencies{
		Store:      store,
		Directory:  dir,
		Tickets:    tickets,
		Policy:     policy,
		Mirror:     NewTicketMirror(tickets, logger, metrics),
		Dispatcher: dispatcher,
		Notifier:   NewNotificationService(queue, dispatcher, notes, logger),
		Logger:     logger,
		Metrics:    metrics,
	})
	dayClose := NewDayCloseService(DayCloseDependencies{
		Matters:   store,
		Overrides: memory.NewOverrideRepository(),
		Directory: dir,
		Policy:    policy,
		Logger:    logger,
	})

	return &fixture{
		svc:      svc,
		dayClose: dayClose,
		store:    store,
		dir:      dir,
		tickets:  tickets,
		notes:    notes,
		queue:    queue,
		primary:  primary,
		metrics:  metrics,
		policy:   policy,
	}
}

func (f *fixture) actor(t *testing.T, id string) domain.Actor {
	t.Helper()
	user, err := f.dir.ResolveUser(context.Background(), id)
	require.NoError(t, err)
	return domain.Actor{UserID: user.ID, Name: user.Name, Role: user.Role}
}

// create raises a matter from creatorID assigned to l1ID.
func (f *fixture) create(t *testing.T, mutate ...func(in *CreateMatterInput)) *domain.Matter {
	t.Helper()
	input := CreateMatterInput{Title: "Broken AC", Description: "Room 12 is too hot", L1AssigneeID: l1ID}
	for _, fn := range mutate {
		fn(&input)
	}
	result, err := f.svc.CreateMatter(context.Background(), f.actor(t, creatorID), input)
	require.NoError(t, err)
	return result.Matter
}

func (f *fixture) steps(t *testing.T, matterID string) []domain.Step {
	t.Helper()
	steps, err := f.store.ListSteps(context.Background(), matterID)
	require.NoError(t, err)
	return steps
}

func (f *fixture) matter(t *testing.T, matterID string) *domain.Matter {
	t.Helper()
	m, err := f.store.GetMatter(context.Background(), matterID)
	require.NoError(t, err)
	return m
}

// drain returns every queued lifecycle event.
func (f *fixture) drain(t *testing.T) []events.Event {
	t.Helper()
	var out []events.Event
	for {
		d, err := f.queue.Dequeue(context.Background(), 10*time.Millisecond)
		require.NoError(t, err)
		if d == nil {
			return out
		}
		require.NoError(t, f.queue.Ack(context.Background(), d))
		out = append(out, d.Event)
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperrors.CodeOf(err), "error: %v", err)
}
