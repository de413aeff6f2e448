package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/events"
	"github.com/spec-kit/escalation-service/internal/mocks"
)

func TestHandleEventRetriesOnlyTransientFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockChannel(ctrl)
	primary.EXPECT().Name().Return("whatsapp").AnyTimes()
	primary.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *domain.User, msg domain.OutboundMessage) error {
			assert.Equal(t, "m1", msg.Meta["matterId"])
			if u.ID == "b" {
				return errors.New("gateway returned 503")
			}
			return nil
		}).Times(2)

	dispatcher, notes, _ := newTestDispatcher(t, primary, nil, time.Second)
	svc := NewNotificationService(events.NewMemoryQueue(4), dispatcher, notes, nil)

	event := events.Event{
		ID:         "e1",
		Type:       events.EventMatterEscalated,
		MatterID:   "m1",
		Recipients: []string{"a", "b", "nophone"},
		Subject:    "Escalated: Broken AC",
	}
	retry, err := svc.HandleEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, retry)

	inApp, err := svc.ListForUser(context.Background(), "b", 10)
	require.NoError(t, err)
	require.Len(t, inApp, 1)
	assert.Equal(t, string(events.EventMatterEscalated), inApp[0].Kind)
}

func TestHandleEventRetryDoesNotDuplicateInApp(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockChannel(ctrl)
	primary.EXPECT().Name().Return("whatsapp").AnyTimes()
	primary.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	dispatcher, notes, _ := newTestDispatcher(t, primary, nil, time.Second)
	svc := NewNotificationService(nil, dispatcher, notes, nil)

	retry, err := svc.HandleEvent(context.Background(), events.Event{
		ID:         "e1",
		Type:       events.EventMatterClosed,
		MatterID:   "m1",
		Recipients: []string{"b"},
		Attempt:    1,
	})
	require.NoError(t, err)
	assert.Empty(t, retry)

	inApp, err := notes.ListForUser(context.Background(), "b", 10)
	require.NoError(t, err)
	assert.Empty(t, inApp)
	assert.Len(t, notes.Deliveries(), 1)
}

func TestNotifyEnqueues(t *testing.T) {
	queue := events.NewMemoryQueue(4)
	svc := NewNotificationService(queue, nil, nil, nil)

	require.NoError(t, svc.Notify(context.Background(), events.Event{ID: "e1", Type: events.EventMatterHeld, Recipients: []string{"t1"}}))

	delivery, err := queue.Dequeue(context.Background(), 10*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, delivery)
	assert.Equal(t, "e1", delivery.Event.ID)

	list, err := svc.ListForUser(context.Background(), "t1", 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}
