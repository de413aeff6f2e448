package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-service/internal/api/dto"
	"github.com/spec-kit/escalation-service/internal/service"
	apperrors "github.com/spec-kit/escalation-service/pkg/util/errorutil"
)

// NotificationsHandler lists the caller's in-app notifications.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List GET /notifications?limit=.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 || limit > 200 {
			return apperrors.NewValidationError("limit must be between 1 and 200", map[string]any{"field": "limit"})
		}
	}
	items, err := h.notifications.ListForUser(c.UserContext(), actor.UserID, limit)
	if err != nil {
		return err
	}
	out := make([]dto.NotificationResponse, 0, len(items))
	for i := range items {
		out = append(out, dto.NewNotificationResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}
