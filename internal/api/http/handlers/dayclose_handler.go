package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-service/internal/api/dto"
	"github.com/spec-kit/escalation-service/internal/service"
	apperrors "github.com/spec-kit/escalation-service/pkg/util/errorutil"
)

// DayCloseHandler exposes the day-close gate and its overrides.
type DayCloseHandler struct {
	dayClose *service.DayCloseService
}

// NewDayCloseHandler constructs handler.
func NewDayCloseHandler(dayClose *service.DayCloseService) *DayCloseHandler {
	return &DayCloseHandler{dayClose: dayClose}
}

// Status GET /day-close/status.
func (h *DayCloseHandler) Status(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	status, err := h.dayClose.IsPaused(c.UserContext(), actor.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDayCloseStatusResponse(status)})
}

// StatusFor GET /day-close/status/:userId.
func (h *DayCloseHandler) StatusFor(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	status, err := h.dayClose.StatusFor(c.UserContext(), actor, c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDayCloseStatusResponse(status)})
}

// Grant POST /day-close/overrides.
func (h *DayCloseHandler) Grant(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.GrantOverrideRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	override, err := h.dayClose.GrantOverride(c.UserContext(), actor, service.GrantOverrideInput{
		UserID:   req.UserID,
		MatterID: req.MatterID,
		Reason:   req.Reason,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewOverrideResponse(override)})
}

// Revoke POST /day-close/overrides/revoke.
func (h *DayCloseHandler) Revoke(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.RevokeOverrideRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ended, err := h.dayClose.RevokeOverride(c.UserContext(), actor, service.RevokeOverrideInput{
		UserID:   req.UserID,
		MatterID: req.MatterID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.RevokeResponse{Revoked: ended}})
}

// List GET /day-close/overrides?userId=&include_inactive=.
func (h *DayCloseHandler) List(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	includeInactive := false
	if v := c.Query("include_inactive"); v != "" {
		includeInactive, err = strconv.ParseBool(v)
		if err != nil {
			return apperrors.NewValidationError("include_inactive must be a boolean", map[string]any{"field": "include_inactive"})
		}
	}
	overrides, err := h.dayClose.ListOverrides(c.UserContext(), actor, c.Query("userId"), includeInactive)
	if err != nil {
		return err
	}
	items := make([]dto.OverrideResponse, 0, len(overrides))
	for i := range overrides {
		items = append(items, dto.NewOverrideResponse(&overrides[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}
