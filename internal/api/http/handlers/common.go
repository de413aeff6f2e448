package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-service/internal/auth"
	"github.com/spec-kit/escalation-service/internal/domain"
	"github.com/spec-kit/escalation-service/internal/service"
	apperrors "github.com/spec-kit/escalation-service/pkg/util/errorutil"
)

func currentActor(c *fiber.Ctx) (domain.Actor, error) {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return domain.Actor{}, apperrors.NewUnauthorized("authentication required")
	}
	return *actor, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

func parsePage(c *fiber.Ctx) (service.Page, error) {
	page := service.Page{}
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return page, apperrors.NewValidationError("page must be a positive integer", map[string]any{"field": "page"})
		}
		page.Number = n
	}
	if v := c.Query("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return page, apperrors.NewValidationError("page_size must be a positive integer", map[string]any{"field": "page_size"})
		}
		page.Size = n
	}
	return page, nil
}

// expectedVersion reads If-Match. Accepted forms: 3, "3" and W/"3".
func expectedVersion(c *fiber.Ctx) (*int, error) {
	raw := strings.TrimSpace(c.Get(fiber.HeaderIfMatch))
	if raw == "" || raw == "*" {
		return nil, nil
	}
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)
	version, err := strconv.Atoi(raw)
	if err != nil || version < 1 {
		return nil, apperrors.NewValidationError("If-Match must carry a matter version", map[string]any{"header": fiber.HeaderIfMatch})
	}
	return &version, nil
}

func setVersion(c *fiber.Ctx, m *domain.Matter) {
	if m != nil {
		c.Set(fiber.HeaderETag, `"`+strconv.Itoa(m.Version)+`"`)
	}
}
