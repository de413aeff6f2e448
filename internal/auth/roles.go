package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-service/internal/domain"
	apperrors "github.com/spec-kit/escalation-service/pkg/util/errorutil"
)

// CapabilityResolver maps a role to its capabilities.
type CapabilityResolver interface {
	Capabilities(role domain.Role) domain.CapabilitySet
}

// RequireAuthenticated ensures an actor is present.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := ActorFromContext(c); !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		return c.Next()
	}
}

// RequireCapability ensures the actor's role grants every listed capability.
func RequireCapability(policy CapabilityResolver, caps ...domain.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !policy.Capabilities(actor.Role).Has(caps...) {
			return apperrors.NewForbidden("insufficient permissions")
		}
		return c.Next()
	}
}
