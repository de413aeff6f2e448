package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/escalation-service/internal/api/http/handlers"
	"github.com/spec-kit/escalation-service/internal/auth"
	"github.com/spec-kit/escalation-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Escalations    *handlers.EscalationsHandler
	DayClose       *handlers.DayCloseHandler
	Notifications  *handlers.NotificationsHandler
	AuthMiddleware *auth.AuthMiddleware
	Policy         auth.CapabilityResolver
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(),
		auth.RequireCapability(cfg.Policy, domain.CapManageEscalations), cfg.Health.Metrics)

	app.Post("/auth/login", cfg.Auth.Login)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())

	esc := api.Group("/escalations")
	esc.Post("/", auth.RequireCapability(cfg.Policy, domain.CapRaiseEscalations), cfg.Escalations.Create)
	esc.Get("/for-you", cfg.Escalations.ForYou)
	esc.Get("/raised-by-me", cfg.Escalations.RaisedByMe)
	esc.Get("/open", cfg.Escalations.Open)
	esc.Get("/closed", cfg.Escalations.Closed)
	esc.Get("/counts", cfg.Escalations.Counts)
	esc.Get("/:id", cfg.Escalations.Detail)
	esc.Get("/:id/timeline", cfg.Escalations.Timeline)
	esc.Post("/:id/escalate", cfg.Escalations.Escalate)
	esc.Post("/:id/hold", cfg.Escalations.Hold)
	esc.Post("/:id/withdraw", cfg.Escalations.Withdraw)
	esc.Post("/:id/close", cfg.Escalations.Close)
	esc.Post("/:id/progress", cfg.Escalations.Progress)
	esc.Post("/:id/remind", cfg.Escalations.Remind)
	esc.Post("/:id/link-ticket", cfg.Escalations.LinkTicket)

	dayClose := api.Group("/day-close")
	dayClose.Get("/status", cfg.DayClose.Status)
	dayClose.Get("/status/:userId", cfg.DayClose.StatusFor)
	dayClose.Get("/overrides", cfg.DayClose.List)
	dayClose.Post("/overrides", auth.RequireCapability(cfg.Policy, domain.CapManageDayClose), cfg.DayClose.Grant)
	dayClose.Post("/overrides/revoke", auth.RequireCapability(cfg.Policy, domain.CapManageDayClose), cfg.DayClose.Revoke)

	api.Get("/notifications", cfg.Notifications.List)
}
