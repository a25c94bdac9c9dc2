package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/fms-support/internal/api/http/handlers"
	"github.com/spec-kit/fms-support/internal/auth"
	"github.com/spec-kit/fms-support/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Org            *handlers.OrgHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated(), cfg.Auth.ChangePassword)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	tickets.Post("/", cfg.Tickets.CreateTicket)
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id/stages", cfg.Tickets.UpdateStage)
	tickets.Post("/:id/staging", cfg.Tickets.MarkStaging)
	tickets.Post("/:id/staging/back", auth.RequireRole(domain.RoleAdmin), cfg.Tickets.StagingBack)
	tickets.Post("/:id/approve", auth.RequireApprover(), cfg.Tickets.Approve)
	tickets.Post("/:id/unapprove", auth.RequireApprover(), cfg.Tickets.Unapprove)
	tickets.Post("/:id/approval/toggle", auth.RequireApprover(), cfg.Tickets.ToggleApproval)
	tickets.Post("/:id/quality-solution", cfg.Tickets.SubmitQualitySolution)
	tickets.Post("/:id/responses", cfg.Tickets.AddResponse)

	org := app.Group("/org", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	org.Get("/companies", cfg.Org.ListCompanies)
	org.Get("/companies/:id/divisions", cfg.Org.ListDivisions)

	orgAdmin := org.Group("", auth.RequireRole(domain.RoleAdmin))
	orgAdmin.Post("/companies", cfg.Org.CreateCompany)
	orgAdmin.Post("/divisions", cfg.Org.CreateDivision)
	orgAdmin.Post("/accounts", cfg.Org.CreateAccount)
	orgAdmin.Patch("/accounts/:id/role", cfg.Org.SetAccountRole)
	orgAdmin.Patch("/accounts/:id/status", cfg.Org.SetAccountStatus)
}
