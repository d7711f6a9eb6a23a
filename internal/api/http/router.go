package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"

	"github.com/spec-kit/lead-lens/internal/api/http/handlers"
	"github.com/spec-kit/lead-lens/internal/auth"
	"github.com/spec-kit/lead-lens/internal/domain"
	"github.com/spec-kit/lead-lens/internal/observability"
	"github.com/spec-kit/lead-lens/internal/ratelimit"
	"github.com/spec-kit/lead-lens/internal/service"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Contacts       *handlers.ContactsHandler
	Metadata       *handlers.MetadataHandler
	Principals     *service.PrincipalService
	AuthMiddleware *auth.AuthMiddleware
	LoginLimiter   ratelimit.Limiter
	Metrics        *observability.Metrics
	Logger         *zap.Logger
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", loginRateLimit(cfg.LoginLimiter, logger), cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/verify", cfg.AuthMiddleware.Handle, cfg.Auth.Verify)
	authGroup.Patch("/password", cfg.AuthMiddleware.Handle, cfg.Auth.ChangePassword)

	contacts := api.Group("/contacts", cfg.AuthMiddleware.Handle)
	contacts.Get("/", cfg.Contacts.List)
	contacts.Patch("/", cfg.Contacts.BulkUpdate)
	contacts.Get("/:id/activity", cfg.Contacts.Activity)
	contacts.Get("/:id/history", cfg.Contacts.History)

	api.Get("/metadata/dropdowns", cfg.AuthMiddleware.Handle, cfg.Metadata.Dropdowns)

	registerPrincipalRoutes(api.Group("/admins", cfg.AuthMiddleware.Handle, auth.RequireAdmin()),
		handlers.NewPrincipalsHandler(cfg.Principals, domain.RoleAdmin))
	registerPrincipalRoutes(api.Group("/loan-officers", cfg.AuthMiddleware.Handle, auth.RequireAdmin()),
		handlers.NewPrincipalsHandler(cfg.Principals, domain.RoleLoanOfficer))
	registerPrincipalRoutes(api.Group("/agents", cfg.AuthMiddleware.Handle, auth.RequireAdmin()),
		handlers.NewPrincipalsHandler(cfg.Principals, domain.RoleAgent))
}

func registerPrincipalRoutes(group fiber.Router, h *handlers.PrincipalsHandler) {
	group.Get("/", h.List)
	group.Post("/", h.Create)
	group.Patch("/:id", h.Update)
	group.Delete("/:id", h.Delete)
	group.Post("/:id/regenerate-code", h.RegenerateCode)
}
