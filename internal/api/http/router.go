package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Tickets        *handlers.TicketsHandler
	KB             *handlers.KBHandler
	Agent          *handlers.AgentHandler
	Config         *handlers.ConfigHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    *RateLimiter
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.RateLimiter.Limit("auth", 10, time.Minute), cfg.Users.Register)
	authGroup.Post("/login", cfg.RateLimiter.Limit("auth", 10, time.Minute), cfg.Users.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	api := app.Group("", cfg.AuthMiddleware.Handle, cfg.RateLimiter.Limit("api", 120, time.Minute))

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.CreateTicket)
	tickets.Get("", cfg.Tickets.ListTickets)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Post("/:id/replies", cfg.Tickets.AddReply)
	tickets.Get("/:id/audit.ndjson", cfg.Tickets.ExportAudit)
	tickets.Post("/:id/assign", auth.RequireStaff(), cfg.Tickets.Assign)
	tickets.Patch("/:id/status", auth.RequireStaff(), cfg.Tickets.UpdateStatus)

	kb := api.Group("/kb")
	kb.Get("/search", cfg.KB.Search)
	kb.Get("/articles", cfg.KB.ListArticles)
	kb.Get("/articles/:id", cfg.KB.GetArticle)
	kb.Post("/articles", auth.RequireStaff(), cfg.KB.CreateArticle)
	kb.Put("/articles/:id", auth.RequireStaff(), cfg.KB.UpdateArticle)
	kb.Delete("/articles/:id", auth.RequireStaff(), cfg.KB.DeleteArticle)

	agent := api.Group("/agent", auth.RequireStaff())
	agent.Post("/triage", cfg.Agent.Triage)
	agent.Get("/suggestions/:ticketId", cfg.Agent.GetSuggestion)

	config := api.Group("/config", auth.RequireAdmin())
	config.Get("/triage", cfg.Config.GetPolicy)
	config.Put("/triage", cfg.Config.UpdatePolicy)

	admin := api.Group("/admin", auth.RequireAdmin())
	admin.Post("/staff", cfg.Users.CreateStaff)
}
