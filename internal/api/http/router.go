package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/cockpit-service/internal/api/http/handlers"
	"github.com/spec-kit/cockpit-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Cockpit        *handlers.CockpitHandler
	Tickets        *handlers.TicketsHandler
	Devices        *handlers.DevicesHandler
	Actions        *handlers.ActionsHandler
	Cache          *handlers.CacheHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1", cfg.AuthMiddleware.Handle)

	api.Get("/health/integrations", cfg.Health.Integrations)
	api.Get("/health/integrations/:service", cfg.Health.IntegrationStats)
	api.Get("/metrics", cfg.Health.Metrics)

	cockpit := api.Group("/cockpit")
	cockpit.Get("/tickets", cfg.Cockpit.Tickets)
	cockpit.Post("/tickets/more", cfg.Cockpit.LoadMore)
	cockpit.Get("/tickets/:number", cfg.Cockpit.TicketDetail)
	cockpit.Get("/search", cfg.Cockpit.Search)

	api.Get("/tickets/:number", cfg.Tickets.GetTicket)
	api.Get("/tickets/:number/solution-summary", cfg.Tickets.SolutionSummary)

	api.Get("/users/:user/devices", cfg.Devices.UserDevices)
	api.Get("/devices/:name", cfg.Devices.GetDevice)

	api.Get("/actions", cfg.Actions.History)
	api.Post("/actions/execute", cfg.Actions.Execute)
	api.Post("/recommendations", cfg.Actions.Recommend)

	api.Get("/cache/stats", cfg.Cache.Stats)
	api.Delete("/cache/clear", cfg.Cache.Clear)
	api.Delete("/cache/pattern/:pattern", cfg.Cache.DeletePattern)
}
