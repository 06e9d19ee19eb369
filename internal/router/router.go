package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oumizumi/leethub/internal/config"
	"github.com/oumizumi/leethub/internal/handler"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	MessageHandler  *handler.MessageHandler
	ActivityHandler *handler.ActivityHandler
	SettingsHandler *handler.SettingsHandler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	if deps.MessageHandler != nil {
		deps.MessageHandler.Register(api)
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(api)
	}
	if deps.SettingsHandler != nil {
		deps.SettingsHandler.Register(api)
	}

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
