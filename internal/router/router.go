package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lumenacademy/progress-api/internal/config"
	"github.com/lumenacademy/progress-api/internal/handler"
	"github.com/lumenacademy/progress-api/internal/middleware"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ProgressHandler    *handler.ProgressHandler
	CertificateHandler *handler.CertificateHandler
	ActivityHandler    *handler.ActivityHandler
	Brokers            handler.BrokerStatus
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.Brokers))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	rateLimit := middleware.RateLimit("progress", cfg.RateLimitMax, cfg.RateLimitWindow)

	if deps.ProgressHandler != nil {
		progress := app.Group("/api/v1", rateLimit)
		deps.ProgressHandler.Register(progress)
	}

	if deps.CertificateHandler != nil {
		certificates := app.Group("/api/v1/certificates", rateLimit)
		deps.CertificateHandler.Register(certificates)
	}

	if deps.ActivityHandler != nil {
		activity := app.Group("/api/v1/activity")
		deps.ActivityHandler.Register(activity)
	}
}
