package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lumenacademy/progress-api/internal/config"
	"github.com/lumenacademy/progress-api/internal/utils"
)

// BrokerStatus reports which optional event brokers the process holds a live
// connection to. The engine runs without either.
type BrokerStatus struct {
	Redis bool
	NATS  bool
}

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Service     string            `json:"service"`
	Environment string            `json:"environment"`
	Brokers     map[string]string `json:"brokers"`
}

// HealthCheck returns a handler that reports application health and broker
// connectivity.
func HealthCheck(cfg config.Config, brokers BrokerStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC(),
			Service:     cfg.AppName,
			Environment: cfg.AppEnv,
			Brokers: map[string]string{
				"redis": brokerState(brokers.Redis),
				"nats":  brokerState(brokers.NATS),
			},
		}

		return utils.SendSuccess(c, "service healthy", payload)
	}
}

func brokerState(connected bool) string {
	if connected {
		return "connected"
	}
	return "disabled"
}
