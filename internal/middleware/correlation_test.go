package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCorrelationIDGeneratesWhenMissing(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		require.NotEmpty(t, GetCorrelationID(c))
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	header := resp.Header.Get("X-Correlation-ID")
	require.NotEmpty(t, header)
	_, err = uuid.Parse(header)
	require.NoError(t, err)
}

func TestCorrelationIDPassesThroughIncoming(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Correlation-ID", "batch-recalc-42")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, "batch-recalc-42", resp.Header.Get("X-Correlation-ID"))
}
