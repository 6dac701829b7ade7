package handlers

import (
	"context"
	"time"

	"taskboard/cmd/server/handlers/handlerutil"
	"taskboard/internal/logger"

	"github.com/gofiber/fiber/v2"
)

// HealthTimeout bounds the database ping.
const HealthTimeout = 5 * time.Second

// Health reports whether the server can reach its database.
// @Summary Health check
// @Description Pings the database. 503 when it is unreachable.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func Health(ping func(context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), HealthTimeout)
		defer cancel()

		if err := ping(ctx); err != nil {
			logger.L().Warn("health check failed", "request_id", handlerutil.RequestID(c), "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "DOWN"})
		}
		return c.JSON(fiber.Map{"status": "OK"})
	}
}
