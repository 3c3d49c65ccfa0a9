package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Pinger is the slice of the connection pool the health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	DB      Pinger
	Env     string
	started time.Time
}

func NewHealthHandler(db Pinger, env string) *HealthHandler {
	return &HealthHandler{DB: db, Env: env, started: time.Now()}
}

// Check handles GET /health with a database ping.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.DB.Ping(c.Context()); err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Server is up but database is unreachable",
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"status":      "ok",
		"environment": h.Env,
		"uptime":      time.Since(h.started).String(),
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}
