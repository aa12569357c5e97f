package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthHandler exposes the three infrastructure probes spec §6 names:
// a bare liveness check, a readiness check that confirms the database
// is reachable, and an always-200 health summary for load balancers
// that only understand one endpoint.
type HealthHandler struct {
	pool *pgxpool.Pool
}

// NewHealthHandler constructs the health handler.
func NewHealthHandler(pool *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Live godoc
// @Summary   Liveness probe — the process is running
// @Tags      health
// @Success   200
// @Router    /live [get]
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

// Ready godoc
// @Summary   Readiness probe — the database is reachable
// @Tags      health
// @Success   200
// @Failure   503
// @Router    /ready [get]
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if err := h.pool.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// Health godoc
// @Summary   Health summary
// @Tags      health
// @Success   200
// @Router    /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	status := "ok"
	if err := h.pool.Ping(c.Context()); err != nil {
		status = "degraded"
	}
	return c.JSON(fiber.Map{"status": status})
}
