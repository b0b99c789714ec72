package handlers

import (
	"context"

	"reposition/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler checks the service's dependencies. Redis degrades gracefully
// elsewhere, but health reports it honestly so operators see the outage.
type HealthHandler struct {
	db    Pinger
	cache Pinger
}

// NewHealthHandler creates a new health handler. cache may be nil.
func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Check handles GET /api/v1/health
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.db.Ping(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error:   "Unhealthy",
			Message: "database unreachable: " + err.Error(),
		})
	}
	if h.cache != nil {
		if err := h.cache.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
				Error:   "Unhealthy",
				Message: "cache unreachable: " + err.Error(),
			})
		}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
}
