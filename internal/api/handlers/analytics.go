package handlers

import (
	"net/url"

	"reposition/internal/models"
	"reposition/internal/service"

	"github.com/gofiber/fiber/v2"
)

// paramString returns a path parameter with percent-encoding undone; club
// names routinely carry spaces and accents.
func paramString(c *fiber.Ctx, name string) (string, error) {
	return url.PathUnescape(c.Params(name))
}

// AnalyticsHandler handles team analysis and global stats
type AnalyticsHandler struct {
	service *service.AnalyticsService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// TeamAnalysis handles GET /api/v1/teams/:clubName/analysis
// @Summary Aggregate a club's squad compatibility
// @Produce json
// @Param clubName path string true "Club name, exact or partial"
// @Success 200 {object} models.TeamAnalysisResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/teams/{clubName}/analysis [get]
func (h *AnalyticsHandler) TeamAnalysis(c *fiber.Ctx) error {
	clubName, err := paramString(c, "clubName")
	if err != nil || clubName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid request",
			Message: "club name cannot be empty",
		})
	}
	resp, err := h.service.TeamAnalysis(c.Context(), clubName)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// Stats handles GET /api/v1/stats
// @Summary Catalog-wide counts
// @Produce json
// @Success 200 {object} models.GlobalStats
// @Router /api/v1/stats [get]
func (h *AnalyticsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.GlobalStats(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	// Counts move with every import; never let intermediaries serve stale ones.
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusOK).JSON(stats)
}
