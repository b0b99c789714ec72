package handlers

import (
	"strconv"

	"reposition/internal/models"
	"reposition/internal/service"

	"github.com/gofiber/fiber/v2"
)

// FavoriteHandler handles per-user player favorites. The user is identified
// by the X-User-ID header; authentication lives upstream of this service.
type FavoriteHandler struct {
	service *service.FavoriteService
}

// NewFavoriteHandler creates a new favorite handler
func NewFavoriteHandler(service *service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// List handles GET /api/v1/favorites
func (h *FavoriteHandler) List(c *fiber.Ctx) error {
	userID, ok := userID(c)
	if !ok {
		return missingUser(c)
	}
	players, err := h.service.List(c.Context(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count":   len(players),
		"players": players,
	})
}

// Add handles POST /api/v1/favorites/:playerID
func (h *FavoriteHandler) Add(c *fiber.Ctx) error {
	userID, ok := userID(c)
	if !ok {
		return missingUser(c)
	}
	playerID, err := c.ParamsInt("playerID")
	if err != nil {
		return badPlayerID(c)
	}
	if err := h.service.Add(c.Context(), userID, playerID); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"favorited": true})
}

// Remove handles DELETE /api/v1/favorites/:playerID
func (h *FavoriteHandler) Remove(c *fiber.Ctx) error {
	userID, ok := userID(c)
	if !ok {
		return missingUser(c)
	}
	playerID, err := c.ParamsInt("playerID")
	if err != nil {
		return badPlayerID(c)
	}
	if err := h.service.Remove(c.Context(), userID, playerID); err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"favorited": false})
}

// Status handles GET /api/v1/favorites/:playerID/status
func (h *FavoriteHandler) Status(c *fiber.Ctx) error {
	userID, ok := userID(c)
	if !ok {
		return missingUser(c)
	}
	playerID, err := c.ParamsInt("playerID")
	if err != nil {
		return badPlayerID(c)
	}
	favorited, err := h.service.IsFavorited(c.Context(), userID, playerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"favorited": favorited})
}

func userID(c *fiber.Ctx) (int, bool) {
	raw := c.Get("X-User-ID")
	if raw == "" {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func missingUser(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error:   "Invalid request",
		Message: "X-User-ID header must be a positive integer",
	})
}

func badPlayerID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error:   "Invalid request",
		Message: "playerID must be an integer",
	})
}
