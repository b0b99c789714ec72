package handlers

import (
	"strconv"

	"reposition/internal/models"
	"reposition/internal/service"

	"github.com/gofiber/fiber/v2"
)

// PlayerHandler handles HTTP requests for player search and detail
type PlayerHandler struct {
	service *service.PlayerService
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(service *service.PlayerService) *PlayerHandler {
	return &PlayerHandler{service: service}
}

// Search handles GET /api/v1/players
// @Summary Search players
// @Description Filters and ranks players; every present filter narrows the result
// @Produce json
// @Param name query string false "Substring match on player name"
// @Param position query string false "Exact match on position or sub-position"
// @Param team query string false "Substring match on club name"
// @Param country query string false "Country of the club's domestic competition"
// @Param ageMin query int false "Minimum age"
// @Param ageMax query int false "Maximum age"
// @Param minCompatibility query number false "Minimum fit score for the position filter"
// @Param sortBy query string false "compatibility | overall | age | market_value"
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size; absent or 0 returns everything" default(0)
// @Success 200 {array} models.PlayerWithCompatibility
// @Failure 400 {object} models.ErrorResponse
// @Router /api/v1/players [get]
func (h *PlayerHandler) Search(c *fiber.Ctx) error {
	filters := models.SearchFilters{
		Name:     c.Query("name"),
		Position: c.Query("position"),
		Team:     c.Query("team"),
		Country:  c.Query("country"),
		SortBy:   c.Query("sortBy"),
	}

	var err error
	if filters.AgeMin, err = optionalInt(c, "ageMin"); err != nil {
		return badQueryParam(c, "ageMin")
	}
	if filters.AgeMax, err = optionalInt(c, "ageMax"); err != nil {
		return badQueryParam(c, "ageMax")
	}
	if filters.MinCompatibility, err = optionalFloat(c, "minCompatibility"); err != nil {
		return badQueryParam(c, "minCompatibility")
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	// pageSize 0 (the default) returns the entire ordered set.
	pageSize := c.QueryInt("pageSize", 0)
	if pageSize < 0 {
		pageSize = 0
	}

	players, err := h.service.Search(c.Context(), filters, page, pageSize)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count":    len(players),
		"page":     page,
		"pageSize": pageSize,
		"players":  players,
	})
}

// Get handles GET /api/v1/players/:playerID
// @Summary Get one player
// @Produce json
// @Param playerID path int true "External player id"
// @Success 200 {object} models.PlayerWithCompatibility
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/players/{playerID} [get]
func (h *PlayerHandler) Get(c *fiber.Ctx) error {
	playerID, err := c.ParamsInt("playerID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid request",
			Message: "playerID must be an integer",
		})
	}
	player, err := h.service.Get(c.Context(), playerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(player)
}

// Compatibility handles GET /api/v1/players/:playerID/compatibility
// @Summary Get a player's compatibility record
// @Produce json
// @Param playerID path int true "External player id"
// @Success 200 {object} models.PositionCompatibility
// @Failure 404 {object} models.ErrorResponse
// @Router /api/v1/players/{playerID}/compatibility [get]
func (h *PlayerHandler) Compatibility(c *fiber.Ctx) error {
	playerID, err := c.ParamsInt("playerID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid request",
			Message: "playerID must be an integer",
		})
	}
	rec, err := h.service.Compatibility(c.Context(), playerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(rec)
}

func optionalInt(c *fiber.Ctx, name string) (*int, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func optionalFloat(c *fiber.Ctx, name string) (*float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func badQueryParam(c *fiber.Ctx, name string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error:   "Invalid request",
		Message: name + " must be numeric",
	})
}
