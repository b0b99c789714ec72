package handlers

import (
	"context"
	"net/url"

	"reposition/internal/models"

	"github.com/gofiber/fiber/v2"
)

// CatalogReader serves the club and competition reference data. Satisfied by
// repository.CatalogRepository.
type CatalogReader interface {
	AllClubs(ctx context.Context) ([]models.Club, error)
	ClubsByCountry(ctx context.Context, country string) ([]models.Club, error)
	AllCompetitions(ctx context.Context) ([]models.Competition, error)
	Countries(ctx context.Context) ([]string, error)
	Leagues(ctx context.Context) ([]string, error)
	LeaguesByCountry(ctx context.Context, country string) ([]string, error)
}

// CatalogHandler handles the reference-data lookups the search UI populates
// its filter dropdowns from.
type CatalogHandler struct {
	catalog CatalogReader
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalog CatalogReader) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// Countries handles GET /api/v1/countries
func (h *CatalogHandler) Countries(c *fiber.Ctx) error {
	countries, err := h.catalog.Countries(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"countries": countries})
}

// Competitions handles GET /api/v1/competitions
func (h *CatalogHandler) Competitions(c *fiber.Ctx) error {
	competitions, err := h.catalog.AllCompetitions(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"competitions": competitions})
}

// Leagues handles GET /api/v1/leagues and /api/v1/leagues/country/:country,
// also honoring ?country= on the bare route.
func (h *CatalogHandler) Leagues(c *fiber.Ctx) error {
	country := c.Query("country")
	if p := c.Params("country"); p != "" {
		decoded, err := url.PathUnescape(p)
		if err != nil {
			return respondError(c, err)
		}
		country = decoded
	}

	var leagues []string
	var err error
	if country != "" {
		leagues, err = h.catalog.LeaguesByCountry(c.Context(), country)
	} else {
		leagues, err = h.catalog.Leagues(c.Context())
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"leagues": leagues})
}

// Clubs handles GET /api/v1/clubs, optionally scoped by ?country=
func (h *CatalogHandler) Clubs(c *fiber.Ctx) error {
	var clubs []models.Club
	var err error
	if country := c.Query("country"); country != "" {
		clubs, err = h.catalog.ClubsByCountry(c.Context(), country)
	} else {
		clubs, err = h.catalog.AllClubs(c.Context())
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"clubs": clubs})
}
