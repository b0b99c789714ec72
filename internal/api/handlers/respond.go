package handlers

import (
	"reposition/internal/apperrors"
	"reposition/internal/models"

	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error onto the transport: invalid arguments are
// the caller's fault, missing records are 404, oracle failures surface as a
// bad gateway, everything else is a 500.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	label := "Internal error"
	switch apperrors.KindOf(err) {
	case apperrors.InvalidArgument:
		status = fiber.StatusBadRequest
		label = "Invalid request"
	case apperrors.NotFound:
		status = fiber.StatusNotFound
		label = "Not found"
	case apperrors.PipelineFailure:
		status = fiber.StatusBadGateway
		label = "Scoring failed"
	}
	return c.Status(status).JSON(models.ErrorResponse{
		Error:   label,
		Message: err.Error(),
	})
}
