package handlers

import (
	"context"
	"io"

	"reposition/internal/jobs"
	"reposition/internal/models"
	"reposition/internal/pipeline"

	"github.com/gofiber/fiber/v2"
)

// maxUploadBytes caps one CSV upload at 10 MiB.
const maxUploadBytes = 10 << 20

// UploadHandler handles CSV scoring uploads and the bulk analysis trigger
type UploadHandler struct {
	pipeline *pipeline.Pipeline
	analyzer *jobs.Analyzer
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(pipeline *pipeline.Pipeline, analyzer *jobs.Analyzer) *UploadHandler {
	return &UploadHandler{pipeline: pipeline, analyzer: analyzer}
}

// Upload handles POST /api/v1/compatibility/upload
// @Summary Score an uploaded CSV
// @Description Runs the scoring model over the uploaded rows and persists the results
// @Accept multipart/form-data
// @Produce json
// @Param csvFile formData file true "CSV document to score"
// @Success 200 {object} models.UploadResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/v1/compatibility/upload [post]
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	header, err := c.FormFile("csvFile")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid request",
			Message: "multipart field csvFile is required",
		})
	}
	if header.Size > maxUploadBytes {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid request",
			Message: "upload exceeds the 10 MiB limit",
		})
	}

	file, err := header.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return respondError(c, err)
	}

	resp, err := h.pipeline.Score(c.Context(), data)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// Analyze handles POST /api/v1/admin/analyze
// @Summary Score every player missing a compatibility record
// @Produce json
// @Success 202 {object} map[string]interface{}
// @Failure 409 {object} models.ErrorResponse
// @Router /api/v1/admin/analyze [post]
func (h *UploadHandler) Analyze(c *fiber.Ctx) error {
	if h.analyzer.Running() {
		return c.Status(fiber.StatusConflict).JSON(models.ErrorResponse{
			Error:   "Conflict",
			Message: "bulk analysis already running",
		})
	}
	// Detached from the request context: the run can outlive this call by minutes.
	go h.analyzer.Run(context.Background())

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "started",
	})
}

// AnalyzeStatus handles GET /api/v1/admin/analyze
func (h *UploadHandler) AnalyzeStatus(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"running": h.analyzer.Running(),
	})
}
