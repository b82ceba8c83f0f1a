package importing

import (
	"errors"

	"formulary-manager/core/apperr"
	"formulary-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AnalyzeRequest is the analyze endpoint's payload: the raw batch exactly as
// exported, loosely typed.
type AnalyzeRequest struct {
	Ingredients []map[string]any `json:"ingredients"`
}

// ExecuteRequest is the execute endpoint's payload: the raw batch plus the
// caller's per-record decisions, keyed by slug id.
type ExecuteRequest struct {
	Ingredients []map[string]any         `json:"ingredients"`
	Decisions   map[string]MergeDecision `json:"decisions"`
}

// Handler handles HTTP requests for imports.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the import routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/import")
	group.Post("/analyze", h.HandleAnalyze)
	group.Post("/execute", h.HandleExecute)
}

// HandleAnalyze classifies a batch without writing anything.
func (h *Handler) HandleAnalyze(c *fiber.Ctx) error {
	var req AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, err := h.service.Analyze(c.Context(), req.Ingredients)
	if err != nil {
		l := logger.WithRayID(h.service.logger, c)
		l.Error("Import analysis failed", zap.Error(err))

		status := fiber.StatusInternalServerError
		if errors.Is(err, apperr.ErrFetch) {
			status = fiber.StatusBadGateway
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}

// HandleExecute commits a batch. The response carries per-record outcomes;
// a partially failed batch still returns 200 with success=false so the
// caller can see exactly which records went through.
func (h *Handler) HandleExecute(c *fiber.Ctx) error {
	var req ExecuteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	return c.JSON(h.service.Execute(c.Context(), req.Ingredients, req.Decisions))
}
