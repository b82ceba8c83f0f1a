package ingredient

import (
	"errors"

	"formulary-manager/core/apperr"
	"formulary-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for ingredients.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the ingredient routes. The static
// merge-suggestions route is registered before the :id routes so it is not
// captured as an id.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/ingredients")
	group.Get("/", h.HandleList)
	group.Get("/variations", h.HandleClusterVariations)
	group.Get("/merge-suggestions", h.HandleMergeSuggestions)
	group.Get("/:id", h.HandleGet)
	group.Get("/:id/compare", h.HandleCompare)
	group.Get("/:id/variations", h.HandleVariations)
	group.Post("/:id/revert", h.HandleRevert)
	group.Delete("/:id", h.HandleDelete)
}

// HandleList returns every canonical ingredient record.
func (h *Handler) HandleList(c *fiber.Ctx) error {
	records, err := h.service.ListIngredients(c.Context())
	if err != nil {
		return h.fail(c, "Ingredient list failed", err)
	}
	return c.JSON(records)
}

// HandleGet returns one canonical ingredient record.
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	record, err := h.service.GetIngredient(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Ingredient lookup failed", err)
	}
	return c.JSON(record)
}

// HandleCompare classifies the working copy against its baseline snapshot.
func (h *Handler) HandleCompare(c *fiber.Ctx) error {
	result, err := h.service.Compare(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Ingredient compare failed", err)
	}
	return c.JSON(result)
}

// HandleVariations returns the similar records for one ingredient. An
// optional threshold query parameter narrows or widens the score window.
func (h *Handler) HandleVariations(c *fiber.Ctx) error {
	threshold := c.QueryInt("threshold", DefaultVariationThreshold)

	variations, err := h.service.FindVariations(c.Context(), c.Params("id"), threshold)
	if err != nil {
		return h.fail(c, "Variation lookup failed", err)
	}
	return c.JSON(variations)
}

// HandleClusterVariations groups the whole population into variation
// clusters.
func (h *Handler) HandleClusterVariations(c *fiber.Ctx) error {
	clusters, err := h.service.ClusterVariations(c.Context(), c.QueryInt("threshold", DefaultVariationThreshold))
	if err != nil {
		return h.fail(c, "Variation clustering failed", err)
	}
	return c.JSON(clusters)
}

// HandleMergeSuggestions returns the population's merge candidates.
func (h *Handler) HandleMergeSuggestions(c *fiber.Ctx) error {
	suggestions, err := h.service.SuggestMerges(c.Context(), c.QueryInt("threshold", 0))
	if err != nil {
		return h.fail(c, "Merge suggestion scan failed", err)
	}
	return c.JSON(suggestions)
}

// HandleRevert restores baseline content into the working copy.
func (h *Handler) HandleRevert(c *fiber.Ctx) error {
	wc, err := h.service.Revert(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, "Ingredient revert failed", err)
	}
	return c.JSON(wc)
}

// HandleDelete removes the record, baseline, and working copy together.
func (h *Handler) HandleDelete(c *fiber.Ctx) error {
	if err := h.service.DeleteIngredient(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, "Ingredient delete failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Error(msg, zap.Error(err))
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// statusFor maps the shared error sentinels onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, apperr.ErrValidation):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
