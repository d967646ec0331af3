package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/whrcat/cpplearn-api/internal/dto"
	"github.com/whrcat/cpplearn-api/internal/service"
	"github.com/whrcat/cpplearn-api/internal/utils"
)

// KnowledgeHandler exposes the knowledge base endpoints.
type KnowledgeHandler struct {
	service service.KnowledgeService
	logger  zerolog.Logger
}

// NewKnowledgeHandler constructs the handler.
func NewKnowledgeHandler(service service.KnowledgeService, logger zerolog.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{
		service: service,
		logger:  logger.With().Str("component", "knowledge_handler").Logger(),
	}
}

// RegisterRead wires the read-only endpoints.
func (h *KnowledgeHandler) RegisterRead(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/categories", h.categories)
	router.Get("/:id", h.get)
}

// RegisterWrite wires the endpoints reserved for content editors.
func (h *KnowledgeHandler) RegisterWrite(router fiber.Router) {
	router.Post("", h.create)
	router.Put("/:id", h.update)
}

func (h *KnowledgeHandler) list(c *fiber.Ctx) error {
	var query dto.KnowledgeListQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query parameters")
	}

	response, err := h.service.List(c.Context(), query)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "articles retrieved", response)
}

func (h *KnowledgeHandler) categories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "categories retrieved", categories)
}

func (h *KnowledgeHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "article retrieved", response)
}

func (h *KnowledgeHandler) create(c *fiber.Ctx) error {
	var payload dto.KnowledgeArticleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "article created", response)
}

func (h *KnowledgeHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.KnowledgeArticleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "article updated", response)
}

func (h *KnowledgeHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrArticleNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("knowledge operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
