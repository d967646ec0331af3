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

// CodeSubmissionHandler exposes code submission and AI review endpoints.
type CodeSubmissionHandler struct {
	service service.CodeSubmissionService
	logger  zerolog.Logger
}

// NewCodeSubmissionHandler constructs the handler.
func NewCodeSubmissionHandler(service service.CodeSubmissionService, logger zerolog.Logger) *CodeSubmissionHandler {
	return &CodeSubmissionHandler{
		service: service,
		logger:  logger.With().Str("component", "code_submission_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *CodeSubmissionHandler) Register(router fiber.Router) {
	router.Post("", h.submit)
	router.Get("", h.listMine)
	router.Get("/:id", h.get)
}

func (h *CodeSubmissionHandler) submit(c *fiber.Ctx) error {
	var payload dto.CodeSubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	response, err := h.service.Submit(c.Context(), userID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "submission reviewed", response)
}

func (h *CodeSubmissionHandler) listMine(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}

	response, err := h.service.ListMine(c.Context(), userID, limit)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", response)
}

func (h *CodeSubmissionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Get(c.Context(), id, userIDFromContext(c), userRoleFromContext(c))
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submission retrieved", response)
}

func (h *CodeSubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrProblemNotFound), errors.Is(err, service.ErrSubmissionNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrSubmissionForbidden):
		return utils.SendError(c, fiber.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrReviewUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "AI review temporarily unavailable")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("submission operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
