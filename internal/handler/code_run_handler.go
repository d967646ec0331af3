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

// CodeRunHandler exposes the sandboxed code execution endpoint.
type CodeRunHandler struct {
	service service.CodeRunService
	logger  zerolog.Logger
}

// NewCodeRunHandler constructs the handler.
func NewCodeRunHandler(service service.CodeRunService, logger zerolog.Logger) *CodeRunHandler {
	return &CodeRunHandler{
		service: service,
		logger:  logger.With().Str("component", "code_run_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *CodeRunHandler) Register(router fiber.Router) {
	router.Post("", h.run)
}

func (h *CodeRunHandler) run(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var payload dto.CodeRunRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	response, err := h.service.Run(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "code executed", response)
}

func (h *CodeRunHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrRunnerUnavailable):
		return utils.SendError(c, fiber.StatusServiceUnavailable, "code runner unavailable")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("code run failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
