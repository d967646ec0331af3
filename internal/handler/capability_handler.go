package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/whrcat/cpplearn-api/internal/service"
	"github.com/whrcat/cpplearn-api/internal/utils"
)

// CapabilityHandler exposes the capability profile radar endpoint.
type CapabilityHandler struct {
	service service.CapabilityService
	logger  zerolog.Logger
}

// NewCapabilityHandler constructs the handler.
func NewCapabilityHandler(service service.CapabilityService, logger zerolog.Logger) *CapabilityHandler {
	return &CapabilityHandler{
		service: service,
		logger:  logger.With().Str("component", "capability_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *CapabilityHandler) Register(router fiber.Router) {
	router.Get("/radar", h.radar)
}

func (h *CapabilityHandler) radar(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	response, err := h.service.GetRadar(c.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("radar lookup failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "capability radar retrieved", response)
}
