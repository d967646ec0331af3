package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/whrcat/cpplearn-api/internal/service"
	"github.com/whrcat/cpplearn-api/internal/utils"
)

// DashboardHandler exposes the learning dashboard endpoint.
type DashboardHandler struct {
	service service.DashboardService
	logger  zerolog.Logger
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logger.With().Str("component", "dashboard_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *DashboardHandler) Register(router fiber.Router) {
	router.Get("", h.dashboard)
}

func (h *DashboardHandler) dashboard(c *fiber.Ctx) error {
	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	response, err := h.service.GetDashboard(c.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Msg("dashboard aggregation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	return utils.SendSuccess(c, "dashboard retrieved", response)
}
