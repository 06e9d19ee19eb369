package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/oumizumi/leethub/internal/service"
	"github.com/oumizumi/leethub/internal/utils"
)

// ActivityHandler serves the popup's read-only views.
type ActivityHandler struct {
	activity service.ActivityService
	logger   zerolog.Logger
}

// NewActivityHandler constructs an activity handler.
func NewActivityHandler(activity service.ActivityService, logger zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activity: activity,
		logger:   logger.With().Str("component", "activity_handler").Logger(),
	}
}

// Register wires the activity routes.
func (h *ActivityHandler) Register(router fiber.Router) {
	router.Get("/activity", h.log)
	router.Get("/statistics", h.statistics)
	router.Get("/auto-push", h.autoPush)
}

func (h *ActivityHandler) log(c *fiber.Ctx) error {
	entries, err := h.activity.Log(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load activity log")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load activity log")
	}

	return utils.SendSuccess(c, "activity log", entries)
}

func (h *ActivityHandler) statistics(c *fiber.Ctx) error {
	stats, err := h.activity.Statistics(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load statistics")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load statistics")
	}

	return utils.SendSuccess(c, "statistics", stats)
}

func (h *ActivityHandler) autoPush(c *fiber.Ctx) error {
	enabled, err := h.activity.AutoPushEnabled(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to check auto-push flag")
		enabled = true
	}

	return utils.SendSuccess(c, "auto-push flag", fiber.Map{"enabled": enabled})
}
