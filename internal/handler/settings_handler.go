package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/oumizumi/leethub/internal/dto"
	"github.com/oumizumi/leethub/internal/service"
	"github.com/oumizumi/leethub/internal/utils"
	"github.com/oumizumi/leethub/pkg/github"
)

// SettingsHandler serves the options UI.
type SettingsHandler struct {
	settings service.SettingsService
	logger   zerolog.Logger
}

// NewSettingsHandler constructs a settings handler.
func NewSettingsHandler(settings service.SettingsService, logger zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settings: settings,
		logger:   logger.With().Str("component", "settings_handler").Logger(),
	}
}

// Register wires the settings routes.
func (h *SettingsHandler) Register(router fiber.Router) {
	router.Get("/settings", h.get)
	router.Put("/settings", h.update)
	router.Post("/settings/test", h.testAccess)
}

func (h *SettingsHandler) get(c *fiber.Ctx) error {
	response, err := h.settings.Get(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load settings")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load settings")
	}

	return utils.SendSuccess(c, "settings", response)
}

func (h *SettingsHandler) update(c *fiber.Ctx) error {
	var payload dto.SettingsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.settings.Update(c.UserContext(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid settings")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to save settings")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to save settings")
	}

	return utils.SendSuccess(c, "settings saved", response)
}

func (h *SettingsHandler) testAccess(c *fiber.Ctx) error {
	var payload dto.TestAccessRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.settings.TestAccess(c.UserContext(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, "token, owner and repository are required")
		}

		var apiErr *github.APIError
		if errors.As(err, &apiErr) {
			status := fiber.StatusBadGateway
			switch apiErr.Kind {
			case github.KindAuth:
				status = fiber.StatusUnauthorized
			case github.KindNotFound:
				status = fiber.StatusNotFound
			case github.KindRateLimited:
				status = fiber.StatusTooManyRequests
			}
			return utils.SendError(c, status, apiErr.Error())
		}

		requestLogger(h.logger, c).Error().Err(err).Msg("failed to test repository access")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to test repository access")
	}

	return utils.SendSuccess(c, "access verified", response)
}
