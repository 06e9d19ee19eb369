package handler

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/oumizumi/leethub/internal/dto"
	"github.com/oumizumi/leethub/internal/models"
	"github.com/oumizumi/leethub/internal/service"
	"github.com/oumizumi/leethub/internal/utils"
)

// MessageHandler serves the action-dispatch protocol the page watcher speaks.
// Responses use the protocol's own shapes rather than the REST envelope, so
// the watcher can decode them directly.
type MessageHandler struct {
	push     service.PushService
	activity service.ActivityService
	logger   zerolog.Logger
}

// NewMessageHandler constructs a message handler.
func NewMessageHandler(push service.PushService, activity service.ActivityService, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		push:     push,
		activity: activity,
		logger:   logger.With().Str("component", "message_handler").Logger(),
	}
}

// Register wires the message endpoint.
func (h *MessageHandler) Register(router fiber.Router) {
	router.Post("/messages", h.dispatch)
}

func (h *MessageHandler) dispatch(c *fiber.Ctx) error {
	var message dto.MessageRequest
	if err := c.BodyParser(&message); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid message payload")
	}

	switch message.Action {
	case dto.ActionAcceptedSubmission:
		return h.acceptedSubmission(c, message.Data)
	case dto.ActionGetActivityLog:
		return h.activityLog(c)
	case dto.ActionGetStatistics:
		return h.statistics(c)
	case dto.ActionCheckAutoPush:
		return h.checkAutoPush(c)
	default:
		return utils.SendError(c, fiber.StatusBadRequest, "unknown action")
	}
}

func (h *MessageHandler) acceptedSubmission(c *fiber.Ctx, data json.RawMessage) error {
	var submission models.Submission
	if len(data) > 0 {
		if err := json.Unmarshal(data, &submission); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid submission payload")
		}
	}

	logger := requestLogger(h.logger, c)

	result, err := h.push.Submit(c.UserContext(), submission)
	if err != nil {
		if isValidationError(err) {
			logger.Warn().Err(err).Msg("rejected incomplete submission")
			return c.Status(fiber.StatusOK).JSON(dto.PushResponse{Error: "incomplete submission"})
		}
		logger.Error().Err(err).Msg("failed to process submission")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to process submission")
	}

	return c.Status(fiber.StatusOK).JSON(dto.NewPushResponse(result))
}

func (h *MessageHandler) activityLog(c *fiber.Ctx) error {
	entries, err := h.activity.Log(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load activity log")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load activity log")
	}

	return c.Status(fiber.StatusOK).JSON(dto.ActivityLogResponse{Success: true, Log: entries})
}

func (h *MessageHandler) statistics(c *fiber.Ctx) error {
	stats, err := h.activity.Statistics(c.UserContext())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load statistics")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load statistics")
	}

	return c.Status(fiber.StatusOK).JSON(dto.StatisticsResponse{Success: true, Statistics: stats})
}

func (h *MessageHandler) checkAutoPush(c *fiber.Ctx) error {
	enabled, err := h.activity.AutoPushEnabled(c.UserContext())
	if err != nil {
		// The toggle check must never block a push, report enabled.
		requestLogger(h.logger, c).Warn().Err(err).Msg("failed to check auto-push flag")
		enabled = true
	}

	return c.Status(fiber.StatusOK).JSON(dto.AutoPushResponse{Enabled: enabled})
}
