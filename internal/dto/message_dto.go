package dto

import (
	"encoding/json"

	"github.com/oumizumi/leethub/internal/models"
)

// Message actions understood by the background service.
const (
	ActionAcceptedSubmission = "ACCEPTED_SUBMISSION"
	ActionGetActivityLog     = "GET_ACTIVITY_LOG"
	ActionGetStatistics      = "GET_STATISTICS"
	ActionCheckAutoPush      = "CHECK_AUTO_PUSH"
)

// MessageRequest is the envelope the page watcher sends to the background
// service.
type MessageRequest struct {
	Action string          `json:"action" validate:"required"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// PushResponse answers an ACCEPTED_SUBMISSION message.
type PushResponse struct {
	Success bool   `json:"success"`
	Skipped bool   `json:"skipped,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	URL     string `json:"url,omitempty"`
}

// NewPushResponse converts a push result into the wire response.
func NewPushResponse(result models.PushResult) PushResponse {
	return PushResponse{
		Success: result.Status != models.PushStatusError,
		Skipped: result.Status == models.PushStatusSkipped,
		Message: result.Message,
		Error:   result.Error,
		URL:     result.URL,
	}
}

// ActivityLogResponse answers a GET_ACTIVITY_LOG message.
type ActivityLogResponse struct {
	Success bool                 `json:"success"`
	Log     []models.LedgerEntry `json:"log"`
}

// StatisticsResponse answers a GET_STATISTICS message.
type StatisticsResponse struct {
	Success    bool              `json:"success"`
	Statistics models.Statistics `json:"statistics"`
}

// AutoPushResponse answers a CHECK_AUTO_PUSH message.
type AutoPushResponse struct {
	Enabled bool `json:"enabled"`
}
