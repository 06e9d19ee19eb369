package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/oumizumi/leethub/internal/dto"
	"github.com/oumizumi/leethub/internal/models"
)

// HTTPBackend forwards detection events to the background service using the
// message protocol.
type HTTPBackend struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewHTTPBackend constructs a backend client for the given service base URL.
func NewHTTPBackend(baseURL string, timeout time.Duration, logger zerolog.Logger) *HTTPBackend {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPBackend{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "http_backend").Logger(),
	}
}

// Submit sends an ACCEPTED_SUBMISSION message and returns the push outcome.
func (b *HTTPBackend) Submit(ctx context.Context, submission models.Submission) (dto.PushResponse, error) {
	data, err := json.Marshal(submission)
	if err != nil {
		return dto.PushResponse{}, fmt.Errorf("failed to encode submission: %w", err)
	}

	var response dto.PushResponse
	if err := b.send(ctx, dto.MessageRequest{Action: dto.ActionAcceptedSubmission, Data: data}, &response); err != nil {
		return dto.PushResponse{}, err
	}

	return response, nil
}

// AutoPushEnabled sends a CHECK_AUTO_PUSH message.
func (b *HTTPBackend) AutoPushEnabled(ctx context.Context) (bool, error) {
	var response dto.AutoPushResponse
	if err := b.send(ctx, dto.MessageRequest{Action: dto.ActionCheckAutoPush}, &response); err != nil {
		return true, err
	}

	return response.Enabled, nil
}

func (b *HTTPBackend) send(ctx context.Context, message dto.MessageRequest, out any) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/api/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach background service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("background service returned HTTP %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

var _ Backend = (*HTTPBackend)(nil)
