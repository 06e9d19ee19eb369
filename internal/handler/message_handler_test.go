package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/oumizumi/leethub/internal/dto"
	"github.com/oumizumi/leethub/internal/handler"
	"github.com/oumizumi/leethub/internal/models"
)

type mockPushService struct {
	lastSubmission models.Submission
	result         models.PushResult
	err            error
}

func (m *mockPushService) Submit(_ context.Context, submission models.Submission) (models.PushResult, error) {
	m.lastSubmission = submission
	if m.err != nil {
		return models.PushResult{}, m.err
	}
	return m.result, nil
}

type mockActivityService struct {
	log      []models.LedgerEntry
	stats    models.Statistics
	autoPush bool
	err      error
}

func (m *mockActivityService) Log(_ context.Context) ([]models.LedgerEntry, error) {
	return m.log, m.err
}

func (m *mockActivityService) Statistics(_ context.Context) (models.Statistics, error) {
	return m.stats, m.err
}

func (m *mockActivityService) AutoPushEnabled(_ context.Context) (bool, error) {
	return m.autoPush, m.err
}

func validationError(t *testing.T) error {
	t.Helper()
	err := validator.New().Struct(struct {
		Field string `validate:"required"`
	}{})
	require.Error(t, err)
	return err
}

func messageApp(push *mockPushService, activity *mockActivityService) *fiber.App {
	app := fiber.New()
	handler.NewMessageHandler(push, activity, zerolog.New(io.Discard)).Register(app.Group("/api/v1"))
	return app
}

func postMessage(t *testing.T, app *fiber.App, message dto.MessageRequest) *http.Response {
	t.Helper()

	body, err := json.Marshal(message)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestMessageHandler_AcceptedSubmission(t *testing.T) {
	push := &mockPushService{result: models.PushResult{
		Status:  models.PushStatusSuccess,
		URL:     "https://github.com/alice/solutions/blob/main/leethub/Easy/Two Sum.py",
		Message: "pushed Two Sum",
	}}
	app := messageApp(push, &mockActivityService{})

	submission := models.Submission{
		Title:    "Two Sum",
		Language: "python3",
		Code:     "class Solution: pass",
	}
	data, err := json.Marshal(submission)
	require.NoError(t, err)

	resp := postMessage(t, app, dto.MessageRequest{Action: dto.ActionAcceptedSubmission, Data: data})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response dto.PushResponse
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.False(t, response.Skipped)
	require.Equal(t, push.result.URL, response.URL)
	require.Equal(t, "Two Sum", push.lastSubmission.Title)
}

func TestMessageHandler_SkippedSubmission(t *testing.T) {
	push := &mockPushService{result: models.PushResult{
		Status:  models.PushStatusSkipped,
		Message: "content unchanged",
	}}
	app := messageApp(push, &mockActivityService{})

	data, err := json.Marshal(models.Submission{Title: "Two Sum", Language: "go", Code: "x"})
	require.NoError(t, err)

	resp := postMessage(t, app, dto.MessageRequest{Action: dto.ActionAcceptedSubmission, Data: data})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response dto.PushResponse
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.True(t, response.Skipped)
}

func TestMessageHandler_IncompleteSubmission(t *testing.T) {
	push := &mockPushService{}
	app := messageApp(push, &mockActivityService{})
	push.err = validationError(t)

	resp := postMessage(t, app, dto.MessageRequest{Action: dto.ActionAcceptedSubmission, Data: json.RawMessage(`{}`)})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response dto.PushResponse
	decodeResponse(t, resp, &response)

	require.False(t, response.Success)
	require.Equal(t, "incomplete submission", response.Error)
}

func TestMessageHandler_GetActivityLog(t *testing.T) {
	activity := &mockActivityService{log: []models.LedgerEntry{
		{Status: models.LedgerStatusSuccess, Message: "pushed Two Sum"},
	}}
	app := messageApp(&mockPushService{}, activity)

	resp := postMessage(t, app, dto.MessageRequest{Action: dto.ActionGetActivityLog})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response dto.ActivityLogResponse
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Len(t, response.Log, 1)
	require.Equal(t, "pushed Two Sum", response.Log[0].Message)
}

func TestMessageHandler_GetStatistics(t *testing.T) {
	activity := &mockActivityService{stats: models.Statistics{TotalSolved: 7}}
	app := messageApp(&mockPushService{}, activity)

	resp := postMessage(t, app, dto.MessageRequest{Action: dto.ActionGetStatistics})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response dto.StatisticsResponse
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, 7, response.Statistics.TotalSolved)
}

func TestMessageHandler_CheckAutoPush(t *testing.T) {
	app := messageApp(&mockPushService{}, &mockActivityService{autoPush: true})

	resp := postMessage(t, app, dto.MessageRequest{Action: dto.ActionCheckAutoPush})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response dto.AutoPushResponse
	decodeResponse(t, resp, &response)
	require.True(t, response.Enabled)
}

func TestMessageHandler_CheckAutoPushDefaultsEnabledOnError(t *testing.T) {
	activity := &mockActivityService{autoPush: false, err: io.ErrUnexpectedEOF}
	app := messageApp(&mockPushService{}, activity)

	resp := postMessage(t, app, dto.MessageRequest{Action: dto.ActionCheckAutoPush})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response dto.AutoPushResponse
	decodeResponse(t, resp, &response)
	require.True(t, response.Enabled)
}

func TestMessageHandler_UnknownAction(t *testing.T) {
	app := messageApp(&mockPushService{}, &mockActivityService{})

	resp := postMessage(t, app, dto.MessageRequest{Action: "FORMAT_DISK"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}
