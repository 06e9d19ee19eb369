package service

import (
	"context"
	"io"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/oumizumi/leethub/internal/codec"
	"github.com/oumizumi/leethub/internal/models"
	"github.com/oumizumi/leethub/internal/repository"
	"github.com/oumizumi/leethub/pkg/github"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

// storeStub keeps file state in memory and can replay queued write errors.
type storeStub struct {
	files     map[string]*github.RemoteFile
	putErrs   []error
	getErr    error
	getCalls  int
	putCalls  int
	lastPut   github.PutRequest
	resultURL string
}

func newStoreStub() *storeStub {
	return &storeStub{files: map[string]*github.RemoteFile{}, resultURL: "https://github.com/octocat/solutions/blob/main/f.py"}
}

func (s *storeStub) GetFile(_ context.Context, _ github.Target, path string) (*github.RemoteFile, error) {
	s.getCalls++
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.files[path], nil
}

func (s *storeStub) PutFile(_ context.Context, _ github.Target, path string, req github.PutRequest) (*github.WriteResult, error) {
	s.putCalls++
	s.lastPut = req
	if len(s.putErrs) > 0 {
		err := s.putErrs[0]
		s.putErrs = s.putErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	s.files[path] = &github.RemoteFile{SHA: "sha-new", Content: req.Content, HTMLURL: s.resultURL}
	return &github.WriteResult{HTMLURL: s.resultURL}, nil
}

type notifierStub struct {
	notifications []Notification
}

func (n *notifierStub) Notify(_ context.Context, notification Notification) string {
	n.notifications = append(n.notifications, notification)
	return "id"
}

type pushFixture struct {
	svc      *pushService
	store    *storeStub
	notifier *notifierStub
	ledger   repository.LedgerRepository
	stats    repository.StatisticsRepository
	settings repository.SettingsRepository
	delays   *[]time.Duration
}

func newPushFixture(t *testing.T, configured bool) pushFixture {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	settingsRepo := repository.NewSettingsRepository(client)
	if configured {
		require.NoError(t, settingsRepo.Save(context.Background(), models.Settings{
			Token:                "ghp_secret",
			Owner:                "octocat",
			Repo:                 "solutions",
			Branch:               "main",
			RootFolder:           "leethub",
			AutoPushEnabled:      true,
			NotificationsEnabled: true,
		}))
	}

	ledgerRepo := repository.NewLedgerRepository(client, 10)
	statsRepo := repository.NewStatisticsRepository(client)
	store := newStoreStub()
	notifier := &notifierStub{}

	svc := NewPushService(settingsRepo, ledgerRepo, statsRepo, store, notifier, validator.New(), RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second}, testLogger()).(*pushService)

	delays := &[]time.Duration{}
	svc.sleep = func(_ context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}

	return pushFixture{svc: svc, store: store, notifier: notifier, ledger: ledgerRepo, stats: statsRepo, settings: settingsRepo, delays: delays}
}

func acceptedSubmission() models.Submission {
	return models.Submission{
		Title:      "Two Sum",
		Difficulty: models.DifficultyEasy,
		Language:   "Python3",
		Code:       "class Solution:\n    pass\n",
		ProblemURL: "https://leetcode.com/problems/two-sum",
		Runtime:    "52ms",
		Memory:     "16.4MB",
		AcceptedAt: "2025-06-01T12:00:00Z",
	}
}

func TestPushSuccessNewFile(t *testing.T) {
	f := newPushFixture(t, true)

	result, err := f.svc.Submit(context.Background(), acceptedSubmission())
	require.NoError(t, err)
	require.Equal(t, models.PushStatusSuccess, result.Status)
	require.Equal(t, f.store.resultURL, result.URL)

	require.Equal(t, 1, f.store.putCalls)
	require.Empty(t, f.store.lastPut.SHA, "new file must not send a version token")
	require.Contains(t, f.store.lastPut.Message, "feat: Two Sum (Python3) - Accepted")
	require.Contains(t, f.store.lastPut.Message, "Runtime: 52ms")

	entries, err := f.ledger.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.LedgerStatusSuccess, entries[0].Status)
	require.Equal(t, "Pushed: Two Sum", entries[0].Message)

	stats, err := f.stats.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalSolved)
	require.Equal(t, 1, stats.ByDifficulty[models.DifficultyEasy])

	require.Len(t, f.notifier.notifications, 1)
	require.Contains(t, f.notifier.notifications[0].Message, "Two Sum")
}

func TestPushIdempotentSkip(t *testing.T) {
	f := newPushFixture(t, true)
	ctx := context.Background()
	submission := acceptedSubmission()

	first, err := f.svc.Submit(ctx, submission)
	require.NoError(t, err)
	require.Equal(t, models.PushStatusSuccess, first.Status)

	// Repeated pushes of identical content never write again.
	for i := 0; i < 3; i++ {
		again, err := f.svc.Submit(ctx, submission)
		require.NoError(t, err)
		require.Equal(t, models.PushStatusSkipped, again.Status)
	}
	require.Equal(t, 1, f.store.putCalls)

	// Skipped pushes never count in statistics.
	stats, err := f.stats.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalSolved)

	entries, err := f.ledger.List(ctx)
	require.NoError(t, err)
	require.Equal(t, models.LedgerStatusSkipped, entries[0].Status)
	require.Contains(t, entries[0].Message, "Content unchanged")
}

func TestPushUpdateSendsVersionToken(t *testing.T) {
	f := newPushFixture(t, true)
	ctx := context.Background()

	f.store.files["leethub/Easy/Two Sum.py"] = &github.RemoteFile{
		SHA:     "abc123",
		Content: codec.EncodeContent("old solution"),
	}

	result, err := f.svc.Submit(ctx, acceptedSubmission())
	require.NoError(t, err)
	require.Equal(t, models.PushStatusSuccess, result.Status)
	require.Equal(t, "abc123", f.store.lastPut.SHA)
}

func TestPushSkipsWhenRemoteContentEqual(t *testing.T) {
	f := newPushFixture(t, true)
	ctx := context.Background()
	submission := acceptedSubmission()

	// Remote content differs only by transport whitespace.
	encoded := codec.EncodeContent(submission.Code)
	f.store.files["leethub/Easy/Two Sum.py"] = &github.RemoteFile{
		SHA:     "abc123",
		Content: encoded[:8] + "\n" + encoded[8:] + "\n",
	}

	result, err := f.svc.Submit(ctx, submission)
	require.NoError(t, err)
	require.Equal(t, models.PushStatusSkipped, result.Status)
	require.Zero(t, f.store.putCalls)
}

func TestPushAuthErrorNotRetried(t *testing.T) {
	f := newPushFixture(t, true)

	f.store.putErrs = []error{&github.APIError{Kind: github.KindAuth, StatusCode: 401, Detail: "Bad credentials"}}

	result, err := f.svc.Submit(context.Background(), acceptedSubmission())
	require.NoError(t, err)
	require.Equal(t, models.PushStatusError, result.Status)
	require.Contains(t, result.Error, "token")
	require.Equal(t, 1, f.store.putCalls)
	require.Empty(t, *f.delays)

	entries, err := f.ledger.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, models.LedgerStatusError, entries[0].Status)
}

func TestPushTransientErrorRetriedWithLinearBackoff(t *testing.T) {
	f := newPushFixture(t, true)

	f.store.putErrs = []error{
		&github.APIError{Kind: github.KindTransient, StatusCode: 500},
		&github.APIError{Kind: github.KindTransient, StatusCode: 500},
		nil,
	}

	result, err := f.svc.Submit(context.Background(), acceptedSubmission())
	require.NoError(t, err)
	require.Equal(t, models.PushStatusSuccess, result.Status)
	require.Equal(t, 3, f.store.putCalls)
	require.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *f.delays)
}

func TestPushRetriesExhausted(t *testing.T) {
	f := newPushFixture(t, true)

	f.store.putErrs = []error{
		&github.APIError{Kind: github.KindTransient, StatusCode: 502},
		&github.APIError{Kind: github.KindTransient, StatusCode: 502},
		&github.APIError{Kind: github.KindTransient, StatusCode: 502},
	}

	result, err := f.svc.Submit(context.Background(), acceptedSubmission())
	require.NoError(t, err)
	require.Equal(t, models.PushStatusError, result.Status)
	require.Equal(t, 3, f.store.putCalls)
}

func TestPushConflictSurfacedWithExplanation(t *testing.T) {
	f := newPushFixture(t, true)

	f.store.putErrs = []error{&github.APIError{Kind: github.KindConflict, StatusCode: 409}}

	result, err := f.svc.Submit(context.Background(), acceptedSubmission())
	require.NoError(t, err)
	require.Equal(t, models.PushStatusError, result.Status)
	require.Contains(t, result.Error, "concurrently")
	require.Equal(t, 1, f.store.putCalls)
}

func TestPushNotConfigured(t *testing.T) {
	f := newPushFixture(t, false)

	result, err := f.svc.Submit(context.Background(), acceptedSubmission())
	require.NoError(t, err)
	require.Equal(t, models.PushStatusError, result.Status)
	require.Equal(t, ErrNotConfigured.Error(), result.Error)
	require.Zero(t, f.store.getCalls)
	require.Zero(t, f.store.putCalls)

	// A forwarded event always terminates in a ledger entry.
	entries, err := f.ledger.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.LedgerStatusError, entries[0].Status)
}

func TestPushRejectsIncompleteSubmission(t *testing.T) {
	f := newPushFixture(t, true)

	submission := acceptedSubmission()
	submission.Code = ""

	_, err := f.svc.Submit(context.Background(), submission)
	require.Error(t, err)

	// Nothing was forwarded, so nothing reaches the ledger.
	entries, listErr := f.ledger.List(context.Background())
	require.NoError(t, listErr)
	require.Empty(t, entries)
}

func TestPushProbeFailureFallsBackToCreate(t *testing.T) {
	f := newPushFixture(t, true)

	f.store.getErr = &github.APIError{Kind: github.KindTransient, StatusCode: 503}

	result, err := f.svc.Submit(context.Background(), acceptedSubmission())
	require.NoError(t, err)
	require.Equal(t, models.PushStatusSuccess, result.Status)
	require.Empty(t, f.store.lastPut.SHA)
}

func TestPushNotificationsRespectToggle(t *testing.T) {
	f := newPushFixture(t, true)
	ctx := context.Background()

	settings, err := f.settings.Load(ctx)
	require.NoError(t, err)
	settings.NotificationsEnabled = false
	require.NoError(t, f.settings.Save(ctx, settings))

	result, err := f.svc.Submit(ctx, acceptedSubmission())
	require.NoError(t, err)
	require.Equal(t, models.PushStatusSuccess, result.Status)
	require.Empty(t, f.notifier.notifications)
}

func TestPushCommitMessageTemplate(t *testing.T) {
	f := newPushFixture(t, true)
	ctx := context.Background()

	settings, err := f.settings.Load(ctx)
	require.NoError(t, err)
	settings.CommitMessageTemplate = "solve {title} in {language} [{difficulty}]"
	require.NoError(t, f.settings.Save(ctx, settings))

	_, err = f.svc.Submit(ctx, acceptedSubmission())
	require.NoError(t, err)
	require.Equal(t, "solve Two Sum in Python3 [Easy]", f.store.lastPut.Message)
}
