package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/oumizumi/leethub/internal/codec"
	"github.com/oumizumi/leethub/internal/models"
	"github.com/oumizumi/leethub/internal/observability"
	"github.com/oumizumi/leethub/internal/repository"
	"github.com/oumizumi/leethub/pkg/github"
)

// ErrNotConfigured indicates the mandatory GitHub settings are missing.
// Configuration errors are never retried.
var ErrNotConfigured = errors.New("github settings not configured - set token, owner and repository in options")

// StoreClient is the contract the orchestrator needs against the versioned store.
type StoreClient interface {
	GetFile(ctx context.Context, target github.Target, path string) (*github.RemoteFile, error)
	PutFile(ctx context.Context, target github.Target, path string, req github.PutRequest) (*github.WriteResult, error)
}

// RetryPolicy bounds the write retry loop. Delay grows linearly with the
// attempt number.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// PushService turns one accepted submission into exactly one of
// pushed, skipped-as-duplicate, or failed-with-reason.
type PushService interface {
	Submit(ctx context.Context, submission models.Submission) (models.PushResult, error)
}

type pushService struct {
	settings  repository.SettingsRepository
	ledger    repository.LedgerRepository
	stats     repository.StatisticsRepository
	store     StoreClient
	notifier  Notifier
	validator *validator.Validate
	retry     RetryPolicy
	logger    zerolog.Logger
	tracer    trace.Tracer
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewPushService constructs the push orchestrator.
func NewPushService(settings repository.SettingsRepository, ledger repository.LedgerRepository, stats repository.StatisticsRepository, store StoreClient, notifier Notifier, validate *validator.Validate, retry RetryPolicy, logger zerolog.Logger) PushService {
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 3
	}
	if retry.Delay <= 0 {
		retry.Delay = 2 * time.Second
	}

	return &pushService{
		settings:  settings,
		ledger:    ledger,
		stats:     stats,
		store:     store,
		notifier:  notifier,
		validator: validate,
		retry:     retry,
		logger:    logger.With().Str("component", "push_service").Logger(),
		tracer:    otel.Tracer("github.com/oumizumi/leethub/internal/service/push"),
		sleep:     sleepContext,
	}
}

// Submit runs one orchestration. A malformed submission is rejected with an
// error before it counts as forwarded; every forwarded submission terminates
// in exactly one ledger entry and one result.
func (s *pushService) Submit(ctx context.Context, submission models.Submission) (models.PushResult, error) {
	if err := s.validator.Struct(submission); err != nil {
		return models.PushResult{}, err
	}

	start := time.Now()
	spanCtx, span := s.tracer.Start(ctx, "push.submit", trace.WithAttributes(
		attribute.String("problem.title", submission.Title),
		attribute.String("problem.language", submission.Language),
	))
	defer span.End()

	result := s.orchestrate(spanCtx, submission)

	span.SetAttributes(attribute.String("push.status", result.Status))
	observability.Pushes().WithLabelValues(result.Status).Inc()
	observability.PushLatency().WithLabelValues(result.Status).Observe(time.Since(start).Seconds())

	return result, nil
}

func (s *pushService) orchestrate(ctx context.Context, submission models.Submission) models.PushResult {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return s.fail(ctx, submission, "failed to load settings: "+err.Error())
	}

	if !settings.Configured() {
		return s.fail(ctx, submission, ErrNotConfigured.Error())
	}

	difficulty := models.NormalizeDifficulty(submission.Difficulty)
	path := codec.BuildFilePath(settings.RootFolder, difficulty, submission.Title, submission.Language)
	encoded := codec.EncodeContent(submission.Code)
	target := github.Target{
		Token:  settings.Token,
		Owner:  settings.Owner,
		Repo:   settings.Repo,
		Branch: settings.Branch,
	}

	s.logger.Info().Str("path", path).Str("title", submission.Title).Msg("processing accepted submission")

	existing, err := s.store.GetFile(ctx, target, path)
	if err != nil {
		// Probe failures degrade to the new-file path; the write itself
		// will surface any real problem.
		s.logger.Warn().Err(err).Str("path", path).Msg("could not probe existing file")
		existing = nil
	}

	sha := ""
	if existing != nil {
		sha = existing.SHA
		if codec.ContentsEqual(existing.Content, encoded) {
			s.appendLedger(ctx, models.LedgerEntry{
				Status:     models.LedgerStatusSkipped,
				Message:    submission.Title + " - Content unchanged",
				Difficulty: difficulty,
				Language:   submission.Language,
			})

			s.logger.Info().Str("path", path).Msg("content unchanged, skipping push")

			return models.PushResult{Status: models.PushStatusSkipped, Message: "Content unchanged"}
		}
	}

	message := s.commitMessage(settings, submission)

	written, err := s.writeWithRetry(ctx, target, path, github.PutRequest{
		Message: message,
		Content: encoded,
		SHA:     sha,
	})
	if err != nil {
		return s.fail(ctx, submission, err.Error())
	}

	resultURL := written.HTMLURL
	if resultURL == "" {
		resultURL = submission.ProblemURL
	}

	s.appendLedger(ctx, models.LedgerEntry{
		Status:     models.LedgerStatusSuccess,
		Message:    "Pushed: " + submission.Title,
		Difficulty: difficulty,
		Language:   submission.Language,
		URL:        resultURL,
	})

	if _, err := s.stats.RecordPush(ctx, submission); err != nil {
		s.logger.Warn().Err(err).Msg("could not update statistics")
	}

	if settings.NotificationsEnabled && s.notifier != nil {
		s.notifier.Notify(ctx, Notification{
			Title:   "LeetHub Success",
			Message: submission.Title + " pushed to GitHub",
			URL:     written.HTMLURL,
		})
	}

	s.logger.Info().Str("path", path).Str("url", resultURL).Msg("successfully pushed to github")

	return models.PushResult{Status: models.PushStatusSuccess, URL: resultURL, Message: "Successfully pushed to GitHub"}
}

// writeWithRetry performs the conditional write under the retry policy.
// Non-retryable failures abort immediately; otherwise the loop waits
// delay times the attempt number before trying again.
func (s *pushService) writeWithRetry(ctx context.Context, target github.Target, path string, req github.PutRequest) (*github.WriteResult, error) {
	var lastErr error

	for attempt := 1; attempt <= s.retry.MaxAttempts; attempt++ {
		written, err := s.store.PutFile(ctx, target, path, req)
		if err == nil {
			return written, nil
		}

		lastErr = err
		s.logger.Warn().Err(err).Int("attempt", attempt).Msg("push attempt failed")

		if !github.Retryable(err) {
			return nil, err
		}

		if attempt < s.retry.MaxAttempts {
			if err := s.sleep(ctx, s.retry.Delay*time.Duration(attempt)); err != nil {
				return nil, lastErr
			}
		}
	}

	return nil, lastErr
}

func (s *pushService) commitMessage(settings models.Settings, submission models.Submission) string {
	if template := strings.TrimSpace(settings.CommitMessageTemplate); template != "" {
		return strings.NewReplacer(
			"{title}", submission.Title,
			"{language}", submission.Language,
			"{difficulty}", models.NormalizeDifficulty(submission.Difficulty),
			"{url}", submission.ProblemURL,
		).Replace(template)
	}

	return codec.BuildCommitMessage(codec.CommitInfo{
		Title:      submission.Title,
		Language:   submission.Language,
		ProblemURL: submission.ProblemURL,
		Runtime:    submission.Runtime,
		Memory:     submission.Memory,
		AcceptedAt: submission.AcceptedAt,
	})
}

func (s *pushService) fail(ctx context.Context, submission models.Submission, reason string) models.PushResult {
	s.appendLedger(ctx, models.LedgerEntry{
		Status:     models.LedgerStatusError,
		Message:    "Failed: " + submission.Title + " - " + reason,
		Difficulty: models.NormalizeDifficulty(submission.Difficulty),
		Language:   submission.Language,
		Error:      reason,
	})

	s.logger.Error().Str("title", submission.Title).Str("reason", reason).Msg("push failed")

	return models.PushResult{Status: models.PushStatusError, Error: reason}
}

func (s *pushService) appendLedger(ctx context.Context, entry models.LedgerEntry) {
	if err := s.ledger.Append(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("could not append ledger entry")
	}
}

// ensure the github client satisfies the store contract.
var _ StoreClient = (*github.Client)(nil)

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
