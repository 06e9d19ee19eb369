package detect

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/oumizumi/leethub/internal/codec"
	"github.com/oumizumi/leethub/internal/dto"
	"github.com/oumizumi/leethub/internal/models"
	"github.com/oumizumi/leethub/internal/observability"
)

// ErrBusy reports that an extraction is already in flight on this page.
var ErrBusy = errors.New("an extraction is already in progress")

// Backend is the background-service collaborator the engine forwards
// accepted submissions to.
type Backend interface {
	Submit(ctx context.Context, submission models.Submission) (dto.PushResponse, error)
	AutoPushEnabled(ctx context.Context) (bool, error)
}

// Config tunes the sampling loop.
type Config struct {
	PollInterval time.Duration
	SettleDelay  time.Duration
}

// state of the per-page detection machine.
type state int

const (
	stateIdle state = iota
	stateDebounced
	stateExtracting
)

// Engine samples the page on a fixed interval and drives the detection state
// machine: Idle until a trusted accepted verdict appears, Debounced while the
// page settles, Extracting while fields are pulled, then back to Idle after
// the event is emitted. At most one pass is in flight per page; repeated
// detections of an emitted submission are dropped.
type Engine struct {
	page    Page
	backend Backend
	cfg     Config
	logger  zerolog.Logger

	mu          sync.Mutex
	state       state
	lastEmitted string

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEngine constructs a detection engine for one page.
func NewEngine(page Page, backend Backend, cfg Config, logger zerolog.Logger) *Engine {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}

	return &Engine{
		page:    page,
		backend: backend,
		cfg:     cfg,
		logger:  logger.With().Str("component", "detect_engine").Logger(),
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// Run polls until the context is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.cfg.PollInterval)
	defer ticker.Stop()

	e.logger.Info().Dur("interval", e.cfg.PollInterval).Msg("submission watcher active")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// Tick runs one sampling pass. Ticks arriving while a pass is in flight are
// ignored.
func (e *Engine) Tick(ctx context.Context) {
	if !e.transition(stateIdle, stateDebounced) {
		return
	}

	defer e.setState(stateIdle)

	pageState, err := e.page.State(ctx)
	if err != nil {
		e.logger.Debug().Err(err).Msg("could not sample page state")
		return
	}

	classification := Classify(pageState)
	observability.Detections().WithLabelValues(string(classification)).Inc()

	if classification != ClassificationAccepted {
		return
	}

	// Each detection attempt gets its own identifier; the marker only
	// protects against re-emitting the pass currently settling.
	id := fmt.Sprintf("%s-%d", pageState.URL, e.now().UnixMilli())
	if id == e.lastEmitted {
		return
	}
	e.lastEmitted = id

	e.logger.Info().Str("submission_id", id).Dur("settle", e.cfg.SettleDelay).Msg("accepted submission detected, waiting for page to settle")

	if err := e.sleep(ctx, e.cfg.SettleDelay); err != nil {
		return
	}

	e.setState(stateExtracting)
	e.extractAndForward(ctx, false)
}

// ExtractNow serves a manual push request. It bypasses the auto-push toggle
// since the user asked explicitly, but still refuses to race an in-flight
// automatic extraction.
func (e *Engine) ExtractNow(ctx context.Context) error {
	if !e.transition(stateIdle, stateExtracting) {
		return ErrBusy
	}
	defer e.setState(stateIdle)

	e.extractAndForward(ctx, true)

	return nil
}

func (e *Engine) extractAndForward(ctx context.Context, manual bool) {
	if !manual {
		enabled, err := e.backend.AutoPushEnabled(ctx)
		if err != nil {
			e.logger.Warn().Err(err).Msg("could not check auto-push flag, assuming enabled")
		} else if !enabled {
			e.logger.Info().Msg("auto-push disabled, skipping")
			return
		}
	}

	submission, ok := e.extractSubmission(ctx)
	if !ok {
		return
	}

	response, err := e.backend.Submit(ctx, submission)
	if err != nil {
		e.logger.Error().Err(err).Msg("failed to forward submission")
		return
	}

	switch {
	case response.Success && response.Skipped:
		e.logger.Info().Str("title", submission.Title).Msg("push skipped, content unchanged")
	case response.Success:
		e.logger.Info().Str("title", submission.Title).Str("url", response.URL).Msg("submission pushed")
	default:
		e.logger.Error().Str("title", submission.Title).Str("error", response.Error).Msg("push failed")
	}
}

// extractSubmission pulls fields best-effort: optional extractors may fail
// without aborting, but a missing title, language, or code drops the whole
// event.
func (e *Engine) extractSubmission(ctx context.Context) (models.Submission, bool) {
	submission := models.Submission{
		Title:      e.extractField(ctx, "title", e.page.Title),
		Difficulty: models.NormalizeDifficulty(e.extractField(ctx, "difficulty", e.page.Difficulty)),
		Language:   e.extractField(ctx, "language", e.page.Language),
		Code:       e.extractField(ctx, "code", e.page.Code),
		ProblemURL: e.extractField(ctx, "problem_url", e.page.ProblemURL),
		Runtime:    e.extractField(ctx, "runtime", e.page.Runtime),
		Memory:     e.extractField(ctx, "memory", e.page.Memory),
		AcceptedAt: codec.FormatTimestamp(e.now()),
	}

	if submission.Title == "" || submission.Language == "" || submission.Code == "" {
		e.logger.Warn().
			Bool("has_title", submission.Title != "").
			Bool("has_language", submission.Language != "").
			Bool("has_code", submission.Code != "").
			Msg("mandatory field missing, dropping event")
		return models.Submission{}, false
	}

	return submission, true
}

func (e *Engine) extractField(ctx context.Context, name string, extract func(context.Context) (string, error)) string {
	value, err := extract(ctx)
	if err != nil {
		e.logger.Debug().Err(err).Str("field", name).Msg("field extraction failed")
		return ""
	}

	return value
}

// transition moves from one state to another atomically; it reports whether
// the move happened.
func (e *Engine) transition(from, to state) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != from {
		return false
	}

	e.state = to
	return true
}

func (e *Engine) setState(s state) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
