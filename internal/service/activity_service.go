package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/oumizumi/leethub/internal/models"
	"github.com/oumizumi/leethub/internal/repository"
)

// ActivityService serves the popup's read-only queries: the activity log,
// aggregate statistics, and the auto-push toggle.
type ActivityService interface {
	Log(ctx context.Context) ([]models.LedgerEntry, error)
	Statistics(ctx context.Context) (models.Statistics, error)
	AutoPushEnabled(ctx context.Context) (bool, error)
}

type activityService struct {
	ledger   repository.LedgerRepository
	stats    repository.StatisticsRepository
	settings repository.SettingsRepository
	logger   zerolog.Logger
}

// NewActivityService constructs the activity query service.
func NewActivityService(ledger repository.LedgerRepository, stats repository.StatisticsRepository, settings repository.SettingsRepository, logger zerolog.Logger) ActivityService {
	return &activityService{
		ledger:   ledger,
		stats:    stats,
		settings: settings,
		logger:   logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Log(ctx context.Context) ([]models.LedgerEntry, error) {
	return s.ledger.List(ctx)
}

func (s *activityService) Statistics(ctx context.Context) (models.Statistics, error) {
	return s.stats.Get(ctx)
}

func (s *activityService) AutoPushEnabled(ctx context.Context) (bool, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return true, err
	}

	return settings.AutoPushEnabled, nil
}
