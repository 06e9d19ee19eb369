package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/oumizumi/leethub/internal/dto"
	"github.com/oumizumi/leethub/internal/repository"
	"github.com/oumizumi/leethub/pkg/github"
)

// AccessProber verifies repository access for the options UI.
type AccessProber interface {
	TestAccess(ctx context.Context, target github.Target) (*github.Repository, error)
}

// SettingsService manages the user configuration on behalf of the options UI.
type SettingsService interface {
	Get(ctx context.Context) (dto.SettingsResponse, error)
	Update(ctx context.Context, payload dto.SettingsRequest) (dto.SettingsResponse, error)
	TestAccess(ctx context.Context, payload dto.TestAccessRequest) (dto.TestAccessResponse, error)
}

type settingsService struct {
	settings  repository.SettingsRepository
	prober    AccessProber
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSettingsService constructs the settings service.
func NewSettingsService(settings repository.SettingsRepository, prober AccessProber, validate *validator.Validate, logger zerolog.Logger) SettingsService {
	return &settingsService{
		settings:  settings,
		prober:    prober,
		validator: validate,
		logger:    logger.With().Str("component", "settings_service").Logger(),
	}
}

func (s *settingsService) Get(ctx context.Context) (dto.SettingsResponse, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return dto.SettingsResponse{}, err
	}

	return dto.NewSettingsResponse(settings), nil
}

func (s *settingsService) Update(ctx context.Context, payload dto.SettingsRequest) (dto.SettingsResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SettingsResponse{}, err
	}

	current, err := s.settings.Load(ctx)
	if err != nil {
		return dto.SettingsResponse{}, err
	}

	updated := payload.ToModel(current)
	if err := s.settings.Save(ctx, updated); err != nil {
		return dto.SettingsResponse{}, err
	}

	s.logger.Info().Str("owner", updated.Owner).Str("repo", updated.Repo).Msg("settings updated")

	return dto.NewSettingsResponse(updated), nil
}

func (s *settingsService) TestAccess(ctx context.Context, payload dto.TestAccessRequest) (dto.TestAccessResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.TestAccessResponse{}, err
	}

	repo, err := s.prober.TestAccess(ctx, github.Target{
		Token: payload.Token,
		Owner: payload.Owner,
		Repo:  payload.Repo,
	})
	if err != nil {
		return dto.TestAccessResponse{}, err
	}

	return dto.TestAccessResponse{
		FullName:      repo.FullName,
		Private:       repo.Private,
		DefaultBranch: repo.DefaultBranch,
	}, nil
}

// ensure the github client satisfies the prober contract.
var _ AccessProber = (*github.Client)(nil)
