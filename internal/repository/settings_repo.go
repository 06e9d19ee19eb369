package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/oumizumi/leethub/internal/models"
)

// Settings are stored under flat keys so the options UI can update fields
// independently; an absent key implies its documented default.
const (
	keyToken          = "githubToken"
	keyOwner          = "githubOwner"
	keyRepo           = "githubRepo"
	keyBranch         = "githubBranch"
	keyRootFolder     = "githubRootFolder"
	keyAutoPush       = "autoPushEnabled"
	keyNotifications  = "notificationsEnabled"
	keyCommitTemplate = "commitMessageTemplate"
	keyDebugMode      = "debugMode"
)

var settingsKeys = []string{
	keyToken,
	keyOwner,
	keyRepo,
	keyBranch,
	keyRootFolder,
	keyAutoPush,
	keyNotifications,
	keyCommitTemplate,
	keyDebugMode,
}

// SettingsRepository reads and writes the user configuration.
type SettingsRepository interface {
	Load(ctx context.Context) (models.Settings, error)
	Save(ctx context.Context, settings models.Settings) error
	EnsureDefaults(ctx context.Context) error
}

type settingsRepository struct {
	client *redis.Client
}

// NewSettingsRepository constructs the settings repository.
func NewSettingsRepository(client *redis.Client) SettingsRepository {
	return &settingsRepository{client: client}
}

// Load fetches all settings in one round trip and applies defaults for
// absent keys.
func (r *settingsRepository) Load(ctx context.Context) (models.Settings, error) {
	values, err := r.client.MGet(ctx, settingsKeys...).Result()
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}

	read := func(i int) string {
		if s, ok := values[i].(string); ok {
			return s
		}
		return ""
	}

	settings := models.Settings{
		Token:                 read(0),
		Owner:                 read(1),
		Repo:                  read(2),
		Branch:                read(3),
		RootFolder:            read(4),
		AutoPushEnabled:       parseBool(read(5), true),
		NotificationsEnabled:  parseBool(read(6), true),
		CommitMessageTemplate: read(7),
		DebugMode:             parseBool(read(8), false),
	}

	if settings.Branch == "" {
		settings.Branch = models.DefaultBranch
	}
	if settings.RootFolder == "" {
		settings.RootFolder = models.DefaultRootFolder
	}

	return settings, nil
}

// Save persists every settings field.
func (r *settingsRepository) Save(ctx context.Context, settings models.Settings) error {
	err := r.client.MSet(ctx,
		keyToken, settings.Token,
		keyOwner, settings.Owner,
		keyRepo, settings.Repo,
		keyBranch, settings.Branch,
		keyRootFolder, settings.RootFolder,
		keyAutoPush, strconv.FormatBool(settings.AutoPushEnabled),
		keyNotifications, strconv.FormatBool(settings.NotificationsEnabled),
		keyCommitTemplate, settings.CommitMessageTemplate,
		keyDebugMode, strconv.FormatBool(settings.DebugMode),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	return nil
}

// EnsureDefaults seeds the layout keys on first run without touching values
// the user may already have set.
func (r *settingsRepository) EnsureDefaults(ctx context.Context) error {
	pipe := r.client.TxPipeline()
	pipe.SetNX(ctx, keyBranch, models.DefaultBranch, 0)
	pipe.SetNX(ctx, keyRootFolder, models.DefaultRootFolder, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to seed default settings: %w", err)
	}

	return nil
}

func parseBool(value string, fallback bool) bool {
	if value == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}

	return parsed
}
