package dto

import (
	"strings"

	"github.com/oumizumi/leethub/internal/models"
)

// SettingsRequest is the options UI payload for updating configuration.
type SettingsRequest struct {
	Token                 string `json:"githubToken" validate:"required"`
	Owner                 string `json:"githubOwner" validate:"required"`
	Repo                  string `json:"githubRepo" validate:"required"`
	Branch                string `json:"githubBranch"`
	RootFolder            string `json:"githubRootFolder"`
	AutoPushEnabled       *bool  `json:"autoPushEnabled"`
	NotificationsEnabled  *bool  `json:"notificationsEnabled"`
	CommitMessageTemplate string `json:"commitMessageTemplate"`
	DebugMode             *bool  `json:"debugMode"`
}

// ToModel applies the request over current settings, keeping defaults for
// omitted toggles.
func (r SettingsRequest) ToModel(current models.Settings) models.Settings {
	settings := models.Settings{
		Token:                 strings.TrimSpace(r.Token),
		Owner:                 strings.TrimSpace(r.Owner),
		Repo:                  strings.TrimSpace(r.Repo),
		Branch:                strings.TrimSpace(r.Branch),
		RootFolder:            strings.TrimSpace(r.RootFolder),
		AutoPushEnabled:       current.AutoPushEnabled,
		NotificationsEnabled:  current.NotificationsEnabled,
		CommitMessageTemplate: r.CommitMessageTemplate,
		DebugMode:             current.DebugMode,
	}

	if settings.Branch == "" {
		settings.Branch = models.DefaultBranch
	}
	if settings.RootFolder == "" {
		settings.RootFolder = models.DefaultRootFolder
	}
	if r.AutoPushEnabled != nil {
		settings.AutoPushEnabled = *r.AutoPushEnabled
	}
	if r.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *r.NotificationsEnabled
	}
	if r.DebugMode != nil {
		settings.DebugMode = *r.DebugMode
	}

	return settings
}

// SettingsResponse is returned to the options UI; the token is masked.
type SettingsResponse struct {
	Token                 string `json:"githubToken"`
	Owner                 string `json:"githubOwner"`
	Repo                  string `json:"githubRepo"`
	Branch                string `json:"githubBranch"`
	RootFolder            string `json:"githubRootFolder"`
	AutoPushEnabled       bool   `json:"autoPushEnabled"`
	NotificationsEnabled  bool   `json:"notificationsEnabled"`
	CommitMessageTemplate string `json:"commitMessageTemplate,omitempty"`
	DebugMode             bool   `json:"debugMode"`
}

// NewSettingsResponse masks the credential and serializes settings.
func NewSettingsResponse(settings models.Settings) SettingsResponse {
	return SettingsResponse{
		Token:                 maskToken(settings.Token),
		Owner:                 settings.Owner,
		Repo:                  settings.Repo,
		Branch:                settings.Branch,
		RootFolder:            settings.RootFolder,
		AutoPushEnabled:       settings.AutoPushEnabled,
		NotificationsEnabled:  settings.NotificationsEnabled,
		CommitMessageTemplate: settings.CommitMessageTemplate,
		DebugMode:             settings.DebugMode,
	}
}

func maskToken(token string) string {
	if len(token) <= 4 {
		if token == "" {
			return ""
		}
		return "****"
	}

	return "****" + token[len(token)-4:]
}

// TestAccessRequest carries credentials to verify before saving.
type TestAccessRequest struct {
	Token string `json:"githubToken" validate:"required"`
	Owner string `json:"githubOwner" validate:"required"`
	Repo  string `json:"githubRepo" validate:"required"`
}

// TestAccessResponse reports the probed repository.
type TestAccessResponse struct {
	FullName      string `json:"fullName"`
	Private       bool   `json:"private"`
	DefaultBranch string `json:"defaultBranch"`
}
