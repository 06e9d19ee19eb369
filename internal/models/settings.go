package models

// Settings default values applied when a key is absent from storage.
const (
	DefaultBranch     = "main"
	DefaultRootFolder = "leethub"
)

// Settings holds the user configuration written by the options UI and read on
// every push. Token, Owner, and Repo are mandatory before a push may proceed.
type Settings struct {
	Token                 string `json:"githubToken" validate:"required"`
	Owner                 string `json:"githubOwner" validate:"required"`
	Repo                  string `json:"githubRepo" validate:"required"`
	Branch                string `json:"githubBranch"`
	RootFolder            string `json:"githubRootFolder"`
	AutoPushEnabled       bool   `json:"autoPushEnabled"`
	NotificationsEnabled  bool   `json:"notificationsEnabled"`
	CommitMessageTemplate string `json:"commitMessageTemplate,omitempty"`
	DebugMode             bool   `json:"debugMode"`
}

// Configured reports whether the mandatory credentials are all present.
func (s Settings) Configured() bool {
	return s.Token != "" && s.Owner != "" && s.Repo != ""
}
