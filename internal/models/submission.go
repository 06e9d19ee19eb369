package models

import "strings"

// Difficulty buckets recognised for a problem.
const (
	DifficultyEasy    = "Easy"
	DifficultyMedium  = "Medium"
	DifficultyHard    = "Hard"
	DifficultyUnknown = "Unknown"
)

// NormalizeDifficulty maps free-form difficulty text onto a known bucket.
func NormalizeDifficulty(difficulty string) string {
	trimmed := strings.TrimSpace(difficulty)
	for _, known := range []string{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		if strings.EqualFold(trimmed, known) {
			return known
		}
	}
	return DifficultyUnknown
}

// Submission is one accepted solution extracted from the problem page. It
// lives only for the duration of a single push.
type Submission struct {
	Title      string `json:"problemTitle" validate:"required"`
	Difficulty string `json:"difficulty"`
	Language   string `json:"language" validate:"required"`
	Code       string `json:"code" validate:"required"`
	ProblemURL string `json:"problemUrl"`
	Runtime    string `json:"runtime,omitempty"`
	Memory     string `json:"memory,omitempty"`
	AcceptedAt string `json:"acceptedAt"`
}

// Push outcome statuses.
const (
	PushStatusSuccess = "success"
	PushStatusSkipped = "skipped"
	PushStatusError   = "error"
)

// PushResult is the terminal outcome of one push attempt.
type PushResult struct {
	Status  string `json:"status"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
