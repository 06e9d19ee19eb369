package models

// Statistics is the persisted singleton of aggregate push counters.
// TotalSolved always equals the sum of the difficulty buckets.
type Statistics struct {
	TotalSolved  int            `json:"totalSolved"`
	ByDifficulty map[string]int `json:"byDifficulty"`
	ByLanguage   map[string]int `json:"byLanguage"`
	FirstPush    string         `json:"firstPush,omitempty"`
	LastPush     string         `json:"lastPush,omitempty"`
}

// NewStatistics returns an empty statistics record with all buckets present.
func NewStatistics() Statistics {
	return Statistics{
		ByDifficulty: map[string]int{
			DifficultyEasy:    0,
			DifficultyMedium:  0,
			DifficultyHard:    0,
			DifficultyUnknown: 0,
		},
		ByLanguage: map[string]int{},
	}
}
