package models

// Ledger entry statuses.
const (
	LedgerStatusSuccess = "success"
	LedgerStatusError   = "error"
	LedgerStatusSkipped = "skipped"
	LedgerStatusPending = "pending"
)

// LedgerEntry is one audit record of a push outcome. The ledger keeps only
// the most recent entries, newest first.
type LedgerEntry struct {
	Timestamp  string `json:"timestamp"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	Difficulty string `json:"difficulty,omitempty"`
	Language   string `json:"language,omitempty"`
	URL        string `json:"url,omitempty"`
	Error      string `json:"error,omitempty"`
}
