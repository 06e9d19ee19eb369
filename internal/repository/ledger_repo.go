package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oumizumi/leethub/internal/codec"
	"github.com/oumizumi/leethub/internal/models"
)

const activityLogKey = "activityLog"

// DefaultLedgerCap bounds the number of retained activity entries.
const DefaultLedgerCap = 10

// LedgerRepository persists the bounded audit trail of push outcomes.
type LedgerRepository interface {
	Append(ctx context.Context, entry models.LedgerEntry) error
	List(ctx context.Context) ([]models.LedgerEntry, error)
}

type ledgerRepository struct {
	client   *redis.Client
	capacity int
	now      func() time.Time
}

// NewLedgerRepository constructs the ledger repository. A non-positive
// capacity falls back to the default cap.
func NewLedgerRepository(client *redis.Client, capacity int) LedgerRepository {
	if capacity <= 0 {
		capacity = DefaultLedgerCap
	}

	return &ledgerRepository{
		client:   client,
		capacity: capacity,
		now:      time.Now,
	}
}

// Append prepends an entry and evicts the oldest beyond the cap.
func (r *ledgerRepository) Append(ctx context.Context, entry models.LedgerEntry) error {
	if entry.Timestamp == "" {
		entry.Timestamp = codec.FormatTimestamp(r.now())
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode ledger entry: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, activityLogKey, payload)
	pipe.LTrim(ctx, activityLogKey, 0, int64(r.capacity-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return nil
}

// List returns the retained entries, most recent first.
func (r *ledgerRepository) List(ctx context.Context) ([]models.LedgerEntry, error) {
	raw, err := r.client.LRange(ctx, activityLogKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read activity log: %w", err)
	}

	entries := make([]models.LedgerEntry, 0, len(raw))
	for _, item := range raw {
		var entry models.LedgerEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("failed to decode ledger entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
