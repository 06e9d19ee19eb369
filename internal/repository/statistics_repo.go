package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oumizumi/leethub/internal/codec"
	"github.com/oumizumi/leethub/internal/models"
)

const statisticsKey = "statistics"

// StatisticsRepository maintains the aggregate push counters.
type StatisticsRepository interface {
	Get(ctx context.Context) (models.Statistics, error)
	RecordPush(ctx context.Context, submission models.Submission) (models.Statistics, error)
}

type statisticsRepository struct {
	client *redis.Client
	now    func() time.Time
}

// NewStatisticsRepository constructs the statistics repository.
func NewStatisticsRepository(client *redis.Client) StatisticsRepository {
	return &statisticsRepository{client: client, now: time.Now}
}

// Get returns the persisted statistics, or an empty record when none exist.
func (r *statisticsRepository) Get(ctx context.Context) (models.Statistics, error) {
	raw, err := r.client.Get(ctx, statisticsKey).Result()
	if errors.Is(err, redis.Nil) {
		return models.NewStatistics(), nil
	}
	if err != nil {
		return models.Statistics{}, fmt.Errorf("failed to read statistics: %w", err)
	}

	stats := models.NewStatistics()
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		return models.Statistics{}, fmt.Errorf("failed to decode statistics: %w", err)
	}

	return stats, nil
}

// RecordPush increments the counters for one successful push. The total and
// the difficulty bucket move together so the total always equals the bucket
// sum; an unknown difficulty still lands in its own bucket.
func (r *statisticsRepository) RecordPush(ctx context.Context, submission models.Submission) (models.Statistics, error) {
	stats, err := r.Get(ctx)
	if err != nil {
		return models.Statistics{}, err
	}

	stats.TotalSolved++
	stats.ByDifficulty[models.NormalizeDifficulty(submission.Difficulty)]++
	if submission.Language != "" {
		stats.ByLanguage[submission.Language]++
	}

	timestamp := codec.FormatTimestamp(r.now())
	if stats.FirstPush == "" {
		stats.FirstPush = timestamp
	}
	stats.LastPush = timestamp

	payload, err := json.Marshal(stats)
	if err != nil {
		return models.Statistics{}, fmt.Errorf("failed to encode statistics: %w", err)
	}

	if err := r.client.Set(ctx, statisticsKey, payload, 0).Err(); err != nil {
		return models.Statistics{}, fmt.Errorf("failed to store statistics: %w", err)
	}

	return stats, nil
}
