package repository

import (
	"context"
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/oumizumi/leethub/internal/models"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()

	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })

	return client
}

func TestLedgerAppendAndList(t *testing.T) {
	repo := NewLedgerRepository(testRedis(t), 10)
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, models.LedgerEntry{Status: models.LedgerStatusSuccess, Message: "Pushed: Two Sum"}))
	require.NoError(t, repo.Append(ctx, models.LedgerEntry{Status: models.LedgerStatusSkipped, Message: "Two Sum - Content unchanged"}))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Most recent first.
	require.Equal(t, models.LedgerStatusSkipped, entries[0].Status)
	require.Equal(t, models.LedgerStatusSuccess, entries[1].Status)
	require.NotEmpty(t, entries[0].Timestamp)
}

func TestLedgerCapEvictsOldest(t *testing.T) {
	repo := NewLedgerRepository(testRedis(t), 10)
	ctx := context.Background()

	for i := 1; i <= 25; i++ {
		entry := models.LedgerEntry{Status: models.LedgerStatusSuccess, Message: fmt.Sprintf("entry %d", i)}
		require.NoError(t, repo.Append(ctx, entry))
	}

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 10)

	// Exactly the 10 most recent remain, newest first.
	for i, entry := range entries {
		require.Equal(t, fmt.Sprintf("entry %d", 25-i), entry.Message)
	}
}

func TestLedgerPreservesExplicitTimestamp(t *testing.T) {
	repo := NewLedgerRepository(testRedis(t), 10)
	ctx := context.Background()

	entry := models.LedgerEntry{Timestamp: "2025-01-02T03:04:05Z", Status: models.LedgerStatusError, Message: "Failed: Two Sum"}
	require.NoError(t, repo.Append(ctx, entry))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, "2025-01-02T03:04:05Z", entries[0].Timestamp)
}

func TestLedgerEmpty(t *testing.T) {
	repo := NewLedgerRepository(testRedis(t), 10)

	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, entries)
}
