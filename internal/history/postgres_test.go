package history_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gempswccg/swccg-server/internal/history"
	"github.com/gempswccg/swccg-server/internal/testutil"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	pc.ApplyMigrations(t)

	ctx := context.Background()
	store := history.NewPostgresStore(pc.RawPool)

	record := func(id, winner string, competitive bool) history.Summary {
		return history.Summary{
			MatchID:     id,
			Format:      "Premiere",
			Competitive: competitive,
			Winner:      winner,
			Reason:      "concession",
			EndedAt:     time.Now().UTC(),
			Players: []history.PlayerResult{
				{PlayerID: "alice", DeckName: "Hunt Down", Won: winner == "alice"},
				{PlayerID: "bob", DeckName: "Profit", Won: winner == "bob"},
			},
		}
	}

	require.NoError(t, store.RecordMatch(ctx, record("m1", "alice", false)))
	require.NoError(t, store.RecordMatch(ctx, record("m2", "bob", false)))
	require.NoError(t, store.RecordMatch(ctx, record("m3", "alice", true)))
	assert.ErrorIs(t, store.RecordMatch(ctx, record("m1", "alice", false)), history.ErrDuplicateMatch)

	stats, err := store.PlayerStats(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, stats.Casual, 1)
	assert.Equal(t, history.DeckStats{DeckName: "Hunt Down", Format: "Premiere", Wins: 1, Losses: 1}, stats.Casual[0])
	require.Len(t, stats.Competitive, 1)
	assert.Equal(t, 1, stats.Competitive[0].Wins)
}
