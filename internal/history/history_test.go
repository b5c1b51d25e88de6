package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func summary(id, format string, competitive bool, winner string) Summary {
	s := Summary{
		MatchID:     id,
		Format:      format,
		Competitive: competitive,
		Winner:      winner,
		Reason:      "concession",
		EndedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	for _, p := range []string{"alice", "bob"} {
		s.Players = append(s.Players, PlayerResult{PlayerID: p, DeckName: p + "-deck", Won: p == winner})
	}
	return s
}

func TestMemoryStoreStats(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.RecordMatch(ctx, summary("m1", "Premiere", false, "alice")))
	require.NoError(t, store.RecordMatch(ctx, summary("m2", "Premiere", false, "bob")))
	require.NoError(t, store.RecordMatch(ctx, summary("m3", "Premiere", false, "alice")))
	require.NoError(t, store.RecordMatch(ctx, summary("m4", "Legacy", true, "alice")))

	draw := summary("m5", "Premiere", false, "")
	draw.Draw = true
	require.NoError(t, store.RecordMatch(ctx, draw))

	stats, err := store.PlayerStats(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, stats.Casual, 1)
	assert.Equal(t, DeckStats{DeckName: "alice-deck", Format: "Premiere", Wins: 2, Losses: 1}, stats.Casual[0])
	require.Len(t, stats.Competitive, 1)
	assert.Equal(t, 1, stats.Competitive[0].Wins)

	assert.Len(t, store.Summaries(), 5)
}

func TestMemoryStoreRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.RecordMatch(ctx, summary("m1", "Premiere", false, "alice")))
	assert.ErrorIs(t, store.RecordMatch(ctx, summary("m1", "Premiere", false, "alice")), ErrDuplicateMatch)
}

func TestFaultedMatchesAreNotCounted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	faulted := summary("m1", "Premiere", false, "alice")
	faulted.Fault = true
	require.NoError(t, store.RecordMatch(ctx, faulted))

	stats, err := store.PlayerStats(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, stats.Casual)
}

func TestWinPercentage(t *testing.T) {
	assert.Equal(t, 0.0, DeckStats{}.WinPercentage())
	assert.InDelta(t, 0.75, DeckStats{Wins: 3, Losses: 1}.WinPercentage(), 1e-9)

	rapid.Check(t, func(t *rapid.T) {
		wins := rapid.IntRange(0, 1000).Draw(t, "wins")
		losses := rapid.IntRange(0, 1000).Draw(t, "losses")
		p := DeckStats{Wins: wins, Losses: losses}.WinPercentage()
		if p < 0 || p > 1 {
			t.Fatalf("percentage %v out of range", p)
		}
	})
}
