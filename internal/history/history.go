// Package history records finished matches and answers per-player
// statistics queries over them.
package history

import (
	"context"
	"errors"
	"sort"
	"time"
)

// ErrDuplicateMatch reports a summary recorded twice for the same match.
var ErrDuplicateMatch = errors.New("match already recorded")

// PlayerResult is one participant's line in a match summary.
type PlayerResult struct {
	PlayerID string
	DeckName string
	Won      bool
}

// Summary is the terminal report of one match.
type Summary struct {
	MatchID     string
	Format      string
	Competitive bool
	Winner      string
	Draw        bool
	Reason      string
	Fault       bool
	EndedAt     time.Time
	Players     []PlayerResult
}

// Sink receives match summaries. Each match is reported once.
type Sink interface {
	RecordMatch(ctx context.Context, summary Summary) error
}

// DeckStats aggregates results for one deck in one format.
type DeckStats struct {
	DeckName string
	Format   string
	Wins     int
	Losses   int
}

// WinPercentage returns wins over decided games, 0 when none were played.
func (d DeckStats) WinPercentage() float64 {
	total := d.Wins + d.Losses
	if total == 0 {
		return 0
	}
	return float64(d.Wins) / float64(total)
}

// Stats is a player's record split by casual and competitive play.
type Stats struct {
	PlayerID    string
	Casual      []DeckStats
	Competitive []DeckStats
}

// Store is a Sink that can also answer statistics queries.
type Store interface {
	Sink
	PlayerStats(ctx context.Context, playerID string) (Stats, error)
}

// counted reports whether a summary contributes to win/loss statistics.
// Draws and matches ended by a fault decide nothing.
func counted(s Summary) bool {
	return !s.Draw && !s.Fault && s.Winner != ""
}

func sortDeckStats(stats []DeckStats) {
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Format != stats[j].Format {
			return stats[i].Format < stats[j].Format
		}
		return stats[i].DeckName < stats[j].DeckName
	})
}
