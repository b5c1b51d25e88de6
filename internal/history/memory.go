package history

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps summaries in process. It backs tests and servers
// running without a database.
type MemoryStore struct {
	mu        sync.RWMutex
	summaries []Summary
	seen      map[string]struct{}
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

// RecordMatch implements Sink.
func (m *MemoryStore) RecordMatch(_ context.Context, summary Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[summary.MatchID]; ok {
		return fmt.Errorf("record %s: %w", summary.MatchID, ErrDuplicateMatch)
	}
	m.seen[summary.MatchID] = struct{}{}
	summary.Players = append([]PlayerResult(nil), summary.Players...)
	m.summaries = append(m.summaries, summary)
	return nil
}

// Summaries returns every recorded summary in arrival order.
func (m *MemoryStore) Summaries() []Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Summary(nil), m.summaries...)
}

// PlayerStats implements Store.
func (m *MemoryStore) PlayerStats(_ context.Context, playerID string) (Stats, error) {
	type key struct {
		competitive bool
		format      string
		deck        string
	}
	m.mu.RLock()
	totals := make(map[key]*DeckStats)
	for _, s := range m.summaries {
		if !counted(s) {
			continue
		}
		for _, p := range s.Players {
			if p.PlayerID != playerID {
				continue
			}
			k := key{competitive: s.Competitive, format: s.Format, deck: p.DeckName}
			ds, ok := totals[k]
			if !ok {
				ds = &DeckStats{DeckName: p.DeckName, Format: s.Format}
				totals[k] = ds
			}
			if p.Won {
				ds.Wins++
			} else {
				ds.Losses++
			}
		}
	}
	m.mu.RUnlock()

	stats := Stats{PlayerID: playerID}
	for k, ds := range totals {
		if k.competitive {
			stats.Competitive = append(stats.Competitive, *ds)
		} else {
			stats.Casual = append(stats.Casual, *ds)
		}
	}
	sortDeckStats(stats.Casual)
	sortDeckStats(stats.Competitive)
	return stats, nil
}
