package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists summaries in the match_results and match_players tables.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the pool.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// RecordMatch inserts the summary and its players in one transaction.
func (s *PostgresStore) RecordMatch(ctx context.Context, summary Summary) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO match_results (match_id, format, competitive, winner, draw, reason, fault, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		summary.MatchID, summary.Format, summary.Competitive, summary.Winner,
		summary.Draw, summary.Reason, summary.Fault, summary.EndedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("record %s: %w", summary.MatchID, ErrDuplicateMatch)
		}
		return fmt.Errorf("inserting match %s: %w", summary.MatchID, err)
	}

	batch := &pgx.Batch{}
	for _, p := range summary.Players {
		batch.Queue(
			`INSERT INTO match_players (match_id, player_id, deck_name, won) VALUES ($1, $2, $3, $4)`,
			summary.MatchID, p.PlayerID, p.DeckName, p.Won,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting players of %s: %w", summary.MatchID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing match %s: %w", summary.MatchID, err)
	}
	return nil
}

// PlayerStats aggregates decided matches per deck and format.
func (s *PostgresStore) PlayerStats(ctx context.Context, playerID string) (Stats, error) {
	rows, err := s.db.Query(ctx,
		`SELECT r.competitive, r.format, p.deck_name,
		        COUNT(*) FILTER (WHERE p.won)     AS wins,
		        COUNT(*) FILTER (WHERE NOT p.won) AS losses
		   FROM match_players p
		   JOIN match_results r ON r.match_id = p.match_id
		  WHERE p.player_id = $1 AND NOT r.draw AND NOT r.fault AND r.winner <> ''
		  GROUP BY r.competitive, r.format, p.deck_name`,
		playerID,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("querying stats for %s: %w", playerID, err)
	}
	defer rows.Close()

	stats := Stats{PlayerID: playerID}
	for rows.Next() {
		var (
			competitive bool
			ds          DeckStats
		)
		if err := rows.Scan(&competitive, &ds.Format, &ds.DeckName, &ds.Wins, &ds.Losses); err != nil {
			return Stats{}, fmt.Errorf("scanning stats row: %w", err)
		}
		if competitive {
			stats.Competitive = append(stats.Competitive, ds)
		} else {
			stats.Casual = append(stats.Casual, ds)
		}
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterating stats rows: %w", err)
	}
	sortDeckStats(stats.Casual)
	sortDeckStats(stats.Competitive)
	return stats, nil
}
