// Package store persists extracted match rows and timeline aggregates to
// Postgres. Every save is insert-or-ignore on the natural key, so re-running
// an ingest over already-stored matches is a no-op.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"match-ingest/internal/stats"
	"match-ingest/internal/timeline"
)

// Store wraps a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a connection pool and verifies it with a ping.
func New(ctx context.Context, dbURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

// Pool returns the underlying connection pool for custom queries.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// CreateTables creates the tables this store owns if they don't exist.
// match_stats is not created here: its ~140 stat columns are managed by
// schema migrations outside this binary.
func (s *Store) CreateTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS players (
			puuid TEXT PRIMARY KEY,
			game_name TEXT NOT NULL,
			tag_line TEXT NOT NULL,
			region TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS matches (
			match_id TEXT PRIMARY KEY,
			puuid TEXT NOT NULL,
			queue_id INTEGER NOT NULL,
			game_duration INTEGER NOT NULL,
			ingested_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS timeline_summaries (
			match_id TEXT NOT NULL,
			puuid TEXT NOT NULL,
			match_duration_min INTEGER NOT NULL,
			match_duration_ms BIGINT NOT NULL,
			summary JSONB NOT NULL,
			PRIMARY KEY (match_id, puuid)
		)`,
		`CREATE TABLE IF NOT EXISTS position_samples (
			match_id TEXT NOT NULL,
			puuid TEXT NOT NULL,
			minute INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			PRIMARY KEY (match_id, puuid, minute)
		)`,
		`CREATE TABLE IF NOT EXISTS ward_samples (
			match_id TEXT NOT NULL,
			puuid TEXT NOT NULL,
			ts BIGINT NOT NULL,
			minute INTEGER NOT NULL,
			ward_type TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			PRIMARY KEY (match_id, puuid, ts)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_puuid ON matches(puuid)`,
		`CREATE INDEX IF NOT EXISTS idx_position_samples_puuid ON position_samples(puuid)`,
	}

	for _, q := range queries {
		if _, err := s.pool.Exec(ctx, q); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// SavePlayer records the resolved account identity.
func (s *Store) SavePlayer(ctx context.Context, puuid, gameName, tagLine, region string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO players (puuid, game_name, tag_line, region)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (puuid) DO NOTHING
	`, puuid, gameName, tagLine, region)
	return err
}

// SaveMatch records that a match has been ingested for a player.
func (s *Store) SaveMatch(ctx context.Context, matchID, puuid string, queueID, gameDuration int) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO matches (match_id, puuid, queue_id, game_duration)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (match_id) DO NOTHING
	`, matchID, puuid, queueID, gameDuration)
	return err
}

// SaveMatchRecords inserts extracted stat rows into match_stats. The column
// list is built from the keys present in each record: absent optional stats
// stay NULL rather than zero.
func (s *Store) SaveMatchRecords(ctx context.Context, records []stats.Record) error {
	for _, rec := range records {
		if err := s.saveMatchRecord(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) saveMatchRecord(ctx context.Context, rec stats.Record) error {
	if len(rec) == 0 {
		return nil
	}

	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cols := make([]string, 0, len(keys))
	placeholders := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for i, k := range keys {
		cols = append(cols, pgx.Identifier{colName(k)}.Sanitize())
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, rec[k])
	}

	query := fmt.Sprintf(`
		INSERT INTO match_stats (%s)
		VALUES (%s)
		ON CONFLICT (match_id, puuid) DO NOTHING
	`, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert match stats for %v: %w", rec["matchId"], err)
	}
	return nil
}

// SaveTimelineSummaries stores each summary's headline scalars plus the
// whole summary as jsonb.
func (s *Store) SaveTimelineSummaries(ctx context.Context, summaries []timeline.Summary) error {
	for _, sum := range summaries {
		payload, err := json.Marshal(sum)
		if err != nil {
			return fmt.Errorf("failed to marshal summary for %s: %w", sum.MatchID, err)
		}
		_, err = s.pool.Exec(ctx, `
			INSERT INTO timeline_summaries (match_id, puuid, match_duration_min, match_duration_ms, summary)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (match_id, puuid) DO NOTHING
		`, sum.MatchID, sum.PUUID, sum.DurationMin, sum.DurationMs, payload)
		if err != nil {
			return fmt.Errorf("failed to insert timeline summary for %s: %w", sum.MatchID, err)
		}
	}
	return nil
}

// SavePositionSamples batches all samples into one round trip.
func (s *Store) SavePositionSamples(ctx context.Context, samples []timeline.PositionSample) error {
	if len(samples) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range samples {
		batch.Queue(`
			INSERT INTO position_samples (match_id, puuid, minute, x, y)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (match_id, puuid, minute) DO NOTHING
		`, p.MatchID, p.PUUID, p.Minute, p.X, p.Y)
	}
	return s.sendBatch(ctx, batch, "position samples")
}

// SaveWardSamples batches all ward placements into one round trip.
func (s *Store) SaveWardSamples(ctx context.Context, samples []timeline.WardSample) error {
	if len(samples) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, w := range samples {
		batch.Queue(`
			INSERT INTO ward_samples (match_id, puuid, ts, minute, ward_type, x, y)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (match_id, puuid, ts) DO NOTHING
		`, w.MatchID, w.PUUID, w.Timestamp, w.Minute, w.WardType, w.X, w.Y)
	}
	return s.sendBatch(ctx, batch, "ward samples")
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch, what string) error {
	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert %s: %w", what, err)
		}
	}
	return nil
}

// colName maps a record key to its column: camelCase to snake_case, with
// the "challenges." prefix becoming a challenges_ column group.
func colName(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 8)
	for i, r := range key {
		switch {
		case r == '.':
			b.WriteByte('_')
		case unicode.IsUpper(r):
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
