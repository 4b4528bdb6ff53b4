package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx pool and verifies the connection.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Migrate applies the schema. Usage rows keep a soft reference to
// their trigger: deleting a trigger does not cascade into history.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS triggers (
			id UUID PRIMARY KEY,
			pattern TEXT NOT NULL,
			match_type TEXT NOT NULL,
			case_sensitive BOOLEAN NOT NULL DEFAULT TRUE,
			responses JSONB NOT NULL,
			cooldown_seconds INTEGER NOT NULL DEFAULT 0,
			channels JSONB NOT NULL DEFAULT '[]',
			roles JSONB NOT NULL DEFAULT '[]',
			blacklist_users JSONB NOT NULL DEFAULT '[]',
			whitelist_users JSONB NOT NULL DEFAULT '[]',
			creator_id TEXT,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS triggers_pattern_idx ON triggers (pattern)`,
		`CREATE TABLE IF NOT EXISTS trigger_usage (
			id BIGSERIAL PRIMARY KEY,
			trigger_id UUID NOT NULL,
			user_id TEXT NOT NULL,
			channel_id TEXT NOT NULL,
			fired_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS trigger_usage_fired_at_idx ON trigger_usage (fired_at DESC)`,
	}
	for _, statement := range statements {
		if _, err := pool.Exec(ctx, statement); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
