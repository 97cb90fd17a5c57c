package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS evaluations (
		id            UUID PRIMARY KEY,
		user_id       TEXT NOT NULL,
		question_id   TEXT NOT NULL DEFAULT '',
		question_text TEXT NOT NULL DEFAULT '',
		transcript    TEXT NOT NULL DEFAULT '',
		framework     TEXT NOT NULL,
		feedback_text TEXT NOT NULL,
		overall_score DOUBLE PRECISION NOT NULL,
		source        TEXT NOT NULL,
		is_ideal      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS evaluations_user_created_idx ON evaluations (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS quota_buckets (
		user_id     TEXT PRIMARY KEY,
		capacity    BIGINT NOT NULL,
		refill_rate DOUBLE PRECISION NOT NULL,
		tokens      DOUBLE PRECISION NOT NULL,
		last_refill TIMESTAMPTZ NOT NULL
	)`,
}

// EnsureSchema creates the tables the service needs. It is idempotent.
func EnsureSchema(ctx context.Context, pool PgxPool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("op=postgres.EnsureSchema stmt=%d: %w", i, err)
		}
	}
	return nil
}
