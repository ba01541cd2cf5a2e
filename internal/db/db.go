// Package db provides PostgreSQL storage for evaluation sessions and
// feedback submissions.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// EnsureSchema creates the tables this service needs if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS eval_sessions (
	id               UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	company_name     TEXT NOT NULL DEFAULT '',
	employees        INTEGER NOT NULL DEFAULT 0,
	annual_revenue   BIGINT NOT NULL DEFAULT 0,
	position_title   TEXT NOT NULL DEFAULT '',
	occupation_code  TEXT,
	proposed_salary  BIGINT NOT NULL DEFAULT 0,
	step             TEXT NOT NULL DEFAULT 'company',
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS feedback (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	category    TEXT NOT NULL,
	message     TEXT NOT NULL,
	email       TEXT NOT NULL DEFAULT '',
	page        TEXT NOT NULL DEFAULT '',
	issue_url   TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}
