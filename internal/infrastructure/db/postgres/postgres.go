// Package postgres implements the task and user stores on PostgreSQL via pgx.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultTimeout = 10 * time.Second

type Config struct {
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	Timeout         time.Duration
}

// Connect opens a pool and pings it.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL DEFAULT 'technician',
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	seq             BIGSERIAL,
	id              TEXT PRIMARY KEY,
	title           TEXT NOT NULL,
	description     TEXT NOT NULL DEFAULT '',
	category        TEXT NOT NULL,
	priority        TEXT NOT NULL DEFAULT 'medium',
	status          TEXT NOT NULL DEFAULT 'pending',
	client_name     TEXT NOT NULL,
	client_phone    TEXT NOT NULL DEFAULT '',
	client_email    TEXT NOT NULL DEFAULT '',
	equipment       TEXT NOT NULL DEFAULT '',
	equipment_model TEXT NOT NULL DEFAULT '',
	required_parts  TEXT NOT NULL DEFAULT '',
	budget          NUMERIC(14, 2),
	technician_id   TEXT NOT NULL,
	due_date        DATE,
	created_at      TIMESTAMPTZ NOT NULL,
	completed_at    TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS tasks_created_at_idx ON tasks (created_at DESC, seq DESC);
CREATE INDEX IF NOT EXISTS tasks_status_idx ON tasks (status);
CREATE INDEX IF NOT EXISTS tasks_category_idx ON tasks (category);
`

// EnsureSchema creates the tables and indexes when they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Pinger adapts a pool to the readiness probe.
type Pinger struct {
	Pool *pgxpool.Pool
}

func (p Pinger) Ping(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}
