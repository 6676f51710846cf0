package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS outbreaks (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		disease_type TEXT NOT NULL,
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		severity TEXT NOT NULL,
		event_date TIMESTAMPTZ NOT NULL,
		affected_animals INTEGER NOT NULL DEFAULT 0,
		risk_radius_km DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_outbreaks_created_at ON outbreaks (created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_outbreaks_event_date ON outbreaks (event_date)`,
	`CREATE TABLE IF NOT EXISTS farms (
		id UUID PRIMARY KEY,
		owner_id UUID NOT NULL,
		name TEXT NOT NULL,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		notifications_enabled BOOLEAN NOT NULL DEFAULT TRUE
	)`,
}

// Migrate creates the schema when it does not exist yet. Statements are
// idempotent so this is safe to run on every startup.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", wrapUnavailable(err))
		}
	}
	return nil
}
