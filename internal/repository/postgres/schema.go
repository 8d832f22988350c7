package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS user_account (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT NOT NULL UNIQUE,
		display_name TEXT,
		password_hash BYTEA,
		password_salt BYTEA,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id BIGSERIAL PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES user_account(id) ON DELETE CASCADE,
		token TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		expires_at TIMESTAMPTZ NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS journeys (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES user_account(id) ON DELETE CASCADE,
		destination TEXT NOT NULL,
		title TEXT,
		arrival_date DATE,
		departure_date DATE,
		story TEXT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		tags TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS journey_media (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		journey_id UUID NOT NULL REFERENCES journeys(id) ON DELETE CASCADE,
		object_key TEXT NOT NULL,
		media_url TEXT NOT NULL,
		media_type TEXT NOT NULL,
		ordering INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_journeys_created_at ON journeys (created_at DESC, id)`,
	`CREATE INDEX IF NOT EXISTS idx_journey_media_journey_id ON journey_media (journey_id, ordering)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_token ON sessions (token)`,
}

// EnsureSchema creates the tables the service needs if they do not exist yet.
// Statements are idempotent so the call is safe on every startup.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
