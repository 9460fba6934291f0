package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS files (
		id            UUID PRIMARY KEY,
		name          TEXT NOT NULL,
		path          TEXT NOT NULL,
		size          BIGINT NOT NULL DEFAULT 0,
		type          TEXT NOT NULL,
		file_url      TEXT NOT NULL DEFAULT '',
		thumbnail_url TEXT NOT NULL DEFAULT '',
		user_id       TEXT NOT NULL,
		parent_id     UUID REFERENCES files (id),
		is_folder     BOOLEAN NOT NULL DEFAULT FALSE,
		is_starred    BOOLEAN NOT NULL DEFAULT FALSE,
		is_trashed    BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS files_user_parent_idx ON files (user_id, parent_id)`,
}

// Migrate creates the files table and its indexes if they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}

	log.Info().Msg("Database schema is up to date")

	return nil
}
