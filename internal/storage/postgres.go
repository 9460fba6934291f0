package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/droply/droply/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const entryColumns = `id, name, path, size, type, file_url, thumbnail_url, user_id, parent_id, is_folder, is_starred, is_trashed, created_at, updated_at`

// PostgresFileRepository stores FileEntry rows in a single files table.
// All lookups are scoped by user_id so foreign rows surface as not found.
type PostgresFileRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresFileRepository(pool *pgxpool.Pool) *PostgresFileRepository {
	return &PostgresFileRepository{pool: pool}
}

// Connect opens a pgx connection pool against the given database URL.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Str("database", config.ConnConfig.Database).Msg("Connected to database")

	return pool, nil
}

func (r *PostgresFileRepository) CreateEntry(ctx context.Context, entry domain.FileEntry) (domain.FileEntry, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO files (id, name, path, size, type, file_url, thumbnail_url, user_id, parent_id, is_folder, is_starred, is_trashed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		RETURNING `+entryColumns,
		entry.ID, entry.Name, entry.Path, entry.Size, entry.Type, entry.FileURL, entry.ThumbnailURL,
		entry.UserID, entry.ParentID, entry.IsFolder, entry.IsStarred, entry.IsTrashed,
	)

	created, err := scanEntry(row)
	if err != nil {
		return domain.FileEntry{}, fmt.Errorf("failed to insert file entry: %w", err)
	}

	return created, nil
}

func (r *PostgresFileRepository) GetEntry(ctx context.Context, userID, id string) (domain.FileEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM files
		WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FileEntry{}, domain.ErrNotFound
		}
		return domain.FileEntry{}, fmt.Errorf("failed to get file entry: %w", err)
	}

	return entry, nil
}

func (r *PostgresFileRepository) ListEntries(ctx context.Context, userID string, parentID *string) ([]domain.FileEntry, error) {
	var (
		rows pgx.Rows
		err  error
	)

	// The owner filter is always applied; a missing parent means root level,
	// not "any folder".
	if parentID == nil {
		rows, err = r.pool.Query(ctx, `
			SELECT `+entryColumns+`
			FROM files
			WHERE user_id = $1 AND parent_id IS NULL
			ORDER BY created_at, id`,
			userID,
		)
	} else {
		rows, err = r.pool.Query(ctx, `
			SELECT `+entryColumns+`
			FROM files
			WHERE user_id = $1 AND parent_id = $2
			ORDER BY created_at, id`,
			userID, *parentID,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list file entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.FileEntry{}

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file entries: %w", err)
	}

	return entries, nil
}

func (r *PostgresFileRepository) SetStarred(ctx context.Context, userID, id string, starred bool) (domain.FileEntry, error) {
	return r.updateFlag(ctx, userID, id, "is_starred", starred)
}

func (r *PostgresFileRepository) SetTrashed(ctx context.Context, userID, id string, trashed bool) (domain.FileEntry, error) {
	return r.updateFlag(ctx, userID, id, "is_trashed", trashed)
}

func (r *PostgresFileRepository) updateFlag(ctx context.Context, userID, id, column string, value bool) (domain.FileEntry, error) {
	// column is one of the two flag columns above, never caller input.
	row := r.pool.QueryRow(ctx, `
		UPDATE files
		SET `+column+` = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+entryColumns,
		id, userID, value,
	)

	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.FileEntry{}, domain.ErrNotFound
		}
		return domain.FileEntry{}, fmt.Errorf("failed to update file entry: %w", err)
	}

	return entry, nil
}

func (r *PostgresFileRepository) DeleteEntries(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := r.pool.Exec(ctx, `DELETE FROM files WHERE user_id = $1 AND id = ANY($2)`, userID, ids)
	if err != nil {
		return fmt.Errorf("failed to delete file entries: %w", err)
	}

	return nil
}

func scanEntry(row pgx.Row) (domain.FileEntry, error) {
	var entry domain.FileEntry

	err := row.Scan(
		&entry.ID, &entry.Name, &entry.Path, &entry.Size, &entry.Type,
		&entry.FileURL, &entry.ThumbnailURL, &entry.UserID, &entry.ParentID,
		&entry.IsFolder, &entry.IsStarred, &entry.IsTrashed,
		&entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		return domain.FileEntry{}, err
	}

	return entry, nil
}
