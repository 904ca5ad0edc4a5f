package image

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const repoTimeout = 5 * time.Second

// PostgresRepository is the relational metadata store backend. Scan order is
// image_id order, with keyset pagination over the same exclusive-start
// contract as the embedded backend.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository builds a metadata repository over a pgx pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the images table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
CREATE TABLE IF NOT EXISTS images (
    image_id    TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL,
    title       TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL DEFAULT '',
    tags        TEXT[] NOT NULL DEFAULT '{}',
    s3_key      TEXT NOT NULL,
    s3_url      TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL
);`

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure images schema: %w", err)
	}
	return nil
}

// Put inserts the metadata record.
func (r *PostgresRepository) Put(ctx context.Context, meta Metadata) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO images (image_id, user_id, title, description, tags, s3_key, s3_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);`

	_, err := r.pool.Exec(ctx, query,
		meta.ImageID,
		meta.UserID,
		meta.Title,
		meta.Description,
		meta.Tags,
		meta.S3Key,
		meta.S3URL,
		meta.CreatedAt,
		meta.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert image metadata: %w", err)
	}
	return nil
}

// Get fetches the record for imageID, returning ErrNotFound when absent.
func (r *PostgresRepository) Get(ctx context.Context, imageID string) (Metadata, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT image_id, user_id, title, description, tags, s3_key, s3_url, created_at, updated_at
FROM images WHERE image_id = $1;`

	var meta Metadata
	err := r.pool.QueryRow(ctx, query, imageID).Scan(
		&meta.ImageID,
		&meta.UserID,
		&meta.Title,
		&meta.Description,
		&meta.Tags,
		&meta.S3Key,
		&meta.S3URL,
		&meta.CreatedAt,
		&meta.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Metadata{}, ErrNotFound
		}
		return Metadata{}, fmt.Errorf("get image metadata: %w", err)
	}
	return meta, nil
}

// Delete removes the record for imageID.
func (r *PostgresRepository) Delete(ctx context.Context, imageID string) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	if _, err := r.pool.Exec(ctx, `DELETE FROM images WHERE image_id = $1;`, imageID); err != nil {
		return fmt.Errorf("delete image metadata: %w", err)
	}
	return nil
}

// Scan pages through records matching the user/tag filters in image_id
// order, fetching one row beyond the limit to decide HasMore.
func (r *PostgresRepository) Scan(ctx context.Context, opts ScanOptions) (ScanPage, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT image_id, user_id, title, description, tags, s3_key, s3_url, created_at, updated_at
FROM images
WHERE ($1 = '' OR user_id = $1)
  AND ($2 = '' OR tags @> ARRAY[$2]::text[])
  AND ($3 = '' OR image_id > $3)
ORDER BY image_id
LIMIT $4;`

	// NULL limit scans to the end when the caller asks for everything.
	var fetch any
	if opts.Limit > 0 {
		fetch = opts.Limit + 1
	}
	rows, err := r.pool.Query(ctx, query, opts.UserID, opts.Tag, opts.StartAfter, fetch)
	if err != nil {
		return ScanPage{}, fmt.Errorf("scan image metadata: %w", err)
	}
	defer rows.Close()

	var page ScanPage
	for rows.Next() {
		var meta Metadata
		if err := rows.Scan(
			&meta.ImageID,
			&meta.UserID,
			&meta.Title,
			&meta.Description,
			&meta.Tags,
			&meta.S3Key,
			&meta.S3URL,
			&meta.CreatedAt,
			&meta.UpdatedAt,
		); err != nil {
			return ScanPage{}, fmt.Errorf("scan image row: %w", err)
		}

		if opts.Limit > 0 && len(page.Items) >= opts.Limit {
			page.HasMore = true
			break
		}
		page.Items = append(page.Items, meta)
		page.LastKey = meta.ImageID
	}
	if err := rows.Err(); err != nil {
		return ScanPage{}, fmt.Errorf("iterate image rows: %w", err)
	}
	return page, nil
}

// Ping verifies connectivity, for readiness checks.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()
	return r.pool.Ping(ctx)
}
