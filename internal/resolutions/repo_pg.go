package resolutions

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const resolutionColumns = `id, template_id, template_version, resolution_id, title, file_name, mime_type, size_bytes, storage_provider, storage_key, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResolution(row rowScanner) (Resolution, error) {
	var res Resolution
	var resolutionID sql.NullString
	if err := row.Scan(
		&res.ID,
		&res.TemplateID,
		&res.TemplateVersion,
		&resolutionID,
		&res.Title,
		&res.FileName,
		&res.MimeType,
		&res.SizeBytes,
		&res.StorageProvider,
		&res.StorageKey,
		&res.CreatedAt,
	); err != nil {
		return Resolution{}, err
	}
	if resolutionID.Valid {
		res.ResolutionID = resolutionID.String
	}
	return res, nil
}

// Create inserts a new archive record.
func (r *PGRepo) Create(ctx context.Context, res Resolution) error {
	const query = `
INSERT INTO resolution_documents (
    id,
    template_id,
    template_version,
    resolution_id,
    title,
    file_name,
    mime_type,
    size_bytes,
    storage_provider,
    storage_key,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	storageProvider := res.StorageProvider
	if storageProvider == "" {
		storageProvider = "local"
	}
	var resolutionID sql.NullString
	if res.ResolutionID != "" {
		resolutionID = sql.NullString{String: res.ResolutionID, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		res.ID,
		res.TemplateID,
		res.TemplateVersion,
		resolutionID,
		res.Title,
		res.FileName,
		res.MimeType,
		res.SizeBytes,
		storageProvider,
		res.StorageKey,
		res.CreatedAt,
	)
	return err
}

// GetByID fetches a record by id.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Resolution, error) {
	query := `
SELECT ` + resolutionColumns + `
FROM resolution_documents
WHERE id = $1
LIMIT 1`
	res, err := scanResolution(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resolution{}, ErrNotFound
		}
		return Resolution{}, err
	}
	return res, nil
}

// List lists records ordered newest-first.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Resolution, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	query := `
SELECT ` + resolutionColumns + `
FROM resolution_documents
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Resolution{}
	for rows.Next() {
		res, err := scanResolution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
