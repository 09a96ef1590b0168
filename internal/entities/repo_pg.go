package entities

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const entityColumns = `id, legal_name, short_name, jurisdiction, tax_id, effective_date, status, address, email`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (Entity, error) {
	var e Entity
	var shortName, jurisdiction, taxID, effectiveDate, status, address, email sql.NullString
	if err := row.Scan(
		&e.ID,
		&e.LegalName,
		&shortName,
		&jurisdiction,
		&taxID,
		&effectiveDate,
		&status,
		&address,
		&email,
	); err != nil {
		return Entity{}, err
	}
	e.ShortName = shortName.String
	e.Jurisdiction = jurisdiction.String
	e.TaxID = taxID.String
	e.EffectiveDate = effectiveDate.String
	e.Status = status.String
	e.Address = address.String
	e.Email = email.String
	return e, nil
}

// Get fetches one entity by id.
func (r *PGRepo) Get(ctx context.Context, id string) (Entity, error) {
	query := `
SELECT ` + entityColumns + `
FROM entities
WHERE id = $1`
	e, err := scanEntity(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entity{}, ErrNotFound
		}
		return Entity{}, err
	}
	return e, nil
}

// List returns every entity ordered by id.
func (r *PGRepo) List(ctx context.Context) ([]Entity, error) {
	query := `
SELECT ` + entityColumns + `
FROM entities
ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entity{}
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Upsert inserts or replaces an entity record.
func (r *PGRepo) Upsert(ctx context.Context, e Entity) error {
	const query = `
INSERT INTO entities (id, legal_name, short_name, jurisdiction, tax_id, effective_date, status, address, email, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
ON CONFLICT (id) DO UPDATE
SET legal_name = EXCLUDED.legal_name,
    short_name = EXCLUDED.short_name,
    jurisdiction = EXCLUDED.jurisdiction,
    tax_id = EXCLUDED.tax_id,
    effective_date = EXCLUDED.effective_date,
    status = EXCLUDED.status,
    address = EXCLUDED.address,
    email = EXCLUDED.email,
    updated_at = EXCLUDED.updated_at`
	if e.ID == "" {
		return ErrInvalidInput
	}
	_, err := r.DB.ExecContext(ctx, query,
		e.ID,
		e.LegalName,
		nullString(e.ShortName),
		nullString(e.Jurisdiction),
		nullString(e.TaxID),
		nullString(e.EffectiveDate),
		nullString(e.Status),
		nullString(e.Address),
		nullString(e.Email),
	)
	return err
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repo = (*PGRepo)(nil)
