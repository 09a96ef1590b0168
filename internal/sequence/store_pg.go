package sequence

import (
	"context"
	"database/sql"
	"fmt"

	"resolution-backend/internal/shared/storage/db"
)

// PGStore keeps the register in the resolution_register table. Identifiers
// are minted with Increment, a single upsert that advances the row in place,
// so replicas sharing the database never hand out the same number. Saves
// never lower a stored counter.
type PGStore struct {
	DB *sql.DB
}

// NewPGStore constructs a Postgres-backed register store.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{DB: db}
}

// Load reads every counter row.
func (s *PGStore) Load(ctx context.Context) (Register, error) {
	const query = `
SELECT entity_id, year, counter
FROM resolution_register`

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrCorrupt, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.EntityID, &e.Year, &e.Counter); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrCorrupt, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrCorrupt, err)
	}
	return FromEntries(entries), nil
}

// Save upserts every counter in one transaction.
func (s *PGStore) Save(ctx context.Context, r Register) error {
	const query = `
INSERT INTO resolution_register (entity_id, year, counter, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (entity_id, year) DO UPDATE
SET counter = GREATEST(resolution_register.counter, EXCLUDED.counter),
    updated_at = EXCLUDED.updated_at`

	err := db.InTx(ctx, s.DB, func(tx *sql.Tx) error {
		for _, e := range r.Entries() {
			if _, err := tx.ExecContext(ctx, query, e.EntityID, e.Year, e.Counter); err != nil {
				return fmt.Errorf("upsert %s/%d: %w", e.EntityID, e.Year, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// Increment advances the counter for (entityID, year) in the database and
// returns the new value. The first call for a key returns 1.
func (s *PGStore) Increment(ctx context.Context, entityID string, year int) (int, error) {
	const query = `
INSERT INTO resolution_register (entity_id, year, counter, updated_at)
VALUES ($1, $2, 1, NOW())
ON CONFLICT (entity_id, year) DO UPDATE
SET counter = resolution_register.counter + 1,
    updated_at = NOW()
RETURNING counter`

	var counter int
	err := db.InTx(ctx, s.DB, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, query, entityID, year).Scan(&counter)
	})
	if err != nil {
		return 0, fmt.Errorf("%w: increment %s/%d: %v", ErrPersistence, entityID, year, err)
	}
	return counter, nil
}

var (
	_ Store       = (*PGStore)(nil)
	_ Incrementer = (*PGStore)(nil)
)
