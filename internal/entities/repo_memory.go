package entities

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Entity
}

// NewMemoryRepo constructs a MemoryRepo holding seed.
func NewMemoryRepo(seed ...Entity) *MemoryRepo {
	r := &MemoryRepo{data: make(map[string]Entity, len(seed))}
	for _, e := range seed {
		r.data[e.ID] = e
	}
	return r
}

// Upsert stores or replaces a record.
func (r *MemoryRepo) Upsert(ctx context.Context, e Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(e.ID) == "" {
		return ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[e.ID] = e
	return nil
}

// Get returns the record for id.
func (r *MemoryRepo) Get(ctx context.Context, id string) (Entity, error) {
	if err := ctx.Err(); err != nil {
		return Entity{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.data[id]
	if !ok {
		return Entity{}, ErrNotFound
	}
	return e, nil
}

// List returns every record ordered by id.
func (r *MemoryRepo) List(ctx context.Context) ([]Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Entity, 0, len(r.data))
	for _, e := range r.data {
		out = append(out, e)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
