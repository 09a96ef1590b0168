package sequence

import (
	"context"
	"sync"
)

// MemoryStore keeps the register in process memory. It is used when no
// durable location is configured and in tests.
type MemoryStore struct {
	mu    sync.Mutex
	saved Register
	saves int
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{saved: Register{}}
}

func (s *MemoryStore) Load(ctx context.Context) (Register, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved.Clone(), nil
}

func (s *MemoryStore) Save(ctx context.Context, r Register) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = r.Clone()
	s.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (s *MemoryStore) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

var _ Store = (*MemoryStore)(nil)
