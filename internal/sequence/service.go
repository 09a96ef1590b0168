package sequence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"resolution-backend/internal/shared/telemetry"
)

// Store is the persistence boundary for the register.
type Store interface {
	Load(ctx context.Context) (Register, error)
	Save(ctx context.Context, r Register) error
}

// Incrementer is implemented by stores that can advance a single counter
// atomically at the source, so processes sharing the store never mint the
// same number.
type Incrementer interface {
	Increment(ctx context.Context, entityID string, year int) (int, error)
}

// Service hands out sequence numbers. Calls are serialized internally so one
// Service may be shared by concurrent request handlers. Processes sharing a
// Store are only safe when the store is an Incrementer.
type Service struct {
	mu       sync.Mutex
	store    Store
	counters Register
}

// NewService hydrates the register from store. An unreadable register is
// logged and replaced by an empty one so the service is always usable.
func NewService(ctx context.Context, store Store) *Service {
	return &Service{store: store, counters: Load(ctx, store)}
}

// Load reads the register, substituting an empty one on any failure.
func Load(ctx context.Context, store Store) Register {
	if store == nil {
		return Register{}
	}
	r, err := store.Load(ctx)
	if err != nil {
		telemetry.Warn("sequence.register_recovered", map[string]any{
			"error":   err.Error(),
			"corrupt": errors.Is(err, ErrCorrupt),
		})
		return Register{}
	}
	if r == nil {
		return Register{}
	}
	return r
}

// NextSequence increments and returns the counter for (entityID, year).
// The first call for a key returns 1. The change is in memory only.
func (s *Service) NextSequence(entityID string, year int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next(entityID, year)
}

func (s *Service) next(entityID string, year int) int {
	k := Key{EntityID: entityID, Year: year}
	s.counters[k]++
	return s.counters[k]
}

// GenerateResolutionID mints "{entity}-{year}-{seq}-RES-{typeTag}" and
// persists the advanced register. A persistence failure is returned; the
// in-memory counter stays advanced so a number is never issued twice.
// Stores implementing Incrementer pick the number themselves.
func (s *Service) GenerateResolutionID(ctx context.Context, entityID string, date time.Time, typeTag string) (string, error) {
	entityID = strings.TrimSpace(entityID)
	if entityID == "" {
		return "", errors.New("sequence: entity id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	year := date.Year()
	if inc, ok := s.store.(Incrementer); ok {
		return s.mintShared(ctx, inc, entityID, year, typeTag)
	}

	seq := s.next(entityID, year)
	id := FormatResolutionID(entityID, year, seq, typeTag)

	if err := s.saveLocked(ctx); err != nil {
		telemetry.Error("sequence.save_failed", map[string]any{
			"entity_id":     entityID,
			"year":          year,
			"resolution_id": id,
			"error":         err.Error(),
		})
		return "", err
	}
	return id, nil
}

// mintShared lets the store pick the number. The in-memory copy only
// follows along for Snapshot.
func (s *Service) mintShared(ctx context.Context, inc Incrementer, entityID string, year int, typeTag string) (string, error) {
	seq, err := inc.Increment(ctx, entityID, year)
	if err != nil {
		if !errors.Is(err, ErrPersistence) {
			err = fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		telemetry.Error("sequence.save_failed", map[string]any{
			"entity_id": entityID,
			"year":      year,
			"error":     err.Error(),
		})
		return "", err
	}
	k := Key{EntityID: entityID, Year: year}
	if seq > s.counters[k] {
		s.counters[k] = seq
	}
	return FormatResolutionID(entityID, year, seq, typeTag), nil
}

// FormatResolutionID renders the identifier with a sequence padded to two digits.
func FormatResolutionID(entityID string, year, seq int, typeTag string) string {
	return fmt.Sprintf("%s-%d-%02d-RES-%s", entityID, year, seq, typeTag)
}

// Save writes the whole register through the store.
func (s *Service) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *Service) saveLocked(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(ctx, s.counters.Clone()); err != nil {
		if errors.Is(err, ErrPersistence) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// Snapshot returns a copy of the current counters.
func (s *Service) Snapshot() Register {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters.Clone()
}
