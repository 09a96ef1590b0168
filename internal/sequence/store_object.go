package sequence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"resolution-backend/internal/shared/storage/object"
)

const registerContentType = "application/json"

// ObjectStore keeps the register as a single object, e.g. in S3 where a PUT
// replaces the object atomically.
type ObjectStore struct {
	Objects object.ObjectStore
	Key     string
}

// NewObjectStore constructs a register store over an object store key.
func NewObjectStore(objects object.ObjectStore, key string) *ObjectStore {
	return &ObjectStore{Objects: objects, Key: key}
}

// Load fetches and decodes the register object. A missing object is an empty register.
func (s *ObjectStore) Load(ctx context.Context) (Register, error) {
	rc, err := s.Objects.Open(ctx, s.Key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return Register{}, nil
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrCorrupt, s.Key, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrCorrupt, s.Key, err)
	}
	return Decode(data)
}

// Save uploads the whole register under Key.
func (s *ObjectStore) Save(ctx context.Context, r Register) error {
	data, err := Encode(r)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersistence, err)
	}
	if _, err := s.Objects.SaveWithKey(ctx, s.Key, registerContentType, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

var _ Store = (*ObjectStore)(nil)
