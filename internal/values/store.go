package values

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMissing indicates a path segment is not present.
	ErrMissing = errors.New("value missing")

	// ErrTypeMismatch indicates a path traverses through a non-object value.
	ErrTypeMismatch = errors.New("value type mismatch")
)

// TemplateKey is the reserved first segment that resolves to template metadata.
const TemplateKey = "$template"

// ThisKey is bound to the current element inside an #each block.
const ThisKey = "this"

// Meta is the template metadata reachable through $template.
type Meta struct {
	ID      string
	Name    string
	Version string
	TypeTag string
}

func (m Meta) lookup(key string) string {
	switch key {
	case "id":
		return m.ID
	case "name":
		return m.Name
	case "version":
		return m.Version
	default:
		return m.TypeTag
	}
}

// Store is a mutable bag of answers addressed by dotted paths.
// It is not safe for concurrent use; each editing session owns its own Store.
type Store struct {
	meta   Meta
	values map[string]Value
}

// NewStore creates an empty store bound to the given template metadata.
func NewStore(meta Meta) *Store {
	return &Store{meta: meta, values: make(map[string]Value)}
}

// FromMap builds a store from decoded JSON/YAML answers.
func FromMap(meta Meta, raw map[string]any) (*Store, error) {
	s := NewStore(meta)
	for k, item := range raw {
		v, err := FromAny(item)
		if err != nil {
			return nil, fmt.Errorf("values: field %s: %w", k, err)
		}
		s.values[k] = v
	}
	return s, nil
}

// Meta returns the template metadata bound to the store.
func (s *Store) Meta() Meta { return s.meta }

// Get resolves a dotted path left to right through nested objects.
func (s *Store) Get(path string) (Value, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Value{}, fmt.Errorf("%w: empty path", ErrMissing)
	}
	segments := strings.Split(path, ".")
	if segments[0] == TemplateKey {
		key := ""
		if len(segments) > 1 {
			key = segments[1]
		}
		return String(s.meta.lookup(key)), nil
	}

	current, ok := s.values[segments[0]]
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrMissing, path)
	}
	for i, seg := range segments[1:] {
		fields, isObject := current.AsObject()
		if !isObject {
			return Value{}, fmt.Errorf("%w: %s is %s", ErrTypeMismatch, strings.Join(segments[:i+1], "."), current.Kind())
		}
		next, found := fields[seg]
		if !found {
			return Value{}, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		current = next
	}
	return current, nil
}

// Lookup is Get with failures collapsed to (Null, false).
func (s *Store) Lookup(path string) (Value, bool) {
	v, err := s.Get(path)
	if err != nil {
		return Value{}, false
	}
	return v, true
}

// Set writes a whole top-level key. Nested paths are not interpreted.
func (s *Store) Set(key string, v Value) {
	s.values[key] = v
}

// Delete removes a top-level key.
func (s *Store) Delete(key string) {
	delete(s.values, key)
}

// Clone returns a deep copy that shares nothing with s.
func (s *Store) Clone() *Store {
	out := &Store{meta: s.meta, values: make(map[string]Value, len(s.values))}
	for k, v := range s.values {
		out.values[k] = v.Clone()
	}
	return out
}

// Child returns a copy of s with ThisKey bound to elem.
func (s *Store) Child(elem Value) *Store {
	out := s.Clone()
	out.values[ThisKey] = elem
	return out
}

// Keys returns the sorted top-level keys.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map exports the store contents as plain Go data.
func (s *Store) Map() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = v.Any()
	}
	return out
}
