package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Registry holds the loaded templates keyed by id. Templates are immutable;
// Reload swaps the whole set at once, so a request sees either the old or
// the new set, never a mix.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewRegistry builds a registry from already-parsed templates.
func NewRegistry(tpls ...*Template) *Registry {
	r := &Registry{templates: make(map[string]*Template, len(tpls))}
	for _, t := range tpls {
		r.templates[t.ID] = t
	}
	return r
}

// LoadDir loads every template file directly under dir.
// A missing directory yields an empty registry.
func LoadDir(dir string) (*Registry, error) {
	r := NewRegistry()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("templates: read dir %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isTemplateFile(entry.Name()) {
			continue
		}
		tpl, err := LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if _, dup := r.templates[tpl.ID]; dup {
			return nil, fmt.Errorf("templates: %w: duplicate template id %q", ErrInvalidInput, tpl.ID)
		}
		r.templates[tpl.ID] = tpl
	}
	return r, nil
}

// Reload re-reads dir and replaces the current set. On error the previous
// set stays in place.
func (r *Registry) Reload(dir string) error {
	next, err := LoadDir(dir)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.templates = next.templates
	r.mu.Unlock()
	return nil
}

// Get returns the template with the given id.
func (r *Registry) Get(id string) (*Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tpl, ok := r.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	return tpl, nil
}

// List returns all templates ordered by id.
func (r *Registry) List() []*Template {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
