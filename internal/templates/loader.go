package templates

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a template from YAML or JSON bytes.
func Parse(data []byte) (*Template, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("templates: %w: payload is empty", ErrInvalidInput)
	}
	var tpl Template
	if err := yaml.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("templates: decode: %w", err)
	}
	tpl.ID = strings.TrimSpace(tpl.ID)
	if tpl.ID == "" {
		return nil, fmt.Errorf("templates: %w: id is required", ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(tpl.Fields))
	for _, f := range tpl.Fields {
		if _, dup := seen[f.ID]; dup {
			return nil, fmt.Errorf("templates: %s: %w: duplicate field %q", tpl.ID, ErrInvalidInput, f.ID)
		}
		seen[f.ID] = struct{}{}
	}
	return &tpl, nil
}

// LoadReader reads a template from r.
func LoadReader(r io.Reader) (*Template, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("templates: read: %w", err)
	}
	return Parse(content)
}

// LoadFile loads a template from a file path.
func LoadFile(path string) (*Template, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("templates: read %s: %w", path, err)
	}
	tpl, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("templates: %s: %w", path, err)
	}
	return tpl, nil
}

func isTemplateFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	default:
		return false
	}
}
