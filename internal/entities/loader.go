package entities

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Entities []Entity `yaml:"entities"`
}

// ParseSeed decodes a YAML or JSON seed, either a bare list of records or an
// object with an "entities" list.
func ParseSeed(data []byte) ([]Entity, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var list []Entity
	if trimmed[0] == '[' || trimmed[0] == '-' {
		if err := yaml.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("%w: decode entity list: %v", ErrInvalidInput, err)
		}
	} else {
		var f seedFile
		if err := yaml.Unmarshal(trimmed, &f); err != nil {
			return nil, fmt.Errorf("%w: decode entity seed: %v", ErrInvalidInput, err)
		}
		list = f.Entities
	}

	seen := make(map[string]bool, len(list))
	for i, e := range list {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			return nil, fmt.Errorf("%w: entity %d has no id", ErrInvalidInput, i)
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate entity id %q", ErrInvalidInput, id)
		}
		seen[id] = true
		list[i].ID = id
	}
	return list, nil
}

// LoadFile reads a seed file. An empty path yields no records.
func LoadFile(path string) ([]Entity, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entities %s: %w", path, err)
	}
	return ParseSeed(data)
}
