// Package sequence mints unique, per-entity, per-year resolution identifiers
// from a persisted counter table.
package sequence

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrPersistence indicates the register could not be written. It is always returned to the caller.
	ErrPersistence = errors.New("register persistence failed")

	// ErrCorrupt indicates the stored register could not be read. Loading recovers with an empty register.
	ErrCorrupt = errors.New("register unreadable")
)

// Key identifies one counter.
type Key struct {
	EntityID string
	Year     int
}

// Register maps each key to the last sequence number handed out.
type Register map[Key]int

// Entry is the serialized form of one register row.
type Entry struct {
	EntityID string `json:"entityId"`
	Year     int    `json:"year"`
	Counter  int    `json:"counter"`
}

// Clone returns an independent copy.
func (r Register) Clone() Register {
	out := make(Register, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Entries returns the register as rows ordered by entity then year.
func (r Register) Entries() []Entry {
	out := make([]Entry, 0, len(r))
	for k, v := range r {
		out = append(out, Entry{EntityID: k.EntityID, Year: k.Year, Counter: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EntityID != out[j].EntityID {
			return out[i].EntityID < out[j].EntityID
		}
		return out[i].Year < out[j].Year
	})
	return out
}

// FromEntries rebuilds a register. Duplicate keys keep the larger counter.
func FromEntries(entries []Entry) Register {
	r := make(Register, len(entries))
	for _, e := range entries {
		k := Key{EntityID: e.EntityID, Year: e.Year}
		if e.Counter > r[k] {
			r[k] = e.Counter
		}
	}
	return r
}

type registerFile struct {
	Entries []Entry `json:"entries"`
}

// Encode serializes the register for file-like storage.
func Encode(r Register) ([]byte, error) {
	return json.MarshalIndent(registerFile{Entries: r.Entries()}, "", "  ")
}

// Decode parses bytes produced by Encode.
func Decode(data []byte) (Register, error) {
	var f registerFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	for _, e := range f.Entries {
		if e.EntityID == "" || e.Counter < 0 {
			return nil, fmt.Errorf("%w: invalid entry %+v", ErrCorrupt, e)
		}
	}
	return FromEntries(f.Entries), nil
}
