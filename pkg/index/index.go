// Package index implements the index.json store: a flat array of lightweight
// metadata entries, one per live memory record, for fast listing without
// parsing record files.
//
// Lookups are linear scans. Memory counts are personal/project scale, so no
// secondary indices are kept.
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileName is the index store file inside a scope root.
const FileName = "index.json"

// CurrentVersion is the on-disk format version written by Save.
const CurrentVersion = 1

// Entry is the denormalized metadata for one memory record.
//
// RelativePath must always equal the record's actual location relative to
// its scope root (e.g. "permanent/decision-use-sqlite.md").
type Entry struct {
	ID           string   `json:"id"`
	Type         string   `json:"type"`
	Title        string   `json:"title"`
	Tags         []string `json:"tags"`
	Created      string   `json:"created"`
	Updated      string   `json:"updated"`
	Scope        string   `json:"scope"`
	RelativePath string   `json:"relativePath"`
	Severity     string   `json:"severity,omitempty"`
}

// Index is the full listing for one scope root.
type Index struct {
	Version     int     `json:"version"`
	LastUpdated string  `json:"lastUpdated"`
	Memories    []Entry `json:"memories"`
}

// New returns an empty index at the current format version.
func New() *Index {
	return &Index{Version: CurrentVersion, Memories: []Entry{}}
}

// Load reads the index store under root. A missing file yields an empty
// index; malformed JSON is an error.
func Load(root string) (*Index, error) {
	data, err := os.ReadFile(filepath.Join(root, FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("index: load: %w", err)
	}

	var idx Index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("index: load: %w", err)
	}
	if idx.Memories == nil {
		idx.Memories = []Entry{}
	}
	return &idx, nil
}

// Save rewrites the whole index store under root, stamping LastUpdated.
func Save(root string, idx *Index) error {
	idx.Version = CurrentVersion
	idx.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("index: save: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, FileName), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("index: save: %w", err)
	}
	return nil
}

// Add upserts an entry by ID.
func (idx *Index) Add(e Entry) {
	for i := range idx.Memories {
		if idx.Memories[i].ID == e.ID {
			idx.Memories[i] = e
			return
		}
	}
	idx.Memories = append(idx.Memories, e)
}

// Remove deletes the entry with the given ID, reporting whether anything was
// removed.
func (idx *Index) Remove(id string) bool {
	removed := false
	kept := idx.Memories[:0]
	for _, e := range idx.Memories {
		if e.ID == id {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	idx.Memories = kept
	return removed
}

// Find returns a pointer to the entry with the given ID, or nil.
func (idx *Index) Find(id string) *Entry {
	for i := range idx.Memories {
		if idx.Memories[i].ID == id {
			return &idx.Memories[i]
		}
	}
	return nil
}
