// Package embedding implements the embeddings.json cache: one vector per
// memory record, keyed by ID, with a content hash for staleness detection.
//
// The cache is strictly best-effort. Absence of the file, absence of an
// entry, or a corrupt file are all treated as "no cached vector", never as
// errors: every consumer can recompute what it needs.
package embedding

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileName is the embedding cache file inside a scope root.
const FileName = "embeddings.json"

// CurrentVersion is the on-disk format version written by Save.
const CurrentVersion = 1

// Entry is one cached vector.
type Entry struct {
	// Embedding is the vector for the record's content.
	Embedding []float64 `json:"embedding"`

	// Hash is the SHA-256 of the content the vector was computed from.
	Hash string `json:"hash"`

	// Timestamp records when the vector was computed (RFC 3339).
	Timestamp string `json:"timestamp"`
}

// Cache is the embedding store for one scope root.
type Cache struct {
	Version  int              `json:"version"`
	Memories map[string]Entry `json:"memories"`
}

// New returns an empty cache at the current format version.
func New() *Cache {
	return &Cache{Version: CurrentVersion, Memories: map[string]Entry{}}
}

// Load reads the cache under root.
//
// The loader never fails: a missing file returns (empty, false); malformed
// JSON or a missing "memories" key fall back to an empty cache with
// exists=true so a subsequent save repairs the file.
func Load(root string) (cache *Cache, exists bool) {
	data, err := os.ReadFile(filepath.Join(root, FileName))
	if err != nil {
		return New(), false
	}

	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		return New(), true
	}
	if c.Memories == nil {
		c.Memories = map[string]Entry{}
	}
	return &c, true
}

// Save rewrites the whole cache under root. Partial writes are never
// attempted.
func Save(root string, c *Cache) error {
	c.Version = CurrentVersion
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("embedding: save: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, FileName), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("embedding: save: %w", err)
	}
	return nil
}

// Get returns the cached entry for an ID, if present.
func (c *Cache) Get(id string) (Entry, bool) {
	e, ok := c.Memories[id]
	return e, ok
}

// Set stores an entry for an ID.
func (c *Cache) Set(id string, e Entry) {
	c.Memories[id] = e
}

// Remove deletes the entry for an ID, reporting whether it existed.
func (c *Cache) Remove(id string) bool {
	if _, ok := c.Memories[id]; !ok {
		return false
	}
	delete(c.Memories, id)
	return true
}

// NewEntry builds an entry for the given content, stamping the hash and the
// current time.
func NewEntry(vector []float64, content string) Entry {
	return Entry{
		Embedding: vector,
		Hash:      ContentHash(content),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ContentHash returns the SHA-256 hex digest used for staleness checks.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
