package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/memvault/memvault-go/pkg/embedding"
	"github.com/memvault/memvault-go/pkg/memory"
	"github.com/memvault/memvault-go/pkg/record"
)

// RefreshRequest asks for the embedding cache to be brought up to date.
type RefreshRequest struct {
	// BasePath is the scope root.
	BasePath string

	// Force recomputes every vector, ignoring the staleness hashes.
	Force bool
}

// RefreshError records a per-file failure; the scan continues past it.
type RefreshError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// RefreshResult is the refresh response.
type RefreshResult struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`

	// Embedded lists ids whose vector was computed this pass.
	Embedded []string `json:"embedded,omitempty"`

	// Skipped counts records whose cached vector was still fresh.
	Skipped int `json:"skipped"`

	// Errors lists per-file failures. Status is error iff non-empty.
	Errors []RefreshError `json:"errors,omitempty"`
}

// RefreshEmbeddings walks every record under permanent/ and temporary/ and
// computes vectors for records with no cache entry or a stale content hash.
// It requires a configured embedding provider.
func (c *Client) RefreshEmbeddings(ctx context.Context, req *RefreshRequest) (*RefreshResult, error) {
	res := &RefreshResult{Status: StatusError}

	if err := ctx.Err(); err != nil {
		return nil, NewMemoryError("RefreshEmbeddings", err)
	}
	if c.embedder == nil {
		res.Error = "no embedding provider configured"
		return res, nil
	}

	cache, _ := embedding.Load(req.BasePath)
	changed := false

	for _, subdir := range []string{memory.PermanentDir, memory.TemporaryDir} {
		dir := filepath.Join(req.BasePath, subdir)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, NewMemoryError("RefreshEmbeddings", err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".md") {
				continue
			}
			id := strings.TrimSuffix(name, ".md")

			rec, err := readRecord(filepath.Join(dir, name), record.Lenient)
			if err != nil {
				res.Errors = append(res.Errors, RefreshError{ID: id, Message: err.Error()})
				continue
			}

			content := embeddableContent(rec)
			if !req.Force {
				if cached, ok := cache.Get(id); ok && cached.Hash == embedding.ContentHash(content) {
					res.Skipped++
					continue
				}
			}

			vector, err := c.embedder.Embed(ctx, content)
			if err != nil {
				res.Errors = append(res.Errors, RefreshError{ID: id, Message: err.Error()})
				continue
			}
			cache.Set(id, embedding.NewEntry(vector, content))
			res.Embedded = append(res.Embedded, id)
			changed = true
		}
	}

	if changed {
		if err := embedding.Save(req.BasePath, cache); err != nil {
			res.Errors = append(res.Errors, RefreshError{Message: fmt.Sprintf("cache save: %v", err)})
		}
	}

	res.Status = StatusSuccess
	if len(res.Errors) > 0 {
		res.Status = StatusError
	}
	return res, nil
}
