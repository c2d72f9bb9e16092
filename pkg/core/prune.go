package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/memvault/memvault-go/pkg/graph"
	"github.com/memvault/memvault-go/pkg/ident"
	"github.com/memvault/memvault-go/pkg/memory"
	"github.com/memvault/memvault-go/pkg/record"
)

// Default TTLs for temporary documents, in days.
const (
	// DefaultTTLDays is the general expiry for temporary documents.
	DefaultTTLDays = 7

	// DefaultConcludedTTLDays is the shorter expiry for thinking documents
	// whose status is "concluded".
	DefaultConcludedTTLDays = 1
)

// PruneRequest asks for expired temporary documents to be removed.
type PruneRequest struct {
	// BasePath is the scope root.
	BasePath string

	// TTLDays is the general expiry (0 means DefaultTTLDays).
	TTLDays int

	// ConcludedTTLDays is the expiry for concluded thinking documents
	// (0 means DefaultConcludedTTLDays).
	ConcludedTTLDays int

	// DryRun collects candidates without deleting anything.
	DryRun bool
}

// PruneError records a per-file failure; the scan continues past it.
type PruneError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// PruneResult is the prune response.
type PruneResult struct {
	Status Status `json:"status"`
	DryRun bool   `json:"dryRun"`

	// Candidates lists expired ids found in a dry run.
	Candidates []string `json:"candidates,omitempty"`

	// Removed lists ids actually deleted in a live run.
	Removed []string `json:"removed,omitempty"`

	// Errors lists per-file failures. Status is error iff non-empty.
	Errors []PruneError `json:"errors,omitempty"`
}

// PruneMemories deletes expired documents under temporary/.
//
// A document's reference date is its updated timestamp, falling back to
// created; documents with neither are skipped. The effective TTL drops to
// ConcludedTTLDays for thinking documents marked status "concluded" in the
// frontmatter or its meta block.
//
// Live deletion goes through the generic delete path first and falls back to
// a direct unlink plus best-effort graph removal. A file that fails both
// paths is recorded as a per-file error; the scan always finishes.
func (c *Client) PruneMemories(ctx context.Context, req *PruneRequest) (*PruneResult, error) {
	res := &PruneResult{Status: StatusSuccess, DryRun: req.DryRun}

	if err := ctx.Err(); err != nil {
		return nil, NewMemoryError("PruneMemories", err)
	}

	ttl := req.TTLDays
	if ttl == 0 {
		ttl = DefaultTTLDays
	}
	concludedTTL := req.ConcludedTTLDays
	if concludedTTL == 0 {
		concludedTTL = DefaultConcludedTTLDays
	}

	tempDir := filepath.Join(req.BasePath, memory.TemporaryDir)
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		if os.IsNotExist(err) {
			return res, nil
		}
		return nil, NewMemoryError("PruneMemories", err)
	}

	now := time.Now()
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".md") {
			continue
		}
		id := strings.TrimSuffix(name, ".md")

		// Directories masquerading as .md files surface here as read errors.
		// Lenient mode: a scratch document missing optional header fields is
		// still prunable as long as it has a usable date.
		rec, err := readRecord(filepath.Join(tempDir, name), record.Lenient)
		if err != nil {
			res.Errors = append(res.Errors, PruneError{ID: id, Message: err.Error()})
			continue
		}

		ref, ok := rec.ReferenceTime()
		if !ok {
			continue
		}

		effectiveTTL := ttl
		if isThinkingPrefixed(id) && isConcluded(rec) {
			effectiveTTL = concludedTTL
		}

		ageDays := now.Sub(ref).Hours() / 24
		if ageDays <= float64(effectiveTTL) {
			continue
		}

		if req.DryRun {
			res.Candidates = append(res.Candidates, id)
			continue
		}

		if err := c.pruneOne(ctx, req.BasePath, tempDir, id, name); err != nil {
			res.Errors = append(res.Errors, PruneError{ID: id, Message: err.Error()})
			continue
		}
		res.Removed = append(res.Removed, id)
	}

	if len(res.Errors) > 0 {
		res.Status = StatusError
	}
	return res, nil
}

// pruneOne deletes a single expired document: generic delete path first,
// direct unlink with best-effort graph removal as the fallback.
func (c *Client) pruneOne(ctx context.Context, basePath, tempDir, id, name string) error {
	delRes, err := c.DeleteMemory(ctx, &DeleteRequest{BasePath: basePath, ID: id})
	if err == nil && delRes.Status == StatusSuccess {
		return nil
	}
	if err != nil {
		c.logger.Warn("prune: delete path failed, falling back to unlink",
			zap.String("id", id), zap.Error(err))
	}

	if rmErr := os.Remove(filepath.Join(tempDir, name)); rmErr != nil {
		if err != nil {
			return fmt.Errorf("delete failed (%v); unlink failed: %w", err, rmErr)
		}
		return rmErr
	}

	if g, gErr := graph.Load(basePath); gErr == nil {
		if removed, _ := g.RemoveNode(id); removed {
			if sErr := graph.Save(basePath, g); sErr != nil {
				c.logger.Warn("prune: graph save failed", zap.String("id", id), zap.Error(sErr))
			}
		}
	}
	return nil
}

// isThinkingPrefixed reports whether an id carries either thinking-document
// prefix. Prefix only: the shorter concluded TTL applies to hand-named
// scratch documents too, as long as they opt into the prefix.
func isThinkingPrefixed(id string) bool {
	return strings.HasPrefix(id, ident.ThinkingPrefix) || strings.HasPrefix(id, ident.LegacyThinkingPrefix)
}

// isConcluded reports whether a record is marked concluded in its
// frontmatter status or meta block.
func isConcluded(rec *record.Record) bool {
	if rec.Frontmatter.Status == "concluded" {
		return true
	}
	if v, ok := rec.Frontmatter.Meta["status"]; ok {
		if s, ok := v.(string); ok && s == "concluded" {
			return true
		}
	}
	return false
}
