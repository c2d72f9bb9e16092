package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/memvault/memvault-go/pkg/embedding"
	"github.com/memvault/memvault-go/pkg/graph"
	"github.com/memvault/memvault-go/pkg/index"
	"github.com/memvault/memvault-go/pkg/memory"
	"github.com/memvault/memvault-go/pkg/record"
)

// MoveRequest asks for a memory to move between scope roots.
type MoveRequest struct {
	// ID is the memory to move.
	ID string

	// SourceRoot is the scope root the memory lives in.
	SourceRoot string

	// TargetRoot is the scope root to move it to.
	TargetRoot string

	// TargetScope is written into the record's frontmatter.
	TargetScope memory.Scope
}

// MoveChanges reports which stores a move actually updated.
type MoveChanges struct {
	// FileMoved is true once the record exists at the target and is gone
	// from the source.
	FileMoved bool `json:"fileMoved"`

	// ScopeUpdated is true when the frontmatter scope was rewritten.
	ScopeUpdated bool `json:"scopeUpdated"`

	// SourceGraphUpdated is true when the node and its edges left the
	// source graph.
	SourceGraphUpdated bool `json:"sourceGraphUpdated"`

	// TargetGraphUpdated is true when the node was upserted at the target.
	TargetGraphUpdated bool `json:"targetGraphUpdated"`

	// SourceIndexUpdated is true when the source index entry was removed.
	SourceIndexUpdated bool `json:"sourceIndexUpdated"`

	// TargetIndexUpdated is true when the target index entry was added.
	TargetIndexUpdated bool `json:"targetIndexUpdated"`

	// EmbeddingTransferred is true when a cached vector moved caches.
	EmbeddingTransferred bool `json:"embeddingTransferred"`
}

// MoveResult is the move response.
type MoveResult struct {
	Status  Status      `json:"status"`
	Error   string      `json:"error,omitempty"`
	Changes MoveChanges `json:"changes"`
}

// MoveMemory moves a record between scope roots, preserving its
// permanent/temporary subdirectory and rewriting its frontmatter scope.
//
// The file move is the primary mutation; graph, index, and embedding-cache
// transfers are best-effort per store. The embedding transfer in particular
// never fails the move.
func (c *Client) MoveMemory(ctx context.Context, req *MoveRequest) (*MoveResult, error) {
	res := &MoveResult{Status: StatusError}

	if err := ctx.Err(); err != nil {
		return nil, NewMemoryError("MoveMemory", err)
	}
	if req.ID == "" {
		res.Error = "an id is required"
		return res, nil
	}
	if req.SourceRoot == req.TargetRoot {
		res.Error = "source and target roots are identical"
		return res, nil
	}

	srcPath, subdir, found := locateMemoryFile(req.SourceRoot, req.ID)
	if !found {
		res.Error = notFoundError(req.ID)
		return res, nil
	}

	// Path-traversal guard: the computed target must stay inside the target
	// root even if the id smuggles separators.
	tgtPath := filepath.Join(req.TargetRoot, subdir, memoryFileName(req.ID))
	rel, err := filepath.Rel(req.TargetRoot, tgtPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		res.Error = "invalid target path: " + tgtPath
		return res, nil
	}
	if _, err := os.Stat(tgtPath); err == nil {
		res.Error = conflictError(tgtPath)
		return res, nil
	}

	rec, err := readRecord(srcPath, record.Strict)
	if err != nil {
		return nil, NewMemoryError("MoveMemory", err)
	}

	if req.TargetScope != "" && req.TargetScope != rec.Frontmatter.Scope {
		scope := req.TargetScope
		rec = record.UpdateFrontmatter(rec, record.Patch{Scope: &scope})
		res.Changes.ScopeUpdated = true
	}

	// Write target first, then delete source: a crash in between leaves two
	// copies for Sync to reconcile rather than zero.
	if err := writeRecord(tgtPath, rec); err != nil {
		return nil, NewMemoryError("MoveMemory", err)
	}
	if err := os.Remove(srcPath); err != nil {
		return nil, NewMemoryError("MoveMemory", err)
	}
	res.Changes.FileMoved = true

	// Source graph: drop the node and every edge touching it.
	if g, err := graph.Load(req.SourceRoot); err != nil {
		c.logger.Warn("move: source graph load failed", zap.String("id", req.ID), zap.Error(err))
	} else {
		g.RemoveNode(req.ID)
		if err := graph.Save(req.SourceRoot, g); err != nil {
			c.logger.Warn("move: source graph save failed", zap.String("id", req.ID), zap.Error(err))
		} else {
			res.Changes.SourceGraphUpdated = true
		}
	}

	// Target graph: upsert the node, creating a fresh graph when the target
	// root has none yet.
	if g, err := graph.Load(req.TargetRoot); err != nil {
		c.logger.Warn("move: target graph load failed", zap.String("id", req.ID), zap.Error(err))
	} else {
		g.AddNode(graph.Node{
			ID:    req.ID,
			Type:  string(rec.Frontmatter.Type),
			Title: rec.Frontmatter.Title,
		})
		if err := graph.Save(req.TargetRoot, g); err != nil {
			c.logger.Warn("move: target graph save failed", zap.String("id", req.ID), zap.Error(err))
		} else {
			res.Changes.TargetGraphUpdated = true
		}
	}

	// Source index.
	if idx, err := index.Load(req.SourceRoot); err != nil {
		c.logger.Warn("move: source index load failed", zap.String("id", req.ID), zap.Error(err))
	} else if idx.Remove(req.ID) {
		if err := index.Save(req.SourceRoot, idx); err != nil {
			c.logger.Warn("move: source index save failed", zap.String("id", req.ID), zap.Error(err))
		} else {
			res.Changes.SourceIndexUpdated = true
		}
	}

	// Target index.
	if idx, err := index.Load(req.TargetRoot); err != nil {
		c.logger.Warn("move: target index load failed", zap.String("id", req.ID), zap.Error(err))
	} else {
		idx.Add(indexEntryFor(req.ID, subdir, rec))
		if err := index.Save(req.TargetRoot, idx); err != nil {
			c.logger.Warn("move: target index save failed", zap.String("id", req.ID), zap.Error(err))
		} else {
			res.Changes.TargetIndexUpdated = true
		}
	}

	// Embedding cache transfer: delete from source, insert at target.
	res.Changes.EmbeddingTransferred = c.transferEmbedding(req.SourceRoot, req.TargetRoot, req.ID)

	res.Status = StatusSuccess
	return res, nil
}

// transferEmbedding moves a cached vector between roots, best-effort.
func (c *Client) transferEmbedding(sourceRoot, targetRoot, id string) bool {
	src, exists := embedding.Load(sourceRoot)
	if !exists {
		return false
	}
	entry, ok := src.Get(id)
	if !ok {
		return false
	}

	src.Remove(id)
	if err := embedding.Save(sourceRoot, src); err != nil {
		c.logger.Warn("move: source embedding save failed", zap.String("id", id), zap.Error(err))
		return false
	}

	tgt, _ := embedding.Load(targetRoot)
	tgt.Set(id, entry)
	if err := embedding.Save(targetRoot, tgt); err != nil {
		c.logger.Warn("move: target embedding save failed", zap.String("id", id), zap.Error(err))
		return false
	}
	return true
}

// indexEntryFor builds the index entry for a record at a known location.
func indexEntryFor(id, subdir string, rec *record.Record) index.Entry {
	return index.Entry{
		ID:           id,
		Type:         string(rec.Frontmatter.Type),
		Title:        rec.Frontmatter.Title,
		Tags:         rec.Frontmatter.Tags,
		Created:      rec.Frontmatter.Created,
		Updated:      rec.Frontmatter.Updated,
		Scope:        string(rec.Frontmatter.Scope),
		RelativePath: relativeRecordPath(subdir, id),
		Severity:     rec.Frontmatter.Severity,
	}
}
