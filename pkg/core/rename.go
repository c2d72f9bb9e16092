package core

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/memvault/memvault-go/pkg/graph"
	"github.com/memvault/memvault-go/pkg/index"
	"github.com/memvault/memvault-go/pkg/record"
)

// RenameRequest asks for a memory's id to change in place.
type RenameRequest struct {
	// BasePath is the scope root.
	BasePath string

	// OldID is the current id.
	OldID string

	// NewID is the replacement id.
	NewID string
}

// RenameChanges reports what a rename actually touched. A false flag after a
// successful rename means the sub-step was attempted and failed (repairable
// by Sync), not skipped.
type RenameChanges struct {
	// FileRenamed is true once the record file carries the new id.
	FileRenamed bool `json:"fileRenamed"`

	// FrontmatterUpdated is true when an embedded id field was rewritten.
	FrontmatterUpdated bool `json:"frontmatterUpdated"`

	// GraphUpdated is true when the node id and its edges were rewritten.
	GraphUpdated bool `json:"graphUpdated"`

	// EdgesUpdated counts edge endpoints rewritten from old to new.
	EdgesUpdated int `json:"edgesUpdated"`

	// IndexUpdated is true when the index entry was re-keyed.
	IndexUpdated bool `json:"indexUpdated"`
}

// RenameResult is the rename response.
type RenameResult struct {
	Status  Status        `json:"status"`
	Error   string        `json:"error,omitempty"`
	Changes RenameChanges `json:"changes"`
}

// RenameMemory renames a memory in place: the file keeps its subdirectory,
// the frontmatter id (top-level or meta.id) is rewritten when present, and
// the graph node, its edges, and the index entry are re-keyed best-effort.
//
// Terminal failures (old id missing, new id taken) come back as a
// StatusError result with no side effects. A record that cannot be parsed is
// returned as an error: that is data corruption and must surface loudly.
func (c *Client) RenameMemory(ctx context.Context, req *RenameRequest) (*RenameResult, error) {
	res := &RenameResult{Status: StatusError}

	if err := ctx.Err(); err != nil {
		return nil, NewMemoryError("RenameMemory", err)
	}
	if req.OldID == "" || req.NewID == "" || req.OldID == req.NewID {
		res.Error = "a distinct old and new id are required"
		return res, nil
	}

	oldPath, subdir, found := locateMemoryFile(req.BasePath, req.OldID)
	if !found {
		res.Error = notFoundError(req.OldID)
		return res, nil
	}
	if _, _, taken := locateMemoryFile(req.BasePath, req.NewID); taken {
		res.Error = conflictError(req.NewID)
		return res, nil
	}

	rec, err := readRecord(oldPath, record.Strict)
	if err != nil {
		return nil, NewMemoryError("RenameMemory", err)
	}

	// Rewrite embedded ids only where the record already carries them.
	patch := record.Patch{}
	if rec.Frontmatter.ID != "" {
		patch.ID = &req.NewID
		res.Changes.FrontmatterUpdated = true
	}
	if rec.Frontmatter.Meta != nil {
		if _, ok := rec.Frontmatter.Meta["id"]; ok {
			patch.Meta = map[string]interface{}{"id": req.NewID}
			res.Changes.FrontmatterUpdated = true
		}
	}
	rec = record.UpdateFrontmatter(rec, patch)

	newPath := filepath.Join(req.BasePath, subdir, memoryFileName(req.NewID))
	if err := writeRecord(newPath, rec); err != nil {
		return nil, NewMemoryError("RenameMemory", err)
	}
	if err := os.Remove(oldPath); err != nil {
		return nil, NewMemoryError("RenameMemory", err)
	}
	res.Changes.FileRenamed = true

	// Graph: re-key the node and every edge touching it.
	if g, err := graph.Load(req.BasePath); err != nil {
		c.logger.Warn("rename: graph load failed", zap.String("id", req.OldID), zap.Error(err))
	} else {
		count := g.RenameNode(req.OldID, req.NewID)
		if err := graph.Save(req.BasePath, g); err != nil {
			c.logger.Warn("rename: graph save failed", zap.String("id", req.OldID), zap.Error(err))
		} else {
			res.Changes.GraphUpdated = true
			res.Changes.EdgesUpdated = count
		}
	}

	// Index: re-key the entry and its relative path.
	if idx, err := index.Load(req.BasePath); err != nil {
		c.logger.Warn("rename: index load failed", zap.String("id", req.OldID), zap.Error(err))
	} else if entry := idx.Find(req.OldID); entry != nil {
		entry.ID = req.NewID
		entry.RelativePath = strings.ReplaceAll(entry.RelativePath, req.OldID, req.NewID)
		if err := index.Save(req.BasePath, idx); err != nil {
			c.logger.Warn("rename: index save failed", zap.String("id", req.OldID), zap.Error(err))
		} else {
			res.Changes.IndexUpdated = true
		}
	}

	res.Status = StatusSuccess
	return res, nil
}
