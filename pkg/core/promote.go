package core

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/memvault/memvault-go/pkg/graph"
	"github.com/memvault/memvault-go/pkg/ident"
	"github.com/memvault/memvault-go/pkg/index"
	"github.com/memvault/memvault-go/pkg/memory"
	"github.com/memvault/memvault-go/pkg/record"
)

// PromoteRequest asks for a memory's type to change.
type PromoteRequest struct {
	// BasePath is the scope root.
	BasePath string

	// ID is the memory to promote.
	ID string

	// TargetType is the new memory type.
	TargetType memory.Type
}

// PromoteChanges reports what a promotion actually touched.
type PromoteChanges struct {
	// TypeUpdated is true when the frontmatter type was rewritten.
	TypeUpdated bool `json:"typeUpdated"`

	// FileRelocated is true when the record moved temporary/ → permanent/.
	FileRelocated bool `json:"fileRelocated"`

	// GraphUpdated is true when the node's type (and title) were refreshed.
	GraphUpdated bool `json:"graphUpdated"`

	// IndexUpdated is true when the index entry was refreshed.
	IndexUpdated bool `json:"indexUpdated"`

	// Renamed is true when the id was re-prefixed to match the new type.
	Renamed bool `json:"renamed"`

	// NewID is the post-promotion id (equal to the request id unless the
	// type-prefix cascade renamed it).
	NewID string `json:"newId"`

	// ThinkStateCleared is true when the promoted record was the active
	// thinking document and the state was cleared.
	ThinkStateCleared bool `json:"thinkStateCleared"`
}

// PromoteResult is the promote response.
type PromoteResult struct {
	Status  Status         `json:"status"`
	Error   string         `json:"error,omitempty"`
	Changes PromoteChanges `json:"changes"`
}

// PromoteMemory changes a record's type.
//
// Promoting to the current type is a no-op success. When a temporary record
// gains a permanent type it relocates into permanent/; the collision check
// runs twice, once up front and once right before the physical move, so a
// racing writer cannot slip a same-named file in between.
//
// When the id's type prefix no longer matches the new type (e.g.
// learning-foo promoted to decision), a full rename cascades to re-prefix it.
// A cascade failure is logged, not escalated: the type change on disk has
// already succeeded.
func (c *Client) PromoteMemory(ctx context.Context, req *PromoteRequest) (*PromoteResult, error) {
	res := &PromoteResult{Status: StatusError}
	res.Changes.NewID = req.ID

	if err := ctx.Err(); err != nil {
		return nil, NewMemoryError("PromoteMemory", err)
	}
	if req.ID == "" || !req.TargetType.Valid() {
		res.Error = "an id and a valid target type are required"
		return res, nil
	}

	path, subdir, found := locateMemoryFile(req.BasePath, req.ID)
	if !found {
		res.Error = notFoundError(req.ID)
		return res, nil
	}

	rec, err := readRecord(path, record.Strict)
	if err != nil {
		return nil, NewMemoryError("PromoteMemory", err)
	}

	if rec.Frontmatter.Type == req.TargetType {
		res.Status = StatusSuccess
		return res, nil
	}

	relocate := subdir == memory.TemporaryDir && req.TargetType.IsPermanent()
	permanentPath := filepath.Join(req.BasePath, memory.PermanentDir, memoryFileName(req.ID))
	if relocate {
		if _, err := os.Stat(permanentPath); err == nil {
			res.Error = conflictError(permanentPath)
			return res, nil
		}
	}

	targetType := req.TargetType
	rec = record.UpdateFrontmatter(rec, record.Patch{Type: &targetType})
	if err := writeRecord(path, rec); err != nil {
		return nil, NewMemoryError("PromoteMemory", err)
	}
	res.Changes.TypeUpdated = true

	if relocate {
		// Second collision check right before the physical move: catches a
		// file that appeared after the first lookup.
		if _, err := os.Stat(permanentPath); err == nil {
			res.Error = conflictError(permanentPath)
			return res, nil
		}
		if err := os.MkdirAll(filepath.Dir(permanentPath), 0755); err != nil {
			return nil, NewMemoryError("PromoteMemory", err)
		}
		if err := os.Rename(path, permanentPath); err != nil {
			return nil, NewMemoryError("PromoteMemory", err)
		}
		res.Changes.FileRelocated = true
		subdir = memory.PermanentDir

		res.Changes.ThinkStateCleared = c.clearThinkStateIf(req.BasePath, req.ID)
	}

	// Graph: refresh the node's type (upsert keeps title current too).
	if g, err := graph.Load(req.BasePath); err != nil {
		c.logger.Warn("promote: graph load failed", zap.String("id", req.ID), zap.Error(err))
	} else {
		g.AddNode(graph.Node{ID: req.ID, Type: string(req.TargetType), Title: rec.Frontmatter.Title})
		if err := graph.Save(req.BasePath, g); err != nil {
			c.logger.Warn("promote: graph save failed", zap.String("id", req.ID), zap.Error(err))
		} else {
			res.Changes.GraphUpdated = true
		}
	}

	// Index: refresh type and, when relocated, the path.
	if idx, err := index.Load(req.BasePath); err != nil {
		c.logger.Warn("promote: index load failed", zap.String("id", req.ID), zap.Error(err))
	} else {
		if entry := idx.Find(req.ID); entry != nil {
			entry.Type = string(req.TargetType)
			entry.RelativePath = relativeRecordPath(subdir, req.ID)
		} else {
			idx.Add(indexEntryFor(req.ID, subdir, rec))
		}
		if err := index.Save(req.BasePath, idx); err != nil {
			c.logger.Warn("promote: index save failed", zap.String("id", req.ID), zap.Error(err))
		} else {
			res.Changes.IndexUpdated = true
		}
	}

	// Cascade: re-prefix the id when its type prefix no longer matches.
	if current, ok := ident.TypeFromID(req.ID); ok && current != req.TargetType {
		newID := ident.ReplaceTypePrefix(req.ID, req.TargetType)
		renameRes, err := c.RenameMemory(ctx, &RenameRequest{
			BasePath: req.BasePath,
			OldID:    req.ID,
			NewID:    newID,
		})
		if err != nil || renameRes.Status != StatusSuccess {
			c.logger.Warn("promote: id re-prefix rename failed",
				zap.String("id", req.ID), zap.String("newId", newID), zap.Error(err))
		} else {
			res.Changes.Renamed = true
			res.Changes.NewID = newID
		}
	}

	res.Status = StatusSuccess
	return res, nil
}
