package core

import (
	"context"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/memvault/memvault-go/pkg/graph"
	"github.com/memvault/memvault-go/pkg/index"
	"github.com/memvault/memvault-go/pkg/memory"
)

// ArchiveRequest asks for a memory to be retired into archive/.
type ArchiveRequest struct {
	// BasePath is the scope root.
	BasePath string

	// ID is the memory to archive.
	ID string
}

// ArchiveChanges reports what an archive actually touched.
type ArchiveChanges struct {
	// FileArchived is true once the record lives under archive/.
	FileArchived bool `json:"fileArchived"`

	// GraphUpdated is true when the node (and its edges) left the graph.
	GraphUpdated bool `json:"graphUpdated"`

	// IndexUpdated is true when the index entry was removed.
	IndexUpdated bool `json:"indexUpdated"`

	// ThinkStateCleared is true when the archived record was the active
	// thinking document.
	ThinkStateCleared bool `json:"thinkStateCleared"`
}

// ArchiveResult is the archive response.
type ArchiveResult struct {
	Status  Status         `json:"status"`
	Error   string         `json:"error,omitempty"`
	Changes ArchiveChanges `json:"changes"`
}

// ArchiveMemory moves a record into archive/, creating the directory if
// needed, and removes it from the active graph and index. The file is
// preserved; only the derived stores forget it.
//
// Graph and index removals are best-effort: an id that was never indexed is
// not an error, just a false flag in Changes.
func (c *Client) ArchiveMemory(ctx context.Context, req *ArchiveRequest) (*ArchiveResult, error) {
	res := &ArchiveResult{Status: StatusError}

	if err := ctx.Err(); err != nil {
		return nil, NewMemoryError("ArchiveMemory", err)
	}
	if req.ID == "" {
		res.Error = "an id is required"
		return res, nil
	}

	path, _, found := locateMemoryFile(req.BasePath, req.ID)
	if !found {
		res.Error = notFoundError(req.ID)
		return res, nil
	}

	archivePath := filepath.Join(req.BasePath, memory.ArchiveDir, memoryFileName(req.ID))
	if _, err := os.Stat(archivePath); err == nil {
		res.Error = conflictError(archivePath)
		return res, nil
	}

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return nil, NewMemoryError("ArchiveMemory", err)
	}
	if err := os.Rename(path, archivePath); err != nil {
		return nil, NewMemoryError("ArchiveMemory", err)
	}
	res.Changes.FileArchived = true

	if g, err := graph.Load(req.BasePath); err != nil {
		c.logger.Warn("archive: graph load failed", zap.String("id", req.ID), zap.Error(err))
	} else if removed, _ := g.RemoveNode(req.ID); removed {
		if err := graph.Save(req.BasePath, g); err != nil {
			c.logger.Warn("archive: graph save failed", zap.String("id", req.ID), zap.Error(err))
		} else {
			res.Changes.GraphUpdated = true
		}
	}

	if idx, err := index.Load(req.BasePath); err != nil {
		c.logger.Warn("archive: index load failed", zap.String("id", req.ID), zap.Error(err))
	} else if idx.Remove(req.ID) {
		if err := index.Save(req.BasePath, idx); err != nil {
			c.logger.Warn("archive: index save failed", zap.String("id", req.ID), zap.Error(err))
		} else {
			res.Changes.IndexUpdated = true
		}
	}

	res.Changes.ThinkStateCleared = c.clearThinkStateIf(req.BasePath, req.ID)

	res.Status = StatusSuccess
	return res, nil
}
