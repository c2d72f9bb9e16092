package core

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/memvault/memvault-go/pkg/embedding"
	"github.com/memvault/memvault-go/pkg/graph"
	"github.com/memvault/memvault-go/pkg/index"
)

// DeleteRequest asks for a memory to be destroyed.
type DeleteRequest struct {
	// BasePath is the scope root.
	BasePath string

	// ID is the memory to delete.
	ID string
}

// DeleteChanges reports which stores a delete actually touched.
type DeleteChanges struct {
	// FileDeleted is true once the record file is gone.
	FileDeleted bool `json:"fileDeleted"`

	// GraphUpdated is true when the node and its edges were removed.
	GraphUpdated bool `json:"graphUpdated"`

	// IndexUpdated is true when the index entry was removed.
	IndexUpdated bool `json:"indexUpdated"`

	// EmbeddingRemoved is true when a cached vector was dropped.
	EmbeddingRemoved bool `json:"embeddingRemoved"`

	// ThinkStateCleared is true when the deleted record was the active
	// thinking document.
	ThinkStateCleared bool `json:"thinkStateCleared"`
}

// DeleteResult is the delete response.
type DeleteResult struct {
	Status  Status        `json:"status"`
	Error   string        `json:"error,omitempty"`
	Changes DeleteChanges `json:"changes"`
}

// DeleteMemory destroys a record file and best-effort evicts it from the
// graph, the index, and the embedding cache. This is the generic delete path
// prune uses before falling back to a raw unlink.
func (c *Client) DeleteMemory(ctx context.Context, req *DeleteRequest) (*DeleteResult, error) {
	res := &DeleteResult{Status: StatusError}

	if err := ctx.Err(); err != nil {
		return nil, NewMemoryError("DeleteMemory", err)
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

	if err := os.Remove(path); err != nil {
		return nil, NewMemoryError("DeleteMemory", err)
	}
	res.Changes.FileDeleted = true

	if g, err := graph.Load(req.BasePath); err != nil {
		c.logger.Warn("delete: graph load failed", zap.String("id", req.ID), zap.Error(err))
	} else if removed, _ := g.RemoveNode(req.ID); removed {
		if err := graph.Save(req.BasePath, g); err != nil {
			c.logger.Warn("delete: graph save failed", zap.String("id", req.ID), zap.Error(err))
		} else {
			res.Changes.GraphUpdated = true
		}
	}

	if idx, err := index.Load(req.BasePath); err != nil {
		c.logger.Warn("delete: index load failed", zap.String("id", req.ID), zap.Error(err))
	} else if idx.Remove(req.ID) {
		if err := index.Save(req.BasePath, idx); err != nil {
			c.logger.Warn("delete: index save failed", zap.String("id", req.ID), zap.Error(err))
		} else {
			res.Changes.IndexUpdated = true
		}
	}

	if cache, exists := embedding.Load(req.BasePath); exists && cache.Remove(req.ID) {
		if err := embedding.Save(req.BasePath, cache); err != nil {
			c.logger.Warn("delete: embedding save failed", zap.String("id", req.ID), zap.Error(err))
		} else {
			res.Changes.EmbeddingRemoved = true
		}
	}

	res.Changes.ThinkStateCleared = c.clearThinkStateIf(req.BasePath, req.ID)

	res.Status = StatusSuccess
	return res, nil
}
