package core

import (
	"context"

	"go.uber.org/zap"

	"github.com/memvault/memvault-go/pkg/graph"
	"github.com/memvault/memvault-go/pkg/index"
	"github.com/memvault/memvault-go/pkg/record"
)

// ReindexRequest asks for one memory's derived entries to be backfilled.
type ReindexRequest struct {
	// BasePath is the scope root.
	BasePath string

	// ID is the memory to reindex.
	ID string
}

// ReindexChanges reports which of the two stores actually changed.
// Both backfills are idempotent: an already-present entry is a no-op.
type ReindexChanges struct {
	// IndexAdded is true when a missing index entry was created.
	IndexAdded bool `json:"indexAdded"`

	// GraphAdded is true when a missing graph node was created.
	GraphAdded bool `json:"graphAdded"`
}

// ReindexResult is the reindex response.
type ReindexResult struct {
	Status  Status         `json:"status"`
	Error   string         `json:"error,omitempty"`
	Changes ReindexChanges `json:"changes"`
}

// ReindexMemory backfills the index entry and graph node for a single
// record, deriving the relative path from whichever subdirectory the file is
// found in. Unparsable records propagate as errors.
func (c *Client) ReindexMemory(ctx context.Context, req *ReindexRequest) (*ReindexResult, error) {
	res := &ReindexResult{Status: StatusError}

	if err := ctx.Err(); err != nil {
		return nil, NewMemoryError("ReindexMemory", err)
	}
	if req.ID == "" {
		res.Error = "an id is required"
		return res, nil
	}

	path, subdir, found := locateMemoryFile(req.BasePath, req.ID)
	if !found {
		res.Error = notFoundError(req.ID)
		return res, nil
	}

	rec, err := readRecord(path, record.Strict)
	if err != nil {
		return nil, NewMemoryError("ReindexMemory", err)
	}

	if idx, err := index.Load(req.BasePath); err != nil {
		c.logger.Warn("reindex: index load failed", zap.String("id", req.ID), zap.Error(err))
	} else if idx.Find(req.ID) == nil {
		idx.Add(indexEntryFor(req.ID, subdir, rec))
		if err := index.Save(req.BasePath, idx); err != nil {
			c.logger.Warn("reindex: index save failed", zap.String("id", req.ID), zap.Error(err))
		} else {
			res.Changes.IndexAdded = true
		}
	}

	if g, err := graph.Load(req.BasePath); err != nil {
		c.logger.Warn("reindex: graph load failed", zap.String("id", req.ID), zap.Error(err))
	} else if !g.HasNode(req.ID) {
		g.AddNode(graph.Node{
			ID:    req.ID,
			Type:  string(rec.Frontmatter.Type),
			Title: rec.Frontmatter.Title,
		})
		if err := graph.Save(req.BasePath, g); err != nil {
			c.logger.Warn("reindex: graph save failed", zap.String("id", req.ID), zap.Error(err))
		} else {
			res.Changes.GraphAdded = true
		}
	}

	res.Status = StatusSuccess
	return res, nil
}
