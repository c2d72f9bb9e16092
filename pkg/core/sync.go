package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/memvault/memvault-go/pkg/embedding"
	"github.com/memvault/memvault-go/pkg/graph"
	"github.com/memvault/memvault-go/pkg/index"
	"github.com/memvault/memvault-go/pkg/memory"
	"github.com/memvault/memvault-go/pkg/record"
)

// SyncRequest asks for a full reconciliation pass over one scope root.
type SyncRequest struct {
	// BasePath is the scope root.
	BasePath string

	// DryRun reports what would change without persisting anything.
	DryRun bool
}

// SyncChanges is the per-category change report of a reconciliation pass.
type SyncChanges struct {
	// NodesAdded lists file ids that gained a graph node.
	NodesAdded []string `json:"nodesAdded,omitempty"`

	// NodesHealed lists existing nodes whose missing title was re-derived.
	NodesHealed []string `json:"nodesHealed,omitempty"`

	// IndexAdded lists file ids that gained an index entry.
	IndexAdded []string `json:"indexAdded,omitempty"`

	// GhostNodesRemoved lists nodes that had no backing file.
	GhostNodesRemoved []string `json:"ghostNodesRemoved,omitempty"`

	// OrphanEdgesRemoved counts edges referencing a non-live id.
	OrphanEdgesRemoved int `json:"orphanEdgesRemoved"`

	// IndexRemoved lists index entries that had no backing file.
	IndexRemoved []string `json:"indexRemoved,omitempty"`

	// EmbeddingsRemoved lists cache entries that had no backing file.
	EmbeddingsRemoved []string `json:"embeddingsRemoved,omitempty"`
}

// SyncSummary carries store sizes for observability and tests.
type SyncSummary struct {
	Files            int `json:"files"`
	Nodes            int `json:"nodes"`
	IndexEntries     int `json:"indexEntries"`
	EmbeddingEntries int `json:"embeddingEntries"`
}

// SyncResult is the sync response.
type SyncResult struct {
	Status  Status      `json:"status"`
	DryRun  bool        `json:"dryRun"`
	Changes SyncChanges `json:"changes"`
	Summary SyncSummary `json:"summary"`

	// Errors accumulates per-file parse failures and store-write failures.
	// Status is error iff non-empty.
	Errors []string `json:"errors,omitempty"`
}

// Sync reconciles the graph, index, and embedding cache against the record
// files on disk, which are ground truth. It runs one strictly ordered pass:
//
//  1. enumerate files under permanent/ and temporary/
//  2. add graph nodes for unrepresented files (healing empty titles)
//  3. add index entries for unindexed files
//  4. remove ghost nodes (no backing file; edges cascade)
//  5. remove orphan edges (an endpoint is not a live, representable file id)
//  6. remove index entries with no backing file
//  7. drop orphan embedding-cache entries (skip silently if no cache file)
//  8. persist whatever changed (unless DryRun)
//
// Edge validity in step 5 is checked against the on-disk file-id set, not
// the graph's node list alone: in a dry run the graph was never mutated, so
// using its node list would undercount edges that step 4 would have removed.
// A live file whose frontmatter failed to parse gets no node in step 2, so
// its edges are orphans too; a valid endpoint must also have (or be about to
// get) a node.
//
// Per-file parse failures are recorded and skipped; a store that fails to
// persist in step 8 is recorded the same way. Earlier in-memory changes are
// never reverted.
func (c *Client) Sync(ctx context.Context, req *SyncRequest) (*SyncResult, error) {
	res := &SyncResult{Status: StatusSuccess, DryRun: req.DryRun}

	if err := ctx.Err(); err != nil {
		return nil, NewMemoryError("Sync", err)
	}

	// Step 1: enumerate record files. Permanent wins id ties.
	fileIDs := map[string]string{} // id -> subdirectory
	for _, subdir := range []string{memory.PermanentDir, memory.TemporaryDir} {
		entries, err := os.ReadDir(filepath.Join(req.BasePath, subdir))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, NewMemoryError("Sync", err)
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !strings.HasSuffix(name, ".md") {
				continue
			}
			id := strings.TrimSuffix(name, ".md")
			if _, seen := fileIDs[id]; !seen {
				fileIDs[id] = subdir
			}
		}
	}

	g, err := graph.Load(req.BasePath)
	if err != nil {
		// A corrupt graph is itself drift: rebuild it from disk.
		res.Errors = append(res.Errors, err.Error())
		g = graph.New()
	}
	idx, err := index.Load(req.BasePath)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		idx = index.New()
	}

	graphChanged := false
	indexChanged := false

	// Records are parsed at most once per file, in lenient mode: backfill
	// derives what it can from partially written files.
	records := map[string]*record.Record{}
	parseFailed := map[string]bool{}
	loadRecord := func(id string) *record.Record {
		if rec, ok := records[id]; ok {
			return rec
		}
		if parseFailed[id] {
			return nil
		}
		path := filepath.Join(req.BasePath, fileIDs[id], memoryFileName(id))
		rec, err := readRecord(path, record.Lenient)
		if err != nil {
			parseFailed[id] = true
			res.Errors = append(res.Errors, fmt.Sprintf("%s: %v", id, err))
			return nil
		}
		records[id] = rec
		return rec
	}

	// Steps 2 + self-heal: every file id gets a node; nodes that lost their
	// title get it re-derived.
	for id := range fileIDs {
		node, exists := g.Node(id)
		if exists && node.Title != "" {
			continue
		}
		rec := loadRecord(id)
		if rec == nil {
			continue
		}
		fresh := graph.Node{ID: id, Type: string(rec.Frontmatter.Type), Title: rec.Frontmatter.Title}
		if !exists {
			res.Changes.NodesAdded = append(res.Changes.NodesAdded, id)
		} else {
			if rec.Frontmatter.Title == "" {
				continue
			}
			res.Changes.NodesHealed = append(res.Changes.NodesHealed, id)
		}
		if !req.DryRun {
			g.AddNode(fresh)
			graphChanged = true
		}
	}

	// Step 3: every file id gets an index entry.
	for id, subdir := range fileIDs {
		if idx.Find(id) != nil {
			continue
		}
		rec := loadRecord(id)
		if rec == nil {
			continue
		}
		res.Changes.IndexAdded = append(res.Changes.IndexAdded, id)
		if !req.DryRun {
			idx.Add(indexEntryFor(id, subdir, rec))
			indexChanged = true
		}
	}

	// Step 4: ghost nodes. RemoveNode cascades the node's edges.
	for _, node := range append([]graph.Node(nil), g.Nodes...) {
		if _, live := fileIDs[node.ID]; live {
			continue
		}
		res.Changes.GhostNodesRemoved = append(res.Changes.GhostNodesRemoved, node.ID)
		if !req.DryRun {
			g.RemoveNode(node.ID)
			graphChanged = true
		}
	}

	// Step 5: orphan edges, validated against the file-id set (see above).
	// A pre-existing node or a record parsed this pass proves the endpoint is
	// representable; a parse-failed file is live but has neither.
	endpointValid := func(id string) bool {
		if _, live := fileIDs[id]; !live {
			return false
		}
		if _, hasNode := g.Node(id); hasNode {
			return true
		}
		return records[id] != nil
	}
	for _, edge := range append([]graph.Edge(nil), g.Edges...) {
		if endpointValid(edge.Source) && endpointValid(edge.Target) {
			continue
		}
		res.Changes.OrphanEdgesRemoved++
		if !req.DryRun {
			g.RemoveEdge(edge.Source, edge.Target)
			graphChanged = true
		}
	}

	// Step 6: orphan index entries.
	for _, entry := range append([]index.Entry(nil), idx.Memories...) {
		if _, live := fileIDs[entry.ID]; live {
			continue
		}
		res.Changes.IndexRemoved = append(res.Changes.IndexRemoved, entry.ID)
		if !req.DryRun {
			idx.Remove(entry.ID)
			indexChanged = true
		}
	}

	// Step 7: orphan embedding entries. No cache file means nothing to do.
	cache, cacheExists := embedding.Load(req.BasePath)
	cacheChanged := false
	if cacheExists {
		for id := range cache.Memories {
			if _, live := fileIDs[id]; live {
				continue
			}
			res.Changes.EmbeddingsRemoved = append(res.Changes.EmbeddingsRemoved, id)
			if !req.DryRun {
				cache.Remove(id)
				cacheChanged = true
			}
		}
	}

	// Step 8: persist. Failures are recorded, not rolled back.
	if !req.DryRun {
		if graphChanged {
			if err := graph.Save(req.BasePath, g); err != nil {
				res.Errors = append(res.Errors, err.Error())
			}
		}
		if indexChanged {
			if err := index.Save(req.BasePath, idx); err != nil {
				res.Errors = append(res.Errors, err.Error())
			}
		}
		if cacheChanged {
			if err := embedding.Save(req.BasePath, cache); err != nil {
				res.Errors = append(res.Errors, err.Error())
			}
		}
	}

	res.Summary = SyncSummary{
		Files:            len(fileIDs),
		Nodes:            len(g.Nodes),
		IndexEntries:     len(idx.Memories),
		EmbeddingEntries: len(cache.Memories),
	}

	if len(res.Errors) > 0 {
		res.Status = StatusError
	}
	return res, nil
}
