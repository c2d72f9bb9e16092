// Package graph implements the graph.json store: one node per live memory
// record plus directed, labeled edges between them.
//
// The store is a whole-file JSON document; every save rewrites the file.
// There is no incremental patching, which keeps crash recovery simple: a
// stale graph is repaired by the sync operation rather than replayed.
package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileName is the graph store file inside a scope root.
const FileName = "graph.json"

// CurrentVersion is the on-disk format version written by Save.
const CurrentVersion = 1

// Node is a graph node mirroring one memory record.
type Node struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
}

// Edge is a directed, labeled edge between two nodes.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
}

// edgeWire tolerates both "label" and the older "type" key on load.
type edgeWire struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label"`
	Type   string `json:"type"`
}

// UnmarshalJSON decodes an edge, accepting "type" as an alias for "label".
func (e *Edge) UnmarshalJSON(data []byte) error {
	var w edgeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	e.Source = w.Source
	e.Target = w.Target
	e.Label = w.Label
	if e.Label == "" {
		e.Label = w.Type
	}
	return nil
}

// Graph is the full dependency graph for one scope root.
type Graph struct {
	Version int    `json:"version"`
	Nodes   []Node `json:"nodes"`
	Edges   []Edge `json:"edges"`
}

// New returns an empty graph at the current format version.
func New() *Graph {
	return &Graph{Version: CurrentVersion, Nodes: []Node{}, Edges: []Edge{}}
}

// Load reads the graph store under root.
//
// A missing file yields an empty graph; malformed JSON is an error, since a
// corrupt graph should surface rather than be silently replaced.
func Load(root string) (*Graph, error) {
	data, err := os.ReadFile(filepath.Join(root, FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}
		return nil, fmt.Errorf("graph: load: %w", err)
	}

	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("graph: load: %w", err)
	}
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Edges == nil {
		g.Edges = []Edge{}
	}
	return &g, nil
}

// Save rewrites the whole graph store under root.
func Save(root string, g *Graph) error {
	g.Version = CurrentVersion
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("graph: save: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, FileName), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("graph: save: %w", err)
	}
	return nil
}

// AddNode upserts a node by ID. An existing node's attributes are replaced,
// which is how node title/type refreshes are implemented.
func (g *Graph) AddNode(n Node) {
	for i := range g.Nodes {
		if g.Nodes[i].ID == n.ID {
			g.Nodes[i] = n
			return
		}
	}
	g.Nodes = append(g.Nodes, n)
}

// Node returns the node with the given ID, if present.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.Node(id)
	return ok
}

// RemoveNode removes the node and every edge touching it in one call.
// Callers must not separately clean up edges for a node they just removed.
//
// Returns whether the node existed and how many edges were removed.
func (g *Graph) RemoveNode(id string) (removed bool, edgesRemoved int) {
	kept := g.Nodes[:0]
	for _, n := range g.Nodes {
		if n.ID == id {
			removed = true
			continue
		}
		kept = append(kept, n)
	}
	g.Nodes = kept

	keptEdges := g.Edges[:0]
	for _, e := range g.Edges {
		if e.Source == id || e.Target == id {
			edgesRemoved++
			continue
		}
		keptEdges = append(keptEdges, e)
	}
	g.Edges = keptEdges
	return removed, edgesRemoved
}

// AddEdge appends a directed edge. Duplicate (source, target, label) triples
// are collapsed to one.
func (g *Graph) AddEdge(e Edge) {
	for _, existing := range g.Edges {
		if existing == e {
			return
		}
	}
	g.Edges = append(g.Edges, e)
}

// RemoveEdge removes a single directed edge regardless of label.
// Returns whether an edge was removed.
func (g *Graph) RemoveEdge(source, target string) bool {
	removed := false
	kept := g.Edges[:0]
	for _, e := range g.Edges {
		if e.Source == source && e.Target == target {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	g.Edges = kept
	return removed
}

// OutboundEdges returns every edge whose source is the given ID.
func (g *Graph) OutboundEdges(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.Source == id {
			out = append(out, e)
		}
	}
	return out
}

// RenameNode rewrites a node's ID and every edge referencing it as source or
// target. Returns the number of edge endpoints rewritten.
func (g *Graph) RenameNode(oldID, newID string) int {
	for i := range g.Nodes {
		if g.Nodes[i].ID == oldID {
			g.Nodes[i].ID = newID
		}
	}
	count := 0
	for i := range g.Edges {
		if g.Edges[i].Source == oldID {
			g.Edges[i].Source = newID
			count++
		}
		if g.Edges[i].Target == oldID {
			g.Edges[i].Target = newID
			count++
		}
	}
	return count
}
