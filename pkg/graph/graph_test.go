package graph_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memvault/memvault-go/pkg/graph"
)

func TestLoadMissingFile(t *testing.T) {
	g, err := graph.Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
	assert.Equal(t, graph.CurrentVersion, g.Version)
}

func TestLoadMalformed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, graph.FileName), []byte("{not json"), 0644))

	_, err := graph.Load(root)
	require.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()

	g := graph.New()
	g.AddNode(graph.Node{ID: "decision-a", Type: "decision", Title: "A"})
	g.AddNode(graph.Node{ID: "learning-b", Type: "learning", Title: "B"})
	g.AddEdge(graph.Edge{Source: "decision-a", Target: "learning-b", Label: "references"})
	require.NoError(t, graph.Save(root, g))

	loaded, err := graph.Load(root)
	require.NoError(t, err)
	assert.Equal(t, g.Nodes, loaded.Nodes)
	assert.Equal(t, g.Edges, loaded.Edges)
}

func TestLoadEdgeTypeAlias(t *testing.T) {
	root := t.TempDir()
	data := `{"version":1,"nodes":[],"edges":[{"source":"a","target":"b","type":"references"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(root, graph.FileName), []byte(data), 0644))

	g, err := graph.Load(root)
	require.NoError(t, err)
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "references", g.Edges[0].Label)
}

func TestAddNodeUpserts(t *testing.T) {
	g := graph.New()
	g.AddNode(graph.Node{ID: "decision-a", Type: "decision", Title: "old"})
	g.AddNode(graph.Node{ID: "decision-a", Type: "decision", Title: "new"})

	require.Len(t, g.Nodes, 1)
	n, ok := g.Node("decision-a")
	assert.True(t, ok)
	assert.Equal(t, "new", n.Title)
}

func TestRemoveNodeCascadesEdges(t *testing.T) {
	g := graph.New()
	g.AddNode(graph.Node{ID: "a", Type: "decision"})
	g.AddNode(graph.Node{ID: "b", Type: "learning"})
	g.AddEdge(graph.Edge{Source: "a", Target: "b", Label: "references"})
	g.AddEdge(graph.Edge{Source: "b", Target: "a", Label: "supersedes"})
	g.AddEdge(graph.Edge{Source: "b", Target: "c", Label: "references"})

	removed, edgesRemoved := g.RemoveNode("a")
	assert.True(t, removed)
	assert.Equal(t, 2, edgesRemoved)
	assert.Len(t, g.Edges, 1)
	assert.False(t, g.HasNode("a"))

	removed, edgesRemoved = g.RemoveNode("a")
	assert.False(t, removed)
	assert.Zero(t, edgesRemoved)
}

func TestAddEdgeDedupes(t *testing.T) {
	g := graph.New()
	e := graph.Edge{Source: "a", Target: "b", Label: "references"}
	g.AddEdge(e)
	g.AddEdge(e)
	assert.Len(t, g.Edges, 1)

	// Different label is a different edge
	g.AddEdge(graph.Edge{Source: "a", Target: "b", Label: "supersedes"})
	assert.Len(t, g.Edges, 2)
}

func TestRemoveEdge(t *testing.T) {
	g := graph.New()
	g.AddEdge(graph.Edge{Source: "a", Target: "b", Label: "references"})
	g.AddEdge(graph.Edge{Source: "a", Target: "b", Label: "supersedes"})

	// Removes every edge between the pair, regardless of label
	assert.True(t, g.RemoveEdge("a", "b"))
	assert.Empty(t, g.Edges)
	assert.False(t, g.RemoveEdge("a", "b"))
}

func TestOutboundEdges(t *testing.T) {
	g := graph.New()
	g.AddEdge(graph.Edge{Source: "a", Target: "b", Label: "references"})
	g.AddEdge(graph.Edge{Source: "a", Target: "c", Label: "references"})
	g.AddEdge(graph.Edge{Source: "b", Target: "a", Label: "references"})

	assert.Len(t, g.OutboundEdges("a"), 2)
	assert.Len(t, g.OutboundEdges("c"), 0)
}

func TestRenameNode(t *testing.T) {
	g := graph.New()
	g.AddNode(graph.Node{ID: "decision-old", Type: "decision"})
	g.AddEdge(graph.Edge{Source: "decision-old", Target: "b", Label: "references"})
	g.AddEdge(graph.Edge{Source: "c", Target: "decision-old", Label: "references"})

	count := g.RenameNode("decision-old", "decision-new")
	assert.Equal(t, 2, count)
	assert.True(t, g.HasNode("decision-new"))
	assert.False(t, g.HasNode("decision-old"))
	assert.Equal(t, "decision-new", g.Edges[0].Source)
	assert.Equal(t, "decision-new", g.Edges[1].Target)
}
