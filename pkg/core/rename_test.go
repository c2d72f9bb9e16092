package core_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memvault/memvault-go/pkg/core"
	"github.com/memvault/memvault-go/pkg/graph"
	"github.com/memvault/memvault-go/pkg/index"
	"github.com/memvault/memvault-go/pkg/memory"
	"github.com/memvault/memvault-go/pkg/record"
)

func TestRenameMemory(t *testing.T) {
	c := newTestClient(t)
	root := t.TempDir()
	ctx := context.Background()

	writeMemoryFile(t, root, memory.PermanentDir, "decision-old-name", record.Frontmatter{
		Type: memory.TypeDecision, Title: "Old name", ID: "decision-old-name",
		Meta: map[string]interface{}{"id": "decision-old-name"},
	}, "body\n")

	g := graph.New()
	g.AddNode(graph.Node{ID: "decision-old-name", Type: "decision", Title: "Old name"})
	g.AddNode(graph.Node{ID: "learning-other", Type: "learning"})
	g.AddEdge(graph.Edge{Source: "decision-old-name", Target: "learning-other", Label: "references"})
	g.AddEdge(graph.Edge{Source: "learning-other", Target: "decision-old-name", Label: "supersedes"})
	require.NoError(t, graph.Save(root, g))

	idx := index.New()
	idx.Add(index.Entry{ID: "decision-old-name", Type: "decision", Title: "Old name",
		Tags: []string{}, RelativePath: "permanent/decision-old-name.md"})
	require.NoError(t, index.Save(root, idx))

	res, err := c.RenameMemory(ctx, &core.RenameRequest{
		BasePath: root, OldID: "decision-old-name", NewID: "decision-new-name",
	})
	require.NoError(t, err)
	require.Equal(t, core.StatusSuccess, res.Status)

	assert.True(t, res.Changes.FileRenamed)
	assert.True(t, res.Changes.FrontmatterUpdated)
	assert.True(t, res.Changes.GraphUpdated)
	assert.Equal(t, 2, res.Changes.EdgesUpdated)
	assert.True(t, res.Changes.IndexUpdated)

	assert.False(t, fileExists(root, memory.PermanentDir, "decision-old-name"))
	assert.True(t, fileExists(root, memory.PermanentDir, "decision-new-name"))

	// Embedded ids were rewritten
	data, err := os.ReadFile(filepath.Join(root, memory.PermanentDir, "decision-new-name.md"))
	require.NoError(t, err)
	rec, err := record.Parse(data, record.Strict)
	require.NoError(t, err)
	assert.Equal(t, "decision-new-name", rec.Frontmatter.ID)
	assert.Equal(t, "decision-new-name", rec.Frontmatter.Meta["id"])

	// Graph node and both edge endpoints were re-keyed
	g, err = graph.Load(root)
	require.NoError(t, err)
	assert.True(t, g.HasNode("decision-new-name"))
	assert.False(t, g.HasNode("decision-old-name"))
	for _, e := range g.Edges {
		assert.NotEqual(t, "decision-old-name", e.Source)
		assert.NotEqual(t, "decision-old-name", e.Target)
	}

	// Index entry re-keyed, path included
	idx, err = index.Load(root)
	require.NoError(t, err)
	entry := idx.Find("decision-new-name")
	require.NotNil(t, entry)
	assert.Equal(t, "permanent/decision-new-name.md", entry.RelativePath)
	assert.Nil(t, idx.Find("decision-old-name"))
}

func TestRenameMemoryNotFound(t *testing.T) {
	c := newTestClient(t)
	root := t.TempDir()

	res, err := c.RenameMemory(context.Background(), &core.RenameRequest{
		BasePath: root, OldID: "decision-missing", NewID: "decision-whatever",
	})
	require.NoError(t, err)
	assert.Equal(t, core.StatusError, res.Status)
	assert.Contains(t, res.Error, "not found")
	assert.False(t, res.Changes.FileRenamed)
}

func TestRenameMemoryConflict(t *testing.T) {
	c := newTestClient(t)
	root := t.TempDir()

	seedMemory(t, root, memory.PermanentDir, "decision-a", memory.TypeDecision, "A")
	seedMemory(t, root, memory.PermanentDir, "decision-b", memory.TypeDecision, "B")

	res, err := c.RenameMemory(context.Background(), &core.RenameRequest{
		BasePath: root, OldID: "decision-a", NewID: "decision-b",
	})
	require.NoError(t, err)
	assert.Equal(t, core.StatusError, res.Status)
	assert.Contains(t, res.Error, "already exists")

	// No side effects
	assert.True(t, fileExists(root, memory.PermanentDir, "decision-a"))
	assert.True(t, fileExists(root, memory.PermanentDir, "decision-b"))
}

func TestRenameMemorySameID(t *testing.T) {
	c := newTestClient(t)

	res, err := c.RenameMemory(context.Background(), &core.RenameRequest{
		BasePath: t.TempDir(), OldID: "decision-a", NewID: "decision-a",
	})
	require.NoError(t, err)
	assert.Equal(t, core.StatusError, res.Status)
}

func TestRenameMemoryCorruptRecord(t *testing.T) {
	c := newTestClient(t)
	root := t.TempDir()

	path := filepath.Join(root, memory.PermanentDir, "decision-broken.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("no frontmatter here\n"), 0644))

	res, err := c.RenameMemory(context.Background(), &core.RenameRequest{
		BasePath: root, OldID: "decision-broken", NewID: "decision-fixed",
	})
	require.Error(t, err)
	assert.Nil(t, res)

	var perr *record.ParseError
	assert.ErrorAs(t, err, &perr)
}
