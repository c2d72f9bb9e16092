package core_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/memvault/memvault-go/pkg/core"
	"github.com/memvault/memvault-go/pkg/graph"
	"github.com/memvault/memvault-go/pkg/index"
	"github.com/memvault/memvault-go/pkg/memory"
	"github.com/memvault/memvault-go/pkg/record"
)

// newTestClient builds a client with logging disabled and no embedder.
func newTestClient(t *testing.T) *core.Client {
	t.Helper()
	c, err := core.NewClientWithLogger(&core.Config{ProjectRoot: t.TempDir()}, zap.NewNop())
	require.NoError(t, err)
	return c
}

// writeMemoryFile writes a well-formed record under root/subdir/id.md and
// returns its path.
func writeMemoryFile(t *testing.T, root, subdir, id string, fm record.Frontmatter, body string) string {
	t.Helper()
	if fm.Created == "" {
		fm.Created = record.FormatTimestamp(time.Now())
	}
	if fm.Updated == "" {
		fm.Updated = fm.Created
	}
	if fm.Tags == nil {
		fm.Tags = []string{}
	}
	data, err := record.Serialize(&record.Record{Frontmatter: fm, Body: body})
	require.NoError(t, err)

	path := filepath.Join(root, subdir, id+".md")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// seedMemory writes a record file plus its graph node and index entry, the
// fully consistent state every operation starts from.
func seedMemory(t *testing.T, root, subdir, id string, typ memory.Type, title string) {
	t.Helper()
	writeMemoryFile(t, root, subdir, id, record.Frontmatter{
		Type: typ, Title: title, Scope: memory.ScopeProject,
	}, "Seeded body.\n")

	g, err := graph.Load(root)
	require.NoError(t, err)
	g.AddNode(graph.Node{ID: id, Type: string(typ), Title: title})
	require.NoError(t, graph.Save(root, g))

	idx, err := index.Load(root)
	require.NoError(t, err)
	idx.Add(index.Entry{
		ID: id, Type: string(typ), Title: title, Tags: []string{},
		Created: record.FormatTimestamp(time.Now()), Updated: record.FormatTimestamp(time.Now()),
		Scope: string(memory.ScopeProject), RelativePath: subdir + "/" + id + ".md",
	})
	require.NoError(t, index.Save(root, idx))
}

// fileExists reports whether root/subdir/id.md exists.
func fileExists(root, subdir, id string) bool {
	_, err := os.Stat(filepath.Join(root, subdir, id+".md"))
	return err == nil
}
