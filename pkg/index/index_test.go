package index_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memvault/memvault-go/pkg/index"
)

func entry(id string) index.Entry {
	return index.Entry{
		ID:           id,
		Type:         "learning",
		Title:        "Title for " + id,
		Tags:         []string{"t"},
		Created:      "2026-08-23T00:00:00Z",
		Updated:      "2026-08-23T00:00:00Z",
		Scope:        "project",
		RelativePath: "permanent/" + id + ".md",
	}
}

func TestLoadMissingFile(t *testing.T) {
	idx, err := index.Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, idx.Memories)
}

func TestLoadMalformed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, index.FileName), []byte("[]"), 0644))

	_, err := index.Load(root)
	require.Error(t, err)
}

func TestSaveStampsLastUpdated(t *testing.T) {
	root := t.TempDir()
	idx := index.New()
	idx.Add(entry("learning-a"))
	require.NoError(t, index.Save(root, idx))
	assert.NotEmpty(t, idx.LastUpdated)

	loaded, err := index.Load(root)
	require.NoError(t, err)
	assert.Equal(t, idx.LastUpdated, loaded.LastUpdated)
	assert.Equal(t, idx.Memories, loaded.Memories)
}

func TestAddUpserts(t *testing.T) {
	idx := index.New()
	idx.Add(entry("learning-a"))

	updated := entry("learning-a")
	updated.Title = "Changed"
	idx.Add(updated)

	require.Len(t, idx.Memories, 1)
	assert.Equal(t, "Changed", idx.Memories[0].Title)
}

func TestRemove(t *testing.T) {
	idx := index.New()
	idx.Add(entry("learning-a"))
	idx.Add(entry("learning-b"))

	assert.True(t, idx.Remove("learning-a"))
	assert.Len(t, idx.Memories, 1)
	assert.False(t, idx.Remove("learning-a"))
}

func TestFindReturnsMutablePointer(t *testing.T) {
	idx := index.New()
	idx.Add(entry("learning-a"))

	e := idx.Find("learning-a")
	require.NotNil(t, e)
	e.Title = "Edited in place"
	assert.Equal(t, "Edited in place", idx.Memories[0].Title)

	assert.Nil(t, idx.Find("learning-missing"))
}
