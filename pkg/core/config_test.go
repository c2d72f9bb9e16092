package core_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memvault/memvault-go/pkg/core"
	"github.com/memvault/memvault-go/pkg/memory"
)

func TestConfigValidate(t *testing.T) {
	// At least one scope root is required
	err := (&core.Config{}).Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	// Any single root suffices
	assert.NoError(t, (&core.Config{GlobalRoot: "/tmp/g"}).Validate())

	// Unknown embedder providers are rejected
	err = (&core.Config{
		ProjectRoot: "/tmp/p",
		Embedder:    core.EmbedderConfig{Provider: "quantum"},
	}).Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	// "none" and "openai" are accepted
	assert.NoError(t, (&core.Config{
		ProjectRoot: "/tmp/p",
		Embedder:    core.EmbedderConfig{Provider: "none"},
	}).Validate())
}

func TestConfigRootFor(t *testing.T) {
	cfg := &core.Config{
		ProjectRoot: "/p",
		LocalRoot:   "/l",
		GlobalRoot:  "/g",
	}

	root, err := cfg.RootFor(memory.ScopeProject)
	require.NoError(t, err)
	assert.Equal(t, "/p", root)

	root, err = cfg.RootFor(memory.ScopeLocal)
	require.NoError(t, err)
	assert.Equal(t, "/l", root)

	// Unconfigured scope
	_, err = cfg.RootFor(memory.ScopeEnterprise)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	// Unknown scope
	_, err = cfg.RootFor(memory.Scope("galactic"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestLoadConfigFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
  "project_root": "/srv/vault/project",
  "log_level": "warn",
  "embedder": {"provider": "openai", "api_key": "sk-test", "dimensions": 256}
}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := core.LoadConfigFromJSON(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/vault/project", cfg.ProjectRoot)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "openai", cfg.Embedder.Provider)
	assert.Equal(t, 256, cfg.Embedder.Dimensions)

	_, err = core.LoadConfigFromJSON(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestNewClientRejectsInvalidConfig(t *testing.T) {
	_, err := core.NewClient(&core.Config{})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestMemoryError(t *testing.T) {
	err := core.NewMemoryError("RenameMemory", core.ErrNotFound)
	assert.Equal(t, "memvault: RenameMemory: memory not found", err.Error())
	assert.ErrorIs(t, err, core.ErrNotFound)

	var merr *core.MemoryError
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, "RenameMemory", merr.Op)

	// Nil passes through so return sites can wrap unconditionally
	assert.Nil(t, core.NewMemoryError("Op", nil))
}
