package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memvault/memvault-go/pkg/core"
)

func TestRefreshEmbeddingsRequiresProvider(t *testing.T) {
	c := newTestClient(t)

	res, err := c.RefreshEmbeddings(context.Background(), &core.RefreshRequest{BasePath: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, core.StatusError, res.Status)
	assert.Contains(t, res.Error, "no embedding provider")
}
