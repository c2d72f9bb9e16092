package memory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/memvault/memvault-go/pkg/memory"
)

func TestTypeIsPermanent(t *testing.T) {
	for _, typ := range memory.PermanentTypes {
		assert.True(t, typ.IsPermanent(), string(typ))
	}
	assert.False(t, memory.TypeThought.IsPermanent())
	assert.False(t, memory.Type("widget").IsPermanent())
}

func TestTypeValid(t *testing.T) {
	assert.True(t, memory.TypeThought.Valid())
	assert.True(t, memory.TypeDecision.Valid())
	assert.False(t, memory.Type("").Valid())
	assert.False(t, memory.Type("widget").Valid())
}

func TestScopeValid(t *testing.T) {
	assert.True(t, memory.ScopeProject.Valid())
	assert.True(t, memory.ScopeLocal.Valid())
	assert.True(t, memory.ScopeGlobal.Valid())
	assert.True(t, memory.ScopeEnterprise.Valid())
	assert.False(t, memory.Scope("galactic").Valid())
}
