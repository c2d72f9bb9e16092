package ident_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/memvault/memvault-go/pkg/ident"
	"github.com/memvault/memvault-go/pkg/memory"
)

func TestNewThinkingID(t *testing.T) {
	now := time.Date(2026, 8, 23, 14, 23, 5, 17*1e6, time.Local)
	id := ident.NewThinkingID(now)

	assert.Equal(t, "thought-20260823-142305017", id)
	assert.True(t, ident.IsThinkingID(id))
}

func TestIsThinkingID(t *testing.T) {
	assert.True(t, ident.IsThinkingID("thought-20260823-142305017"))
	assert.True(t, ident.IsThinkingID("thought-20260823-142305"))
	assert.True(t, ident.IsThinkingID("think-20250101-090000"))

	assert.False(t, ident.IsThinkingID("thought-2026-142305"))
	assert.False(t, ident.IsThinkingID("decision-use-sqlite"))
	assert.False(t, ident.IsThinkingID("thought-20260823-1423050170"))
	assert.False(t, ident.IsThinkingID(""))
}

func TestParseThinkingTimestamp(t *testing.T) {
	ts, ok := ident.ParseThinkingTimestamp("thought-20260823-142305017")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 23, 14, 23, 5, 17*1e6, time.Local), ts)

	// No millisecond component
	ts, ok = ident.ParseThinkingTimestamp("thought-20260823-142305")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 23, 14, 23, 5, 0, time.Local), ts)

	// Short millisecond run is right-padded
	ts, ok = ident.ParseThinkingTimestamp("think-20260823-1423055")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2026, 8, 23, 14, 23, 5, 500*1e6, time.Local), ts)

	_, ok = ident.ParseThinkingTimestamp("learning-not-a-thought")
	assert.False(t, ok)
}

func TestThinkingIDRoundTrip(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 678*1e6, time.Local)
	ts, ok := ident.ParseThinkingTimestamp(ident.NewThinkingID(now))
	assert.True(t, ok)
	assert.True(t, now.Equal(ts))
}

func TestMigrateLegacyID(t *testing.T) {
	assert.Equal(t, "thought-20250101-090000", ident.MigrateLegacyID("think-20250101-090000"))

	// Idempotent on canonical IDs
	assert.Equal(t, "thought-20250101-090000", ident.MigrateLegacyID("thought-20250101-090000"))

	// Other families pass through
	assert.Equal(t, "decision-use-sqlite", ident.MigrateLegacyID("decision-use-sqlite"))

	// "think-" prefix without the grammar is not a thinking ID
	assert.Equal(t, "think-about-it", ident.MigrateLegacyID("think-about-it"))
}

func TestIsLegacyThinkingID(t *testing.T) {
	assert.True(t, ident.IsLegacyThinkingID("think-20250101-090000"))
	assert.False(t, ident.IsLegacyThinkingID("thought-20250101-090000"))
	assert.False(t, ident.IsLegacyThinkingID("think-about-it"))
}

func TestNewMemoryID(t *testing.T) {
	assert.Equal(t, "decision-use-json-stores",
		ident.NewMemoryID(memory.TypeDecision, "Use JSON stores"))
	assert.Equal(t, "gotcha-tls-1-3-handshake",
		ident.NewMemoryID(memory.TypeGotcha, "TLS 1.3 handshake!"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "hello-world", ident.Slugify("Hello, World!"))
	assert.Equal(t, "a-b-c", ident.Slugify("  a__b--c  "))
	assert.Equal(t, "", ident.Slugify("!!!"))
}

func TestTypeFromID(t *testing.T) {
	typ, ok := ident.TypeFromID("decision-use-json-stores")
	assert.True(t, ok)
	assert.Equal(t, memory.TypeDecision, typ)

	_, ok = ident.TypeFromID("thought-20260823-142305")
	assert.False(t, ok)

	_, ok = ident.TypeFromID("widget-unknown-prefix")
	assert.False(t, ok)

	_, ok = ident.TypeFromID("noprefix")
	assert.False(t, ok)
}

func TestReplaceTypePrefix(t *testing.T) {
	assert.Equal(t, "artifact-use-json-stores",
		ident.ReplaceTypePrefix("decision-use-json-stores", memory.TypeArtifact))

	// Thinking IDs and unknown prefixes are untouched
	assert.Equal(t, "thought-20260823-142305",
		ident.ReplaceTypePrefix("thought-20260823-142305", memory.TypeArtifact))
	assert.Equal(t, "widget-thing",
		ident.ReplaceTypePrefix("widget-thing", memory.TypeArtifact))
}
