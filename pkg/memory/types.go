// Package memory defines the shared domain types for memvault: memory
// type and scope enumerations used by every store and operation.
package memory

// Type classifies a memory record.
//
// Permanent types (decision, learning, gotcha, artifact, breadcrumb, hub)
// live under permanent/; thought documents live under temporary/ until
// promoted or pruned.
type Type string

const (
	// TypeDecision records a choice that was made and why.
	TypeDecision Type = "decision"

	// TypeLearning records something that was figured out.
	TypeLearning Type = "learning"

	// TypeGotcha records a trap or surprising behavior.
	TypeGotcha Type = "gotcha"

	// TypeArtifact records a produced document or deliverable.
	TypeArtifact Type = "artifact"

	// TypeBreadcrumb records a pointer back into code or docs.
	TypeBreadcrumb Type = "breadcrumb"

	// TypeHub is an aggregation node linking related memories.
	TypeHub Type = "hub"

	// TypeThought is an ephemeral thinking document.
	TypeThought Type = "thought"
)

// PermanentTypes lists every type that belongs under permanent/.
var PermanentTypes = []Type{
	TypeDecision,
	TypeLearning,
	TypeGotcha,
	TypeArtifact,
	TypeBreadcrumb,
	TypeHub,
}

// IsPermanent reports whether t is a permanent memory type.
func (t Type) IsPermanent() bool {
	for _, p := range PermanentTypes {
		if t == p {
			return true
		}
	}
	return false
}

// Valid reports whether t is a known memory type.
func (t Type) Valid() bool {
	return t == TypeThought || t.IsPermanent()
}

// Scope identifies which scope root a memory belongs to.
type Scope string

const (
	// ScopeProject scopes a memory to the current project.
	ScopeProject Scope = "project"

	// ScopeLocal scopes a memory to the local machine.
	ScopeLocal Scope = "local"

	// ScopeGlobal scopes a memory to the user across machines.
	ScopeGlobal Scope = "global"

	// ScopeEnterprise scopes a memory to the whole organization.
	ScopeEnterprise Scope = "enterprise"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	switch s {
	case ScopeProject, ScopeLocal, ScopeGlobal, ScopeEnterprise:
		return true
	}
	return false
}

// Subdirectory names inside a scope root.
const (
	// PermanentDir holds permanent memory records.
	PermanentDir = "permanent"

	// TemporaryDir holds ephemeral thinking documents.
	TemporaryDir = "temporary"

	// ArchiveDir holds archived records removed from the active stores.
	ArchiveDir = "archive"
)
