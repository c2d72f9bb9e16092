package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/memvault/memvault-go/pkg/memory"
	"github.com/memvault/memvault-go/pkg/record"
)

// Status reports the overall outcome of an operation.
type Status string

const (
	// StatusSuccess means the primary mutation succeeded. Secondary-store
	// failures do not downgrade it; they show up in Changes.
	StatusSuccess Status = "success"

	// StatusError means the operation did not complete (not-found, conflict,
	// or, for batch operations, at least one per-item error).
	StatusError Status = "error"
)

// memoryFileName is the record file name for an id.
func memoryFileName(id string) string {
	return id + ".md"
}

// locateMemoryFile finds the record file for an id inside a scope root,
// checking permanent/ then temporary/. Permanent wins ties.
//
// Returns the absolute path, the subdirectory it was found in, and whether it
// was found at all.
func locateMemoryFile(basePath, id string) (path string, subdir string, found bool) {
	for _, dir := range []string{memory.PermanentDir, memory.TemporaryDir} {
		p := filepath.Join(basePath, dir, memoryFileName(id))
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, dir, true
		}
	}
	return "", "", false
}

// relativeRecordPath is the store-facing path of a record within its root.
// Stored with forward slashes regardless of platform.
func relativeRecordPath(subdir, id string) string {
	return subdir + "/" + memoryFileName(id)
}

// readRecord reads and parses a record file.
func readRecord(path string, mode record.Mode) (*record.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return record.Parse(data, mode)
}

// writeRecord serialises and writes a record file, creating the directory.
func writeRecord(path string, rec *record.Record) error {
	data, err := record.Serialize(rec)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// notFoundError formats the terminal not-found message for an id.
func notFoundError(id string) string {
	return fmt.Sprintf("memory not found: %s", id)
}

// conflictError formats the terminal conflict message for an id or path.
func conflictError(what string) string {
	return fmt.Sprintf("target already exists: %s", what)
}
