package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/memvault/memvault-go/pkg/embedding"
	"github.com/memvault/memvault-go/pkg/graph"
	"github.com/memvault/memvault-go/pkg/ident"
	"github.com/memvault/memvault-go/pkg/index"
	"github.com/memvault/memvault-go/pkg/memory"
	"github.com/memvault/memvault-go/pkg/record"
)

// MigrateRequest asks for legacy thinking ids to be rewritten in place.
type MigrateRequest struct {
	// BasePath is the scope root.
	BasePath string

	// DryRun reports what would be migrated without touching anything.
	DryRun bool
}

// MigrateError records a per-file failure; the scan continues past it.
type MigrateError struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// MigrateResult is the migration response.
type MigrateResult struct {
	Status Status `json:"status"`
	DryRun bool   `json:"dryRun"`

	// Migrated lists old ids that were (or would be) rewritten.
	Migrated []string `json:"migrated,omitempty"`

	// Errors lists per-file failures. Status is error iff non-empty.
	Errors []MigrateError `json:"errors,omitempty"`
}

// MigrateLegacyThinkIDs renames thinking documents still carrying the old
// "think-" prefix to the current "thought-" prefix and re-keys every store
// that references them: the record frontmatter, the graph node and its edge
// endpoints, the index entry and its relative path, the embedding-cache key,
// and the active think state.
//
// The operation is idempotent: a root with no legacy ids is a no-op success.
// Each file migrates independently, so a failure on one id never blocks the
// rest.
func (c *Client) MigrateLegacyThinkIDs(ctx context.Context, req *MigrateRequest) (*MigrateResult, error) {
	res := &MigrateResult{Status: StatusSuccess, DryRun: req.DryRun}

	if err := ctx.Err(); err != nil {
		return nil, NewMemoryError("MigrateLegacyThinkIDs", err)
	}

	tempDir := filepath.Join(req.BasePath, memory.TemporaryDir)
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		if os.IsNotExist(err) {
			return res, nil
		}
		return nil, NewMemoryError("MigrateLegacyThinkIDs", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".md") {
			continue
		}
		oldID := strings.TrimSuffix(name, ".md")
		if !ident.IsLegacyThinkingID(oldID) {
			continue
		}
		newID := ident.MigrateLegacyID(oldID)

		if req.DryRun {
			res.Migrated = append(res.Migrated, oldID)
			continue
		}

		if err := c.migrateOne(req.BasePath, tempDir, oldID, newID); err != nil {
			res.Errors = append(res.Errors, MigrateError{ID: oldID, Message: err.Error()})
			continue
		}
		res.Migrated = append(res.Migrated, oldID)
	}

	if len(res.Errors) > 0 {
		res.Status = StatusError
	}
	return res, nil
}

// migrateOne rewrites one legacy document and re-keys the stores. The file
// move is the commit point; store re-keys after it are best-effort since a
// later sync reconciles them anyway.
func (c *Client) migrateOne(basePath, tempDir, oldID, newID string) error {
	oldPath := filepath.Join(tempDir, memoryFileName(oldID))
	newPath := filepath.Join(tempDir, memoryFileName(newID))

	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("target %s already exists", newID)
	}

	rec, err := readRecord(oldPath, record.Lenient)
	if err != nil {
		return err
	}
	if rec.Frontmatter.ID == oldID {
		rec.Frontmatter.ID = newID
	}
	if v, ok := rec.Frontmatter.Meta["id"]; ok {
		if s, ok := v.(string); ok && s == oldID {
			rec.Frontmatter.Meta["id"] = newID
		}
	}

	if err := writeRecord(newPath, rec); err != nil {
		return err
	}
	if err := os.Remove(oldPath); err != nil {
		return err
	}

	if g, gErr := graph.Load(basePath); gErr != nil {
		c.logger.Warn("migrate: graph load failed", zap.String("id", oldID), zap.Error(gErr))
	} else if g.RenameNode(oldID, newID) > 0 || g.HasNode(newID) {
		if sErr := graph.Save(basePath, g); sErr != nil {
			c.logger.Warn("migrate: graph save failed", zap.String("id", oldID), zap.Error(sErr))
		}
	}

	if idx, iErr := index.Load(basePath); iErr != nil {
		c.logger.Warn("migrate: index load failed", zap.String("id", oldID), zap.Error(iErr))
	} else if e := idx.Find(oldID); e != nil {
		e.ID = newID
		e.RelativePath = strings.ReplaceAll(e.RelativePath, oldID, newID)
		if sErr := index.Save(basePath, idx); sErr != nil {
			c.logger.Warn("migrate: index save failed", zap.String("id", oldID), zap.Error(sErr))
		}
	}

	if cache, exists := embedding.Load(basePath); exists {
		if e, ok := cache.Get(oldID); ok {
			cache.Remove(oldID)
			cache.Set(newID, e)
			if sErr := embedding.Save(basePath, cache); sErr != nil {
				c.logger.Warn("migrate: embedding save failed", zap.String("id", oldID), zap.Error(sErr))
			}
		}
	}

	if st, tErr := LoadThinkState(basePath); tErr == nil && st != nil && st.CurrentDocumentID == oldID {
		st.CurrentDocumentID = newID
		if sErr := SaveThinkState(basePath, st); sErr != nil {
			c.logger.Warn("migrate: think state save failed", zap.String("id", oldID), zap.Error(sErr))
		}
	}

	return nil
}
