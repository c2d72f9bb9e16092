package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// ThinkStateFileName is the per-root active-thinking-document state file.
const ThinkStateFileName = "think-state.json"

// ThinkState tracks which temporary thinking document is active in a scope
// root. It is loaded and saved on demand, never held as a process-wide
// singleton, so multiple scope roots can be operated on in one process
// without cross-talk.
type ThinkState struct {
	// CurrentDocumentID is the active thinking document's id (empty if none).
	CurrentDocumentID string `json:"currentDocumentId"`

	// CurrentScope is the scope the active document belongs to.
	CurrentScope string `json:"currentScope"`

	// LastUpdated records when the state last changed (RFC 3339).
	LastUpdated string `json:"lastUpdated"`
}

// LoadThinkState reads the think state for a scope root.
// A missing file yields nil with no error.
func LoadThinkState(root string) (*ThinkState, error) {
	data, err := os.ReadFile(filepath.Join(root, ThinkStateFileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("think state: load: %w", err)
	}

	var st ThinkState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("think state: load: %w", err)
	}
	return &st, nil
}

// SaveThinkState rewrites the think state for a scope root.
func SaveThinkState(root string, st *ThinkState) error {
	st.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("think state: save: %w", err)
	}
	if err := os.WriteFile(filepath.Join(root, ThinkStateFileName), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("think state: save: %w", err)
	}
	return nil
}

// clearThinkStateIf clears the active document when it matches id.
// Best-effort: failures are logged, never escalated. Returns whether the
// state was cleared.
func (c *Client) clearThinkStateIf(root, id string) bool {
	st, err := LoadThinkState(root)
	if err != nil {
		c.logger.Warn("think state load failed", zap.String("root", root), zap.Error(err))
		return false
	}
	if st == nil || st.CurrentDocumentID != id {
		return false
	}
	st.CurrentDocumentID = ""
	if err := SaveThinkState(root, st); err != nil {
		c.logger.Warn("think state save failed", zap.String("root", root), zap.Error(err))
		return false
	}
	return true
}
