// Package record implements the on-disk memory record codec.
//
// A record file is YAML frontmatter between "---" delimiters followed by a
// Markdown body:
//
//	---
//	type: learning
//	title: How the index is rebuilt
//	created: 2026-08-23T14:23:05Z
//	updated: 2026-08-23T14:23:05Z
//	tags: [index, sync]
//	---
//	Body text...
//
// Parsing is strict by default: a missing delimiter pair or a non-mapping
// YAML block is a *ParseError, never a nil record. Lenient mode relaxes only
// the required-field check and exists for backfill paths (sync) that must
// derive what they can from partially written files.
package record

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/memvault/memvault-go/pkg/memory"
)

// delimiter separates frontmatter from body.
const delimiter = "---"

// Mode selects how strictly frontmatter is validated.
type Mode int

const (
	// Strict requires the delimiter pair, a YAML mapping, and the required
	// fields (type, title, created, updated, tags).
	Strict Mode = iota

	// Lenient requires the delimiter pair and a YAML mapping but tolerates
	// missing required fields. Used during backfill.
	Lenient
)

// ParseError reports a structurally invalid record file.
//
// Callers must treat it as fatal for that file: it signals corruption, not a
// record that merely lacks frontmatter.
type ParseError struct {
	// Reason describes what was wrong with the file.
	Reason string
}

// Error returns the formatted parse failure.
func (e *ParseError) Error() string {
	return "record: " + e.Reason
}

// Frontmatter is the typed YAML header of a record file.
//
// Required keys: type, title, created, updated, tags. Unknown keys are
// preserved through Extra so a parse/serialise round-trip never drops data.
type Frontmatter struct {
	Type     memory.Type            `yaml:"type"`
	Title    string                 `yaml:"title"`
	Created  string                 `yaml:"created"`
	Updated  string                 `yaml:"updated"`
	Tags     []string               `yaml:"tags"`
	Scope    memory.Scope           `yaml:"scope,omitempty"`
	Severity string                 `yaml:"severity,omitempty"`
	Links    []string               `yaml:"links,omitempty"`
	ID       string                 `yaml:"id,omitempty"`
	Project  string                 `yaml:"project,omitempty"`
	Status   string                 `yaml:"status,omitempty"`
	Meta     map[string]interface{} `yaml:"meta,omitempty"`
	Extra    map[string]interface{} `yaml:",inline"`
}

// Record is a parsed memory file: frontmatter plus Markdown body.
type Record struct {
	Frontmatter Frontmatter
	Body        string
}

// Parse splits and decodes a record file.
//
// Returns *ParseError when the delimiter pair is absent, the YAML block is
// not a mapping, or (in Strict mode) a required field is missing.
func Parse(data []byte, mode Mode) (*Record, error) {
	content := string(data)
	if !strings.HasPrefix(content, delimiter+"\n") && content != delimiter {
		return nil, &ParseError{Reason: "missing frontmatter delimiter"}
	}

	rest := strings.TrimPrefix(content, delimiter+"\n")
	yamlBlock, body, found := strings.Cut(rest, "\n"+delimiter)
	if !found {
		// Degenerate case: frontmatter opens on the first line and closes
		// immediately ("---\n---\n...").
		if strings.HasPrefix(rest, delimiter) {
			yamlBlock, body = "", strings.TrimPrefix(rest, delimiter)
		} else {
			return nil, &ParseError{Reason: "missing closing frontmatter delimiter"}
		}
	}
	body = strings.TrimPrefix(body, "\n")

	// Reject non-mapping YAML (scalars, sequences) before decoding into the
	// struct, which would otherwise silently zero every field.
	var probe interface{}
	if err := yaml.Unmarshal([]byte(yamlBlock), &probe); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("invalid frontmatter YAML: %v", err)}
	}
	if _, ok := probe.(map[string]interface{}); !ok {
		return nil, &ParseError{Reason: "frontmatter is not a YAML mapping"}
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(yamlBlock), &fm); err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("invalid frontmatter YAML: %v", err)}
	}

	if mode == Strict {
		if err := validateRequired(&fm); err != nil {
			return nil, err
		}
	}

	return &Record{Frontmatter: fm, Body: body}, nil
}

// validateRequired checks the required frontmatter keys.
func validateRequired(fm *Frontmatter) error {
	var missing []string
	if fm.Type == "" {
		missing = append(missing, "type")
	}
	if fm.Title == "" {
		missing = append(missing, "title")
	}
	if fm.Created == "" {
		missing = append(missing, "created")
	}
	if fm.Updated == "" {
		missing = append(missing, "updated")
	}
	if fm.Tags == nil {
		missing = append(missing, "tags")
	}
	if len(missing) > 0 {
		return &ParseError{Reason: "missing required frontmatter fields: " + strings.Join(missing, ", ")}
	}
	return nil
}

// Serialize encodes a record back to its file form.
//
// Serialisation is stable: re-serialising a parsed record reproduces
// semantically equivalent YAML (key order may normalise to the struct order).
func Serialize(r *Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&r.Frontmatter); err != nil {
		return nil, fmt.Errorf("record: encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("record: encode frontmatter: %w", err)
	}

	buf.WriteString(delimiter + "\n")
	buf.WriteString(r.Body)
	if !strings.HasSuffix(r.Body, "\n") {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// Patch holds partial frontmatter updates. Nil pointer fields are left
// untouched; Meta entries are merged key-by-key into the existing map.
type Patch struct {
	Type     *memory.Type
	Title    *string
	Updated  *string
	Scope    *memory.Scope
	Severity *string
	Status   *string
	ID       *string
	Tags     []string
	Meta     map[string]interface{}
}

// UpdateFrontmatter merges a patch into a record, returning a new record.
// The input record is never mutated.
func UpdateFrontmatter(r *Record, patch Patch) *Record {
	out := *r
	out.Frontmatter.Tags = append([]string(nil), r.Frontmatter.Tags...)
	out.Frontmatter.Links = append([]string(nil), r.Frontmatter.Links...)
	out.Frontmatter.Meta = copyMap(r.Frontmatter.Meta)
	out.Frontmatter.Extra = copyMap(r.Frontmatter.Extra)

	fm := &out.Frontmatter
	if patch.Type != nil {
		fm.Type = *patch.Type
	}
	if patch.Title != nil {
		fm.Title = *patch.Title
	}
	if patch.Updated != nil {
		fm.Updated = *patch.Updated
	}
	if patch.Scope != nil {
		fm.Scope = *patch.Scope
	}
	if patch.Severity != nil {
		fm.Severity = *patch.Severity
	}
	if patch.Status != nil {
		fm.Status = *patch.Status
	}
	if patch.ID != nil {
		fm.ID = *patch.ID
	}
	if patch.Tags != nil {
		fm.Tags = append([]string(nil), patch.Tags...)
	}
	if len(patch.Meta) > 0 {
		if fm.Meta == nil {
			fm.Meta = make(map[string]interface{}, len(patch.Meta))
		}
		for k, v := range patch.Meta {
			fm.Meta[k] = v
		}
	}
	return &out
}

// copyMap shallow-copies a metadata map.
func copyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Timestamp formats for created/updated fields. RFC 3339 is canonical; a
// bare date is accepted from hand-edited files.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 created/updated value.
//
// Unparseable values yield a zero time and false rather than an error,
// matching the tolerance of the maintenance operations that consume them.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders a time in the canonical frontmatter format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ReferenceTime returns the record's updated timestamp, falling back to
// created. The second return is false when neither parses.
func (r *Record) ReferenceTime() (time.Time, bool) {
	if ts, ok := ParseTimestamp(r.Frontmatter.Updated); ok {
		return ts, true
	}
	return ParseTimestamp(r.Frontmatter.Created)
}
