// Package ident implements the memvault identifier scheme.
//
// Two ID families exist:
//   - Permanent-memory IDs: "{type}-{slug}", e.g. "decision-use-sqlite".
//   - Thinking-document IDs: "thought-" + 8-digit date + 9-digit time with
//     milliseconds, e.g. "thought-20260823-142305017". The millisecond
//     component prevents same-second collisions. A legacy "think-" prefix is
//     accepted everywhere and migrated to "thought-" by MigrateLegacyID.
package ident

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/memvault/memvault-go/pkg/memory"
)

const (
	// ThinkingPrefix is the canonical prefix for thinking-document IDs.
	ThinkingPrefix = "thought-"

	// LegacyThinkingPrefix is the retired prefix still accepted on input.
	LegacyThinkingPrefix = "think-"
)

// thinkingIDPattern is the grammar for thinking-document IDs. The time part
// is 6 digits (HHMMSS) optionally followed by up to 3 millisecond digits.
var thinkingIDPattern = regexp.MustCompile(`^(thought|think)-\d{8}-\d{6,9}$`)

// slugPattern strips everything that is not a lowercase word character.
var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// NewThinkingID generates a thinking-document ID for the given time.
//
// The format is thought-YYYYMMDD-HHMMSSmmm, where mmm is milliseconds.
func NewThinkingID(now time.Time) string {
	return fmt.Sprintf("%s%s-%s%03d",
		ThinkingPrefix,
		now.Format("20060102"),
		now.Format("150405"),
		now.Nanosecond()/1e6,
	)
}

// IsThinkingID reports whether id matches the thinking-document grammar,
// accepting both the canonical and the legacy prefix.
func IsThinkingID(id string) bool {
	return thinkingIDPattern.MatchString(id)
}

// ParseThinkingTimestamp recovers the timestamp encoded in a thinking ID.
//
// Invalid IDs parse to a zero time and false rather than an error. IDs with a
// 6-digit time part (no milliseconds) are accepted; shorter-than-3 millisecond
// runs are right-padded with zeros.
func ParseThinkingTimestamp(id string) (time.Time, bool) {
	if !IsThinkingID(id) {
		return time.Time{}, false
	}
	parts := strings.SplitN(id, "-", 3)
	datePart, timePart := parts[1], parts[2]

	millis := "000"
	if len(timePart) > 6 {
		millis = timePart[6:]
		for len(millis) < 3 {
			millis += "0"
		}
		timePart = timePart[:6]
	}

	ts, err := time.ParseInLocation("20060102150405.000", datePart+timePart+"."+millis, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// MigrateLegacyID rewrites a legacy "think-" ID to the canonical "thought-"
// prefix. The rewrite is one-way and idempotent: canonical IDs and IDs from
// other families pass through unchanged.
func MigrateLegacyID(id string) string {
	if strings.HasPrefix(id, LegacyThinkingPrefix) && IsThinkingID(id) {
		return ThinkingPrefix + strings.TrimPrefix(id, LegacyThinkingPrefix)
	}
	return id
}

// IsLegacyThinkingID reports whether id uses the retired "think-" prefix.
func IsLegacyThinkingID(id string) bool {
	return strings.HasPrefix(id, LegacyThinkingPrefix) && IsThinkingID(id)
}

// NewMemoryID builds a permanent-memory ID from a type and a title.
//
// The title is slugified: lowercased, non-alphanumeric runs collapsed to a
// single hyphen, leading/trailing hyphens trimmed.
func NewMemoryID(t memory.Type, title string) string {
	return string(t) + "-" + Slugify(title)
}

// Slugify converts free text into an ID-safe slug.
func Slugify(s string) string {
	slug := slugInvalid.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}

// TypeFromID extracts the type prefix of a permanent-memory ID.
//
// Returns false for thinking IDs and for prefixes that are not a known
// permanent type.
func TypeFromID(id string) (memory.Type, bool) {
	if IsThinkingID(id) {
		return memory.TypeThought, false
	}
	prefix, _, found := strings.Cut(id, "-")
	if !found {
		return "", false
	}
	t := memory.Type(prefix)
	if !t.IsPermanent() {
		return "", false
	}
	return t, true
}

// ReplaceTypePrefix swaps the type prefix of a permanent-memory ID, keeping
// the slug. Used when a promotion changes a record's type.
//
// IDs without a recognized type prefix (including thinking IDs) are returned
// unchanged.
func ReplaceTypePrefix(id string, t memory.Type) string {
	old, ok := TypeFromID(id)
	if !ok {
		return id
	}
	return string(t) + strings.TrimPrefix(id, string(old))
}
