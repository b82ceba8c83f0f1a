package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// sectionSeparator joins normalized sections. ASCII record separator, chosen so
// section content containing ':' or newlines cannot collide across boundaries.
const sectionSeparator = "\x1e"

// Section is the minimal view of an ingredient section that participates in
// the fingerprint. Order is positional: callers pass sections in stored order.
type Section struct {
	Type    string
	Content string
}

// Normalize renders sections into the canonical hashing form:
// "{type}:{content}" per section, in the given order, joined by the record
// separator.
func Normalize(sections []Section) string {
	parts := make([]string, len(sections))
	for i, s := range sections {
		parts[i] = s.Type + ":" + s.Content
	}
	return strings.Join(parts, sectionSeparator)
}

// Sum returns the hex-encoded SHA-256 digest of the normalized section list.
func Sum(sections []Section) string {
	h := sha256.Sum256([]byte(Normalize(sections)))
	return hex.EncodeToString(h[:])
}
