package models

import (
	"strings"
	"time"

	"formulary-manager/core/fingerprint"
	"formulary-manager/core/similarity"
)

// Section types recognized by the calculation engine downstream.
const (
	SectionStaticText           = "static text"
	SectionExecutableExpression = "executable expression"
)

// ValidationStatus tracks how far a working copy's tests have been exercised.
type ValidationStatus string

const (
	ValidationUntested ValidationStatus = "untested"
	ValidationPassed   ValidationStatus = "passed"
	ValidationFailed   ValidationStatus = "failed"
	ValidationPartial  ValidationStatus = "partial"
)

// CompareStatus classifies a working copy against its baseline snapshot.
type CompareStatus string

const (
	// CompareNew means no baseline exists for the id yet.
	CompareNew CompareStatus = "NEW"
	// CompareDeleted means a baseline exists but the working copy is gone.
	CompareDeleted CompareStatus = "DELETED"
	// CompareClean means the working sections equal the baseline sections.
	CompareClean CompareStatus = "CLEAN"
	// CompareModified means the working sections diverged from the baseline.
	CompareModified CompareStatus = "MODIFIED"
)

// Section is one ordered content block of an ingredient. Order is part of the
// record's identity: reordering sections changes the content hash.
type Section struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Order   int    `json:"order"`
}

// TestCase is one ordered test attached to an ingredient.
type TestCase struct {
	Name     string `json:"name"`
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Order    int    `json:"order"`
}

// CanonicalRecord is the single accepted representation of an ingredient,
// keyed by a stable slug id. It is owned by the reconcile store and mutated
// only through versioned writes.
type CanonicalRecord struct {
	ID          string     `json:"id"`
	Keyname     string     `json:"keyname"`
	DisplayName string     `json:"display_name"`
	Category    string     `json:"category"`
	Sections    []Section  `json:"sections"`
	Tests       []TestCase `json:"tests"`
	Version     int        `json:"version"`
	ContentHash string     `json:"content_hash"`
}

// BaselineSnapshot is the immutable original import data for a canonical id,
// captured from the first import that establishes the id. Never overwritten.
type BaselineSnapshot struct {
	ID         string     `json:"id"`
	Sections   []Section  `json:"sections"`
	Tests      []TestCase `json:"tests"`
	ImportedAt time.Time  `json:"imported_at"`
}

// WorkingCopy is the mutable current state of a canonical record's content.
// It is independent of the baseline after creation and carries its own
// version for optimistic writes.
type WorkingCopy struct {
	ID               string           `json:"id"`
	Sections         []Section        `json:"sections"`
	Tests            []TestCase       `json:"tests"`
	Version          int              `json:"version"`
	ValidationStatus ValidationStatus `json:"validation_status"`
	RevertedAt       *time.Time       `json:"reverted_at,omitempty"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// IncomingRecord is an external record after the import adapter has resolved
// the legacy field aliases into the canonical shape.
type IncomingRecord struct {
	Keyname     string     `json:"keyname"`
	DisplayName string     `json:"display_name"`
	Category    string     `json:"category"`
	Sections    []Section  `json:"sections"`
	Tests       []TestCase `json:"tests"`
}

// CompareResult reports a working copy's relationship to its baseline.
type CompareResult struct {
	Status      CompareStatus `json:"status"`
	Differences []string      `json:"differences,omitempty"`
}

// Slug derives the stable canonical id from a name: lowercased, with runs of
// non-alphanumeric characters collapsed into single hyphens.
func Slug(name string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// FingerprintSections converts sections into the hasher's minimal view,
// preserving stored order.
func FingerprintSections(sections []Section) []fingerprint.Section {
	out := make([]fingerprint.Section, len(sections))
	for i, s := range sections {
		out[i] = fingerprint.Section{Type: s.Type, Content: s.Content}
	}
	return out
}

// ComputeContentHash returns the stable fingerprint of the record's ordered
// sections.
func (r *CanonicalRecord) ComputeContentHash() string {
	return fingerprint.Sum(FingerprintSections(r.Sections))
}

// Profile flattens the record into the similarity engine's comparison view.
func (r *CanonicalRecord) Profile() similarity.Profile {
	return Profile(r.DisplayName, r.Category, r.Keyname, r.Sections)
}

// Profile flattens the incoming record into the comparison view.
func (in *IncomingRecord) Profile() similarity.Profile {
	return Profile(in.DisplayName, in.Category, in.Keyname, in.Sections)
}

// Profile builds the similarity view shared by canonical and incoming
// records: content in stored order, display name, and the structural
// concatenation of category and keyname.
func Profile(displayName, category, keyname string, sections []Section) similarity.Profile {
	return similarity.Profile{
		Content:     fingerprint.Normalize(FingerprintSections(sections)),
		DisplayName: displayName,
		Structure:   category + "|" + keyname,
	}
}

// SectionsEqual performs the structural equality check used by compare:
// same length, and same (type, content, order) at every position.
func SectionsEqual(a, b []Section) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CloneSections returns an independent copy so baseline data cannot be
// mutated through a shared slice.
func CloneSections(sections []Section) []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

// CloneTests returns an independent copy of a test list.
func CloneTests(tests []TestCase) []TestCase {
	out := make([]TestCase, len(tests))
	copy(out, tests)
	return out
}
