package similarity

import "math"

// Fixed component weights for RecordSimilarity. They intentionally sum to 1
// and are never normalized per record.
const (
	contentWeight   = 0.6
	nameWeight      = 0.2
	structureWeight = 0.2
)

// Profile is the flattened, comparison-ready view of a record.
type Profile struct {
	// Content is the record's sections rendered as "{type}:{content}" joined
	// in stored order.
	Content string

	// DisplayName is the human-readable record name.
	DisplayName string

	// Structure concatenates the structural properties (category + keyname).
	Structure string
}

// Record pairs a stable id with its comparison profile.
type Record struct {
	ID      string
	Profile Profile
}

// EditDistance computes the Levenshtein distance between a and b using the
// classic dynamic program with two rolling rows, O(|a|*|b|) time and
// O(min(|a|,|b|)) space.
func EditDistance(a, b string) int {
	if a == b {
		return 0
	}

	ra := []rune(a)
	rb := []rune(b)

	// Keep the shorter string as the row to minimize memory.
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// TextSimilarity maps edit distance onto a 0-100 score. Equal strings score
// 100; if exactly one side is empty the score is 0.
func TextSimilarity(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	maxLen := len([]rune(a))
	if l := len([]rune(b)); l > maxLen {
		maxLen = l
	}

	dist := EditDistance(a, b)
	return int(math.Round((1 - float64(dist)/float64(maxLen)) * 100))
}

// RecordSimilarity returns the weighted 0-100 similarity between two record
// profiles. The result is 100 only when all three components are identical;
// otherwise the weighted sum is clamped to at most 99 so rounding cannot
// produce a false exact match.
func RecordSimilarity(a, b Profile) int {
	content := TextSimilarity(a.Content, b.Content)
	name := TextSimilarity(a.DisplayName, b.DisplayName)
	structure := TextSimilarity(a.Structure, b.Structure)

	if content == 100 && name == 100 && structure == 100 {
		return 100
	}

	score := int(math.Round(
		contentWeight*float64(content) +
			nameWeight*float64(name) +
			structureWeight*float64(structure),
	))
	if score > 99 {
		score = 99
	}
	return score
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
