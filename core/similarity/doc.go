// Package similarity scores how alike two ingredient records are.
//
// The engine works on Profile values, a flattened view of a record that the
// owning feature derives (content text, display name, structural properties).
// Keeping the engine free of model types lets imports, HTTP handlers, and CLI
// commands reuse it without dragging in persistence concerns.
//
// # Scoring
//
// TextSimilarity converts a Levenshtein edit distance into a 0-100 score.
// RecordSimilarity combines three text scores with fixed weights:
//
//   - content (sections rendered "{type}:{content}" in order): 60%
//   - display name: 20%
//   - structural properties (category + keyname): 20%
//
// A score of 100 is reserved for full identity: if any component scores below
// 100 the weighted result is clamped to 99, so rounding can never promote a
// near match into the exact bucket.
//
// # Grouping
//
// FindVariations ranks records scoring within [threshold, 99] against a
// target. ClusterVariations performs a single-pass greedy grouping; it is
// deliberately not transitively closed, matching the behavior downstream
// tooling depends on. SuggestMerges reuses the clustering at a stricter
// threshold and annotates each cluster with a reason.
package similarity
