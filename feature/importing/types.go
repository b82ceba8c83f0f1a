package importing

import "formulary-manager/feature/ingredient/models"

// Classification thresholds. A score of 100 (identity, see the similarity
// package) is exact; [NearMatchThreshold, 99] is near; below is unique.
const NearMatchThreshold = 70

// Decision values for a classified record.
const (
	DecisionUseExisting = "use-existing"
	DecisionCreateNew   = "create-new"
	DecisionMerge       = "merge"
)

// MergeDecision is the caller-supplied resolution for one classified record.
type MergeDecision struct {
	// Action is one of the Decision constants. Unknown or missing actions
	// default to create-new.
	Action string `json:"action"`

	// TargetID names the canonical record a merge folds into. Required for
	// merge, ignored otherwise.
	TargetID string `json:"target_id,omitempty"`
}

// FieldDiff describes one field-level difference between an incoming record
// and its best canonical match.
type FieldDiff struct {
	// Field is the logical field name (display_name, category, ...).
	Field string `json:"field"`

	// Incoming is the incoming record's value, rendered as a string.
	Incoming string `json:"incoming"`

	// Existing is the canonical record's value, rendered as a string.
	Existing string `json:"existing"`
}

// ImportMatch pairs an incoming record with its best canonical match.
type ImportMatch struct {
	// Incoming is the adapted incoming record.
	Incoming models.IncomingRecord `json:"incoming"`

	// MatchedRecordID is the id of the best canonical match, empty for
	// unique records.
	MatchedRecordID string `json:"matched_record_id,omitempty"`

	// SimilarityScore is the 0-100 score against the matched record. Forced
	// to 0 for unique records.
	SimilarityScore int `json:"similarity_score"`

	// Differences lists field-level diffs. Populated for near matches only.
	Differences []FieldDiff `json:"differences,omitempty"`
}

// ImportSummary aggregates an analysis run.
type ImportSummary struct {
	// TotalChecked counts every batch entry, including skipped ones.
	TotalChecked int `json:"total_checked"`

	// ExactMatches counts entries scoring 100 against the population.
	ExactMatches int `json:"exact_matches"`

	// NearMatches counts entries scoring within the near window.
	NearMatches int `json:"near_matches"`

	// Unique counts entries with no acceptable match.
	Unique int `json:"unique"`

	// Skipped counts entries with no resolvable name.
	Skipped int `json:"skipped"`

	// EstimatedSizeReduction is the percentage of batch bytes an import
	// would save, from the fixed per-record heuristic (exact 100%, near
	// 75%, unique 0%).
	EstimatedSizeReduction float64 `json:"estimated_size_reduction"`
}

// ImportAnalysisResult is the classified view of a batch.
type ImportAnalysisResult struct {
	ExactMatches      []ImportMatch `json:"exact_matches"`
	NearMatches       []ImportMatch `json:"near_matches"`
	UniqueIngredients []ImportMatch `json:"unique_ingredients"`
	Summary           ImportSummary `json:"summary"`
}

// Progress reports executor state after each record.
type Progress struct {
	Current     int     `json:"current"`
	Total       int     `json:"total"`
	CurrentItem string  `json:"current_item"`
	Percentage  float64 `json:"percentage"`
}

// ProgressFunc receives a Progress after every processed record. May be nil.
type ProgressFunc func(Progress)

// ImportResult aggregates an executed batch. Success is false whenever any
// record failed; partial progress is preserved either way.
type ImportResult struct {
	Success bool     `json:"success"`
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Merged  int      `json:"merged"`
	Errors  []string `json:"errors"`
}
