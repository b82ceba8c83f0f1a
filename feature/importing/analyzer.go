package importing

import (
	"context"
	"fmt"

	"formulary-manager/core/similarity"
	"formulary-manager/feature/ingredient"
	"formulary-manager/feature/ingredient/models"

	"go.uber.org/zap"
)

// estimatedRecordBytes is the fixed per-record size heuristic used for the
// size-reduction estimate. Ingredient records average about 2 KiB of JSON.
const estimatedRecordBytes = 2048

// Analyzer classifies an incoming batch against the canonical population.
type Analyzer struct {
	population *populationLoader
	logger     *zap.Logger
}

// NewAnalyzer creates an analyzer over the given canonical store.
func NewAnalyzer(store ingredient.Store, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		population: newPopulationLoader(store),
		logger:     logger,
	}
}

// AnalyzeBatch classifies every entry of a raw batch as exact match, near
// match, or unique. The full population is fetched once per call; if the
// fetch fails the whole analysis fails, since a partial classification would
// be wrong, not just incomplete. Malformed entries are skipped and counted,
// never fatal.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, batch []map[string]any) (*ImportAnalysisResult, error) {
	population, err := a.population.load(ctx)
	if err != nil {
		return nil, err
	}

	result := &ImportAnalysisResult{
		ExactMatches:      make([]ImportMatch, 0),
		NearMatches:       make([]ImportMatch, 0),
		UniqueIngredients: make([]ImportMatch, 0),
	}
	result.Summary.TotalChecked = len(batch)

	for i, raw := range batch {
		incoming, err := ingredient.AdaptIncoming(raw)
		if err != nil {
			a.logger.Debug("Skipping batch entry with no resolvable name", zap.Int("index", i))
			result.Summary.Skipped++
			continue
		}

		bestID, bestScore := a.bestMatch(incoming, population)

		switch {
		case bestScore == 100:
			result.Summary.ExactMatches++
			result.ExactMatches = append(result.ExactMatches, ImportMatch{
				Incoming:        *incoming,
				MatchedRecordID: bestID,
				SimilarityScore: 100,
			})
		case bestScore >= NearMatchThreshold:
			result.Summary.NearMatches++
			result.NearMatches = append(result.NearMatches, ImportMatch{
				Incoming:        *incoming,
				MatchedRecordID: bestID,
				SimilarityScore: bestScore,
				Differences:     fieldDifferences(incoming, findRecord(population, bestID)),
			})
		default:
			// Below the threshold the best match is noise; drop it.
			result.Summary.Unique++
			result.UniqueIngredients = append(result.UniqueIngredients, ImportMatch{
				Incoming:        *incoming,
				SimilarityScore: 0,
			})
		}
	}

	result.Summary.EstimatedSizeReduction = estimateSizeReduction(result.Summary)

	a.logger.Info("Batch analysis complete",
		zap.Int("total", result.Summary.TotalChecked),
		zap.Int("exact", result.Summary.ExactMatches),
		zap.Int("near", result.Summary.NearMatches),
		zap.Int("unique", result.Summary.Unique),
		zap.Int("skipped", result.Summary.Skipped),
	)

	return result, nil
}

// bestMatch scans the population for the highest-scoring record,
// short-circuiting as soon as an identity match appears.
func (a *Analyzer) bestMatch(incoming *models.IncomingRecord, population []*models.CanonicalRecord) (string, int) {
	profile := incoming.Profile()

	bestID := ""
	bestScore := 0
	for _, candidate := range population {
		score := similarity.RecordSimilarity(profile, candidate.Profile())
		if score > bestScore {
			bestID = candidate.ID
			bestScore = score
			if score == 100 {
				break
			}
		}
	}

	return bestID, bestScore
}

// fieldDifferences computes the shallow per-field diff reported for near
// matches: display name, category, and section/test counts. Content-level
// diffing is the compare endpoint's job, not the analyzer's.
func fieldDifferences(incoming *models.IncomingRecord, existing *models.CanonicalRecord) []FieldDiff {
	if existing == nil {
		return nil
	}

	diffs := make([]FieldDiff, 0, 4)
	if incoming.DisplayName != existing.DisplayName {
		diffs = append(diffs, FieldDiff{Field: "display_name", Incoming: incoming.DisplayName, Existing: existing.DisplayName})
	}
	if incoming.Category != existing.Category {
		diffs = append(diffs, FieldDiff{Field: "category", Incoming: incoming.Category, Existing: existing.Category})
	}
	if len(incoming.Sections) != len(existing.Sections) {
		diffs = append(diffs, FieldDiff{
			Field:    "section_count",
			Incoming: fmt.Sprintf("%d", len(incoming.Sections)),
			Existing: fmt.Sprintf("%d", len(existing.Sections)),
		})
	}
	if len(incoming.Tests) != len(existing.Tests) {
		diffs = append(diffs, FieldDiff{
			Field:    "test_count",
			Incoming: fmt.Sprintf("%d", len(incoming.Tests)),
			Existing: fmt.Sprintf("%d", len(existing.Tests)),
		})
	}

	return diffs
}

func findRecord(population []*models.CanonicalRecord, id string) *models.CanonicalRecord {
	for _, rec := range population {
		if rec.ID == id {
			return rec
		}
	}
	return nil
}

// estimateSizeReduction applies the fixed byte heuristic: an exact match
// saves its full estimated size, a near match three quarters, a unique
// record nothing.
func estimateSizeReduction(summary ImportSummary) float64 {
	classified := summary.ExactMatches + summary.NearMatches + summary.Unique
	if classified == 0 {
		return 0
	}

	totalBytes := float64(classified * estimatedRecordBytes)
	savedBytes := float64(summary.ExactMatches)*estimatedRecordBytes +
		float64(summary.NearMatches)*estimatedRecordBytes*0.75

	return savedBytes / totalBytes * 100
}
