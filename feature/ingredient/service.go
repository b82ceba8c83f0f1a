package ingredient

import (
	"context"
	"fmt"

	"formulary-manager/core/apperr"
	"formulary-manager/core/similarity"
	"formulary-manager/feature/ingredient/models"

	"go.uber.org/zap"
)

// DefaultVariationThreshold is the minimum score used by variation lookups
// when the caller does not supply one.
const DefaultVariationThreshold = 70

// Service handles ingredient operations.
type Service struct {
	store  *ReconcileStore
	logger *zap.Logger
}

// NewService creates a new ingredient service.
func NewService(store *ReconcileStore, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// ListIngredients returns every canonical record.
func (s *Service) ListIngredients(ctx context.Context) ([]*models.CanonicalRecord, error) {
	return s.store.ListAll(ctx)
}

// GetIngredient returns one canonical record by id.
func (s *Service) GetIngredient(ctx context.Context, id string) (*models.CanonicalRecord, error) {
	return s.store.Get(ctx, id)
}

// Compare classifies the working copy against the baseline snapshot for id.
func (s *Service) Compare(ctx context.Context, id string) (*models.CompareResult, error) {
	return s.store.Compare(ctx, id)
}

// Revert restores baseline content into the working copy for id.
func (s *Service) Revert(ctx context.Context, id string) (*models.WorkingCopy, error) {
	return s.store.Revert(ctx, id)
}

// DeleteIngredient removes the record, baseline, and working copy for id.
func (s *Service) DeleteIngredient(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// FindVariations returns the population records scoring within
// [threshold, 99] against the target, best first.
func (s *Service) FindVariations(ctx context.Context, id string, threshold int) ([]similarity.Variation, error) {
	if threshold <= 0 {
		threshold = DefaultVariationThreshold
	}

	population, err := s.similarityPopulation(ctx)
	if err != nil {
		return nil, err
	}

	var target *similarity.Record
	for i := range population {
		if population[i].ID == id {
			target = &population[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: ingredient %s", apperr.ErrNotFound, id)
	}

	return similarity.FindVariations(*target, population, threshold), nil
}

// ClusterVariations groups the whole population into variation clusters.
// threshold <= 0 selects the default.
func (s *Service) ClusterVariations(ctx context.Context, threshold int) ([]similarity.Cluster, error) {
	if threshold <= 0 {
		threshold = DefaultVariationThreshold
	}

	population, err := s.similarityPopulation(ctx)
	if err != nil {
		return nil, err
	}
	return similarity.ClusterVariations(population, threshold), nil
}

// SuggestMerges clusters the whole population and returns the clusters tight
// enough to be merge candidates. threshold <= 0 selects the default.
func (s *Service) SuggestMerges(ctx context.Context, threshold int) ([]similarity.MergeSuggestion, error) {
	population, err := s.similarityPopulation(ctx)
	if err != nil {
		return nil, err
	}
	return similarity.SuggestMerges(population, threshold), nil
}

func (s *Service) similarityPopulation(ctx context.Context) ([]similarity.Record, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	population := make([]similarity.Record, len(records))
	for i, rec := range records {
		population[i] = similarity.Record{ID: rec.ID, Profile: rec.Profile()}
	}
	return population, nil
}
