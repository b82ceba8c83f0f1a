package ingredient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"formulary-manager/core/apperr"
	"formulary-manager/feature/ingredient/models"

	"go.uber.org/zap"
)

// ReconcileStore holds, per canonical id, an immutable baseline snapshot and
// a mutable versioned working copy, and implements compare/revert semantics
// between them. It also satisfies the Store contract used by imports.
type ReconcileStore struct {
	repo    Repository
	archive Archive // optional; nil disables baseline archiving
	logger  *zap.Logger
}

// NewReconcileStore creates a reconcile store over the given repository.
// archive may be nil when object-storage archiving is disabled.
func NewReconcileStore(repo Repository, archive Archive, logger *zap.Logger) *ReconcileStore {
	return &ReconcileStore{
		repo:    repo,
		archive: archive,
		logger:  logger,
	}
}

// SaveRecord writes incoming data under the given id. The first call for an
// id creates the canonical record at version 1, seeds the immutable baseline
// snapshot, and creates the working copy. Subsequent calls update only the
// record and working copy with optimistic version checks; the baseline is
// never touched again.
func (s *ReconcileStore) SaveRecord(ctx context.Context, id string, data models.IncomingRecord) (*models.CanonicalRecord, error) {
	existing, err := s.repo.GetRecord(ctx, id)
	switch {
	case err == nil:
		return s.updateRecord(ctx, existing, data)
	case errors.Is(err, apperr.ErrNotFound):
		return s.createRecord(ctx, id, data)
	default:
		return nil, err
	}
}

func (s *ReconcileStore) createRecord(ctx context.Context, id string, data models.IncomingRecord) (*models.CanonicalRecord, error) {
	now := time.Now()

	rec := &models.CanonicalRecord{
		ID:          id,
		Keyname:     data.Keyname,
		DisplayName: data.DisplayName,
		Category:    data.Category,
		Sections:    models.CloneSections(data.Sections),
		Tests:       models.CloneTests(data.Tests),
		Version:     1,
	}
	rec.ContentHash = rec.ComputeContentHash()

	if err := s.repo.PutRecord(ctx, rec, 0); err != nil {
		return nil, err
	}

	// Seeding is idempotent: if a baseline already exists for this id (e.g.
	// the record was deleted and re-imported within a racing batch), the
	// existing snapshot wins.
	snap := &models.BaselineSnapshot{
		ID:         id,
		Sections:   models.CloneSections(data.Sections),
		Tests:      models.CloneTests(data.Tests),
		ImportedAt: now,
	}
	if err := s.repo.SeedBaseline(ctx, snap); err != nil {
		return nil, err
	}

	wc := &models.WorkingCopy{
		ID:               id,
		Sections:         models.CloneSections(data.Sections),
		Tests:            models.CloneTests(data.Tests),
		Version:          1,
		ValidationStatus: models.ValidationUntested,
		UpdatedAt:        now,
	}
	if err := s.repo.PutWorkingCopy(ctx, wc, 0); err != nil {
		return nil, err
	}

	s.archiveBaseline(ctx, snap)

	return rec, nil
}

func (s *ReconcileStore) updateRecord(ctx context.Context, existing *models.CanonicalRecord, data models.IncomingRecord) (*models.CanonicalRecord, error) {
	rec := &models.CanonicalRecord{
		ID:          existing.ID,
		Keyname:     data.Keyname,
		DisplayName: data.DisplayName,
		Category:    data.Category,
		Sections:    models.CloneSections(data.Sections),
		Tests:       models.CloneTests(data.Tests),
		Version:     existing.Version + 1,
	}
	rec.ContentHash = rec.ComputeContentHash()

	if err := s.repo.PutRecord(ctx, rec, existing.Version); err != nil {
		return nil, err
	}

	wc, err := s.repo.GetWorkingCopy(ctx, existing.ID)
	if errors.Is(err, apperr.ErrNotFound) {
		// Working copy was deleted out-of-band; recreate it.
		wc = &models.WorkingCopy{
			ID:               existing.ID,
			Version:          0,
			ValidationStatus: models.ValidationUntested,
		}
	} else if err != nil {
		return nil, err
	}

	expected := wc.Version
	wc.Sections = models.CloneSections(data.Sections)
	wc.Tests = models.CloneTests(data.Tests)
	wc.Version = expected + 1
	wc.ValidationStatus = models.ValidationUntested
	wc.UpdatedAt = time.Now()

	if err := s.repo.PutWorkingCopy(ctx, wc, expected); err != nil {
		return nil, err
	}

	return rec, nil
}

// Compare classifies the working copy against the baseline snapshot. The
// comparison is a structural equality check over the sections array only.
func (s *ReconcileStore) Compare(ctx context.Context, id string) (*models.CompareResult, error) {
	baseline, err := s.repo.GetBaseline(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return &models.CompareResult{Status: models.CompareNew}, nil
	}
	if err != nil {
		return nil, err
	}

	wc, err := s.repo.GetWorkingCopy(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return &models.CompareResult{Status: models.CompareDeleted}, nil
	}
	if err != nil {
		return nil, err
	}

	if models.SectionsEqual(wc.Sections, baseline.Sections) {
		return &models.CompareResult{Status: models.CompareClean}, nil
	}

	return &models.CompareResult{
		Status:      models.CompareModified,
		Differences: sectionDifferences(baseline.Sections, wc.Sections),
	}, nil
}

// Revert overwrites the working copy's sections with the baseline-derived
// sections, bumps the version, and records the revert timestamp. Reverting
// twice in a row yields identical working copy content both times.
func (s *ReconcileStore) Revert(ctx context.Context, id string) (*models.WorkingCopy, error) {
	baseline, err := s.repo.GetBaseline(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("revert %s: %w", id, err)
	}

	now := time.Now()

	wc, err := s.repo.GetWorkingCopy(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		// Working copy was deleted; revert recreates it from the baseline.
		wc = &models.WorkingCopy{
			ID:      id,
			Version: 0,
		}
	} else if err != nil {
		return nil, err
	}

	expected := wc.Version
	wc.Sections = models.CloneSections(baseline.Sections)
	wc.Tests = models.CloneTests(baseline.Tests)
	wc.Version = expected + 1
	wc.ValidationStatus = models.ValidationUntested
	wc.RevertedAt = &now
	wc.UpdatedAt = now

	if err := s.repo.PutWorkingCopy(ctx, wc, expected); err != nil {
		return nil, err
	}

	return wc, nil
}

// Delete removes the working copy, baseline snapshot, and canonical record
// together. Irreversible.
func (s *ReconcileStore) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetRecord(ctx, id); err != nil {
		return err
	}

	if err := s.repo.DeleteWorkingCopy(ctx, id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if err := s.repo.DeleteBaseline(ctx, id); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return s.repo.DeleteRecord(ctx, id)
}

// ListAll implements the Store contract.
func (s *ReconcileStore) ListAll(ctx context.Context) ([]*models.CanonicalRecord, error) {
	return s.repo.ListRecords(ctx)
}

// Get implements the Store contract.
func (s *ReconcileStore) Get(ctx context.Context, id string) (*models.CanonicalRecord, error) {
	return s.repo.GetRecord(ctx, id)
}

// WriteVersioned implements the Store contract: the write fails with a
// conflict unless the caller observed the latest version.
func (s *ReconcileStore) WriteVersioned(ctx context.Context, id string, data models.IncomingRecord, expectedVersion int) error {
	existing, err := s.repo.GetRecord(ctx, id)
	if err != nil {
		return err
	}
	if existing.Version != expectedVersion {
		return fmt.Errorf("%w: ingredient %s at version %d, write expected %d",
			apperr.ErrConflict, id, existing.Version, expectedVersion)
	}
	_, err = s.updateRecord(ctx, existing, data)
	return err
}

// archiveBaseline ships the seeded baseline to object storage. Best effort:
// archive failures are logged, never surfaced to the import.
func (s *ReconcileStore) archiveBaseline(ctx context.Context, snap *models.BaselineSnapshot) {
	if s.archive == nil {
		return
	}
	if err := s.archive.PutBaseline(ctx, snap); err != nil {
		s.logger.Warn("Failed to archive baseline snapshot",
			zap.String("id", snap.ID),
			zap.Error(err),
		)
	}
}

// sectionDifferences describes how working sections diverged from baseline
// sections, one string per difference.
func sectionDifferences(baseline, working []models.Section) []string {
	diffs := make([]string, 0)

	if len(baseline) != len(working) {
		diffs = append(diffs, fmt.Sprintf("section_count: baseline=%d working=%d", len(baseline), len(working)))
	}

	n := len(baseline)
	if len(working) < n {
		n = len(working)
	}
	for i := 0; i < n; i++ {
		if baseline[i].Type != working[i].Type {
			diffs = append(diffs, fmt.Sprintf("section %d type: baseline=%q working=%q", i, baseline[i].Type, working[i].Type))
		}
		if baseline[i].Content != working[i].Content {
			diffs = append(diffs, fmt.Sprintf("section %d content differs", i))
		}
		if baseline[i].Order != working[i].Order {
			diffs = append(diffs, fmt.Sprintf("section %d order: baseline=%d working=%d", i, baseline[i].Order, working[i].Order))
		}
	}

	return diffs
}
