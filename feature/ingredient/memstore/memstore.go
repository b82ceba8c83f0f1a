// Package memstore provides an in-memory ingredient.Repository. It backs
// tests and the embedded (database-less) mode of the service.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"formulary-manager/core/apperr"
	"formulary-manager/feature/ingredient/models"
)

// Repository is a mutex-guarded in-memory implementation of
// ingredient.Repository. All returned values are deep copies so callers can
// never mutate stored state through shared slices.
type Repository struct {
	mu        sync.RWMutex
	records   map[string]*models.CanonicalRecord
	baselines map[string]*models.BaselineSnapshot
	working   map[string]*models.WorkingCopy
}

// New creates an empty in-memory repository.
func New() *Repository {
	return &Repository{
		records:   make(map[string]*models.CanonicalRecord),
		baselines: make(map[string]*models.BaselineSnapshot),
		working:   make(map[string]*models.WorkingCopy),
	}
}

func (r *Repository) GetRecord(ctx context.Context, id string) (*models.CanonicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, fmt.Errorf("%w: ingredient %s", apperr.ErrNotFound, id)
	}
	return copyRecord(rec), nil
}

func (r *Repository) ListRecords(ctx context.Context) ([]*models.CanonicalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.CanonicalRecord, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, copyRecord(rec))
	}

	// Sort by id for deterministic output
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *Repository) PutRecord(ctx context.Context, rec *models.CanonicalRecord, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.records[rec.ID]
	if expectedVersion == 0 {
		if exists {
			return fmt.Errorf("%w: ingredient %s already exists", apperr.ErrConflict, rec.ID)
		}
	} else {
		if !exists || current.Version != expectedVersion {
			got := 0
			if exists {
				got = current.Version
			}
			return fmt.Errorf("%w: ingredient %s at version %d, write expected %d",
				apperr.ErrConflict, rec.ID, got, expectedVersion)
		}
	}

	r.records[rec.ID] = copyRecord(rec)
	return nil
}

func (r *Repository) DeleteRecord(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return fmt.Errorf("%w: ingredient %s", apperr.ErrNotFound, id)
	}
	delete(r.records, id)
	return nil
}

func (r *Repository) GetBaseline(ctx context.Context, id string) (*models.BaselineSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap, ok := r.baselines[id]
	if !ok {
		return nil, fmt.Errorf("%w: baseline %s", apperr.ErrNotFound, id)
	}
	return copySnapshot(snap), nil
}

func (r *Repository) SeedBaseline(ctx context.Context, snap *models.BaselineSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// First import wins; later seeds for the same id are no-ops.
	if _, exists := r.baselines[snap.ID]; exists {
		return nil
	}
	r.baselines[snap.ID] = copySnapshot(snap)
	return nil
}

func (r *Repository) DeleteBaseline(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.baselines[id]; !ok {
		return fmt.Errorf("%w: baseline %s", apperr.ErrNotFound, id)
	}
	delete(r.baselines, id)
	return nil
}

func (r *Repository) GetWorkingCopy(ctx context.Context, id string) (*models.WorkingCopy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wc, ok := r.working[id]
	if !ok {
		return nil, fmt.Errorf("%w: working copy %s", apperr.ErrNotFound, id)
	}
	return copyWorking(wc), nil
}

func (r *Repository) PutWorkingCopy(ctx context.Context, wc *models.WorkingCopy, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.working[wc.ID]
	if expectedVersion == 0 {
		if exists {
			return fmt.Errorf("%w: working copy %s already exists", apperr.ErrConflict, wc.ID)
		}
	} else {
		if !exists || current.Version != expectedVersion {
			got := 0
			if exists {
				got = current.Version
			}
			return fmt.Errorf("%w: working copy %s at version %d, write expected %d",
				apperr.ErrConflict, wc.ID, got, expectedVersion)
		}
	}

	r.working[wc.ID] = copyWorking(wc)
	return nil
}

func (r *Repository) DeleteWorkingCopy(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.working[id]; !ok {
		return fmt.Errorf("%w: working copy %s", apperr.ErrNotFound, id)
	}
	delete(r.working, id)
	return nil
}

func copyRecord(rec *models.CanonicalRecord) *models.CanonicalRecord {
	out := *rec
	out.Sections = models.CloneSections(rec.Sections)
	out.Tests = models.CloneTests(rec.Tests)
	return &out
}

func copySnapshot(snap *models.BaselineSnapshot) *models.BaselineSnapshot {
	out := *snap
	out.Sections = models.CloneSections(snap.Sections)
	out.Tests = models.CloneTests(snap.Tests)
	return &out
}

func copyWorking(wc *models.WorkingCopy) *models.WorkingCopy {
	out := *wc
	out.Sections = models.CloneSections(wc.Sections)
	out.Tests = models.CloneTests(wc.Tests)
	return &out
}
