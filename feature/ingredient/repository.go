package ingredient

import (
	"context"

	"formulary-manager/feature/ingredient/models"
)

// Repository is the persistence contract for canonical records, baseline
// snapshots, and working copies. Implementations: memstore (in-memory) and
// gormstore (MySQL via GORM).
//
// Versioned writes use optimistic concurrency: PutRecord and PutWorkingCopy
// take the version the writer observed. expectedVersion 0 means "create"; a
// stale or missing expectation fails with apperr.ErrConflict, never a silent
// overwrite.
type Repository interface {
	GetRecord(ctx context.Context, id string) (*models.CanonicalRecord, error)
	ListRecords(ctx context.Context) ([]*models.CanonicalRecord, error)
	PutRecord(ctx context.Context, rec *models.CanonicalRecord, expectedVersion int) error
	DeleteRecord(ctx context.Context, id string) error

	GetBaseline(ctx context.Context, id string) (*models.BaselineSnapshot, error)
	// SeedBaseline stores the snapshot only if no baseline exists for the id
	// yet (first-import-wins). Seeding an already-baselined id is a no-op.
	SeedBaseline(ctx context.Context, snap *models.BaselineSnapshot) error
	DeleteBaseline(ctx context.Context, id string) error

	GetWorkingCopy(ctx context.Context, id string) (*models.WorkingCopy, error)
	PutWorkingCopy(ctx context.Context, wc *models.WorkingCopy, expectedVersion int) error
	DeleteWorkingCopy(ctx context.Context, id string) error
}

// Store is the narrow canonical-store contract consumed by the import
// analyzer and executor. The ReconcileStore satisfies it; the surrounding
// application decides which Repository backs it.
type Store interface {
	ListAll(ctx context.Context) ([]*models.CanonicalRecord, error)
	Get(ctx context.Context, id string) (*models.CanonicalRecord, error)
	WriteVersioned(ctx context.Context, id string, data models.IncomingRecord, expectedVersion int) error
}
