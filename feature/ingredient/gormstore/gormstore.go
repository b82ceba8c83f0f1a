// Package gormstore provides the GORM/MySQL implementation of
// ingredient.Repository. Sections and tests are persisted as JSON columns;
// versioned writes are guarded with compare-and-swap UPDATEs.
package gormstore

import (
	"context"
	"errors"
	"fmt"

	"formulary-manager/core/apperr"
	"formulary-manager/feature/ingredient/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists ingredients through a GORM connection.
type Repository struct {
	db *gorm.DB
}

// New creates a repository over the given GORM connection.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the backing tables if they do not exist.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(
		&models.IngredientRow{},
		&models.BaselineRow{},
		&models.WorkingCopyRow{},
	)
}

func (r *Repository) GetRecord(ctx context.Context, id string) (*models.CanonicalRecord, error) {
	var row models.IngredientRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: ingredient %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load ingredient %s: %w", id, err)
	}
	return row.ToRecord()
}

func (r *Repository) ListRecords(ctx context.Context) ([]*models.CanonicalRecord, error) {
	var rows []models.IngredientRow
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}

	records := make([]*models.CanonicalRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := row.ToRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *Repository) PutRecord(ctx context.Context, rec *models.CanonicalRecord, expectedVersion int) error {
	row, err := models.RowFromRecord(rec)
	if err != nil {
		return err
	}

	if expectedVersion == 0 {
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: ingredient %s already exists", apperr.ErrConflict, rec.ID)
			}
			return fmt.Errorf("failed to create ingredient %s: %w", rec.ID, err)
		}
		return nil
	}

	// Compare-and-swap on the observed version; zero rows means a concurrent
	// writer got there first.
	result := r.db.WithContext(ctx).
		Model(&models.IngredientRow{}).
		Where("id = ? AND version = ?", rec.ID, expectedVersion).
		Updates(map[string]any{
			"keyname":      row.Keyname,
			"display_name": row.DisplayName,
			"category":     row.Category,
			"sections":     row.Sections,
			"tests":        row.Tests,
			"version":      row.Version,
			"content_hash": row.ContentHash,
			"updated_at":   row.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update ingredient %s: %w", rec.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: ingredient %s, write expected version %d",
			apperr.ErrConflict, rec.ID, expectedVersion)
	}
	return nil
}

func (r *Repository) DeleteRecord(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.IngredientRow{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete ingredient %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: ingredient %s", apperr.ErrNotFound, id)
	}
	return nil
}

func (r *Repository) GetBaseline(ctx context.Context, id string) (*models.BaselineSnapshot, error) {
	var row models.BaselineRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: baseline %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load baseline %s: %w", id, err)
	}
	return row.ToSnapshot()
}

func (r *Repository) SeedBaseline(ctx context.Context, snap *models.BaselineSnapshot) error {
	row, err := models.RowFromSnapshot(snap)
	if err != nil {
		return err
	}

	// First import wins: an existing baseline row is left untouched.
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to seed baseline %s: %w", snap.ID, err)
	}
	return nil
}

func (r *Repository) DeleteBaseline(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.BaselineRow{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete baseline %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: baseline %s", apperr.ErrNotFound, id)
	}
	return nil
}

func (r *Repository) GetWorkingCopy(ctx context.Context, id string) (*models.WorkingCopy, error) {
	var row models.WorkingCopyRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: working copy %s", apperr.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load working copy %s: %w", id, err)
	}
	return row.ToWorkingCopy()
}

func (r *Repository) PutWorkingCopy(ctx context.Context, wc *models.WorkingCopy, expectedVersion int) error {
	row, err := models.RowFromWorkingCopy(wc)
	if err != nil {
		return err
	}

	if expectedVersion == 0 {
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: working copy %s already exists", apperr.ErrConflict, wc.ID)
			}
			return fmt.Errorf("failed to create working copy %s: %w", wc.ID, err)
		}
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&models.WorkingCopyRow{}).
		Where("id = ? AND version = ?", wc.ID, expectedVersion).
		Updates(map[string]any{
			"sections":          row.Sections,
			"tests":             row.Tests,
			"version":           row.Version,
			"validation_status": row.ValidationStatus,
			"reverted_at":       row.RevertedAt,
			"updated_at":        row.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update working copy %s: %w", wc.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: working copy %s, write expected version %d",
			apperr.ErrConflict, wc.ID, expectedVersion)
	}
	return nil
}

func (r *Repository) DeleteWorkingCopy(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.WorkingCopyRow{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete working copy %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: working copy %s", apperr.ErrNotFound, id)
	}
	return nil
}
