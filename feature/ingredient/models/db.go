package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// IngredientRow is the 'ingredients' table row. Sections and tests are stored
// as JSON documents; ordering is preserved by the encoded array.
type IngredientRow struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Keyname     string    `gorm:"column:keyname"`
	DisplayName string    `gorm:"column:display_name"`
	Category    string    `gorm:"column:category"`
	Sections    string    `gorm:"column:sections"` // JSON array of Section
	Tests       string    `gorm:"column:tests"`    // JSON array of TestCase
	Version     int       `gorm:"column:version"`
	ContentHash string    `gorm:"column:content_hash"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name for ingredients.
func (IngredientRow) TableName() string {
	return "ingredients"
}

// BaselineRow is the 'ingredient_baselines' table row.
type BaselineRow struct {
	ID         string    `gorm:"column:id;primaryKey"`
	Sections   string    `gorm:"column:sections"`
	Tests      string    `gorm:"column:tests"`
	ImportedAt time.Time `gorm:"column:imported_at"`
}

// TableName overrides the table name for baseline snapshots.
func (BaselineRow) TableName() string {
	return "ingredient_baselines"
}

// WorkingCopyRow is the 'ingredient_working_copies' table row.
type WorkingCopyRow struct {
	ID               string     `gorm:"column:id;primaryKey"`
	Sections         string     `gorm:"column:sections"`
	Tests            string     `gorm:"column:tests"`
	Version          int        `gorm:"column:version"`
	ValidationStatus string     `gorm:"column:validation_status"`
	RevertedAt       *time.Time `gorm:"column:reverted_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
}

// TableName overrides the table name for working copies.
func (WorkingCopyRow) TableName() string {
	return "ingredient_working_copies"
}

// ToRecord converts the row into the domain record.
func (r IngredientRow) ToRecord() (*CanonicalRecord, error) {
	sections, err := decodeSections(r.Sections)
	if err != nil {
		return nil, fmt.Errorf("ingredient %s: %w", r.ID, err)
	}
	tests, err := decodeTests(r.Tests)
	if err != nil {
		return nil, fmt.Errorf("ingredient %s: %w", r.ID, err)
	}
	return &CanonicalRecord{
		ID:          r.ID,
		Keyname:     r.Keyname,
		DisplayName: r.DisplayName,
		Category:    r.Category,
		Sections:    sections,
		Tests:       tests,
		Version:     r.Version,
		ContentHash: r.ContentHash,
	}, nil
}

// RowFromRecord converts a domain record into its row representation.
func RowFromRecord(rec *CanonicalRecord) (IngredientRow, error) {
	sections, err := encodeJSON(rec.Sections)
	if err != nil {
		return IngredientRow{}, err
	}
	tests, err := encodeJSON(rec.Tests)
	if err != nil {
		return IngredientRow{}, err
	}
	return IngredientRow{
		ID:          rec.ID,
		Keyname:     rec.Keyname,
		DisplayName: rec.DisplayName,
		Category:    rec.Category,
		Sections:    sections,
		Tests:       tests,
		Version:     rec.Version,
		ContentHash: rec.ContentHash,
		UpdatedAt:   time.Now(),
	}, nil
}

// ToSnapshot converts the row into the domain baseline snapshot.
func (r BaselineRow) ToSnapshot() (*BaselineSnapshot, error) {
	sections, err := decodeSections(r.Sections)
	if err != nil {
		return nil, fmt.Errorf("baseline %s: %w", r.ID, err)
	}
	tests, err := decodeTests(r.Tests)
	if err != nil {
		return nil, fmt.Errorf("baseline %s: %w", r.ID, err)
	}
	return &BaselineSnapshot{
		ID:         r.ID,
		Sections:   sections,
		Tests:      tests,
		ImportedAt: r.ImportedAt,
	}, nil
}

// RowFromSnapshot converts a domain baseline into its row representation.
func RowFromSnapshot(snap *BaselineSnapshot) (BaselineRow, error) {
	sections, err := encodeJSON(snap.Sections)
	if err != nil {
		return BaselineRow{}, err
	}
	tests, err := encodeJSON(snap.Tests)
	if err != nil {
		return BaselineRow{}, err
	}
	return BaselineRow{
		ID:         snap.ID,
		Sections:   sections,
		Tests:      tests,
		ImportedAt: snap.ImportedAt,
	}, nil
}

// ToWorkingCopy converts the row into the domain working copy.
func (r WorkingCopyRow) ToWorkingCopy() (*WorkingCopy, error) {
	sections, err := decodeSections(r.Sections)
	if err != nil {
		return nil, fmt.Errorf("working copy %s: %w", r.ID, err)
	}
	tests, err := decodeTests(r.Tests)
	if err != nil {
		return nil, fmt.Errorf("working copy %s: %w", r.ID, err)
	}
	return &WorkingCopy{
		ID:               r.ID,
		Sections:         sections,
		Tests:            tests,
		Version:          r.Version,
		ValidationStatus: ValidationStatus(r.ValidationStatus),
		RevertedAt:       r.RevertedAt,
		UpdatedAt:        r.UpdatedAt,
	}, nil
}

// RowFromWorkingCopy converts a domain working copy into its row
// representation.
func RowFromWorkingCopy(wc *WorkingCopy) (WorkingCopyRow, error) {
	sections, err := encodeJSON(wc.Sections)
	if err != nil {
		return WorkingCopyRow{}, err
	}
	tests, err := encodeJSON(wc.Tests)
	if err != nil {
		return WorkingCopyRow{}, err
	}
	return WorkingCopyRow{
		ID:               wc.ID,
		Sections:         sections,
		Tests:            tests,
		Version:          wc.Version,
		ValidationStatus: string(wc.ValidationStatus),
		RevertedAt:       wc.RevertedAt,
		UpdatedAt:        time.Now(),
	}, nil
}

func decodeSections(raw string) ([]Section, error) {
	if raw == "" {
		return []Section{}, nil
	}
	var sections []Section
	if err := json.Unmarshal([]byte(raw), &sections); err != nil {
		return nil, fmt.Errorf("decode sections: %w", err)
	}
	return sections, nil
}

func decodeTests(raw string) ([]TestCase, error) {
	if raw == "" {
		return []TestCase{}, nil
	}
	var tests []TestCase
	if err := json.Unmarshal([]byte(raw), &tests); err != nil {
		return nil, fmt.Errorf("decode tests: %w", err)
	}
	return tests, nil
}

func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	return string(data), nil
}
