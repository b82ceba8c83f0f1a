package ingredient

import (
	"context"
	"testing"

	"formulary-manager/core/apperr"
	"formulary-manager/feature/ingredient/memstore"
	"formulary-manager/feature/ingredient/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testStore() (*ReconcileStore, *memstore.Repository) {
	repo := memstore.New()
	return NewReconcileStore(repo, nil, zap.NewNop()), repo
}

func incoming(content ...string) models.IncomingRecord {
	sections := make([]models.Section, len(content))
	for i, c := range content {
		sections[i] = models.Section{Type: models.SectionStaticText, Content: c, Order: i}
	}
	return models.IncomingRecord{
		Keyname:     "HEPARIN",
		DisplayName: "Heparin Drip",
		Category:    "anticoagulant",
		Sections:    sections,
	}
}

// TestSaveRecord_FirstImportSeedsBaseline tests that the first save creates
// record, baseline, and working copy at version 1.
func TestSaveRecord_FirstImportSeedsBaseline(t *testing.T) {
	store, repo := testStore()
	ctx := context.Background()

	rec, err := store.SaveRecord(ctx, "heparin-drip", incoming("Administer slowly"))
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Version)
	assert.NotEmpty(t, rec.ContentHash)

	baseline, err := repo.GetBaseline(ctx, "heparin-drip")
	require.NoError(t, err)
	assert.Equal(t, "Administer slowly", baseline.Sections[0].Content)

	wc, err := repo.GetWorkingCopy(ctx, "heparin-drip")
	require.NoError(t, err)
	assert.Equal(t, 1, wc.Version)
	assert.Equal(t, models.ValidationUntested, wc.ValidationStatus)
}

// TestSaveRecord_SecondImportPreservesBaseline tests first-import-wins: a
// later save bumps record and working copy versions but never reseeds the
// baseline.
func TestSaveRecord_SecondImportPreservesBaseline(t *testing.T) {
	store, repo := testStore()
	ctx := context.Background()

	_, err := store.SaveRecord(ctx, "heparin-drip", incoming("original"))
	require.NoError(t, err)

	rec, err := store.SaveRecord(ctx, "heparin-drip", incoming("edited"))
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Version)

	baseline, err := repo.GetBaseline(ctx, "heparin-drip")
	require.NoError(t, err)
	assert.Equal(t, "original", baseline.Sections[0].Content)

	wc, err := repo.GetWorkingCopy(ctx, "heparin-drip")
	require.NoError(t, err)
	assert.Equal(t, 2, wc.Version)
	assert.Equal(t, "edited", wc.Sections[0].Content)
}

// TestCompare_Statuses tests the four compare classifications.
func TestCompare_Statuses(t *testing.T) {
	store, repo := testStore()
	ctx := context.Background()

	// NEW: nothing saved yet.
	result, err := store.Compare(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, models.CompareNew, result.Status)

	_, err = store.SaveRecord(ctx, "heparin-drip", incoming("original"))
	require.NoError(t, err)

	// CLEAN: working copy equals baseline.
	result, err = store.Compare(ctx, "heparin-drip")
	require.NoError(t, err)
	assert.Equal(t, models.CompareClean, result.Status)
	assert.Empty(t, result.Differences)

	// MODIFIED: working sections diverged.
	_, err = store.SaveRecord(ctx, "heparin-drip", incoming("edited", "appended"))
	require.NoError(t, err)
	result, err = store.Compare(ctx, "heparin-drip")
	require.NoError(t, err)
	assert.Equal(t, models.CompareModified, result.Status)
	assert.NotEmpty(t, result.Differences)
	assert.Contains(t, result.Differences[0], "section_count")

	// DELETED: baseline survives working copy removal.
	require.NoError(t, repo.DeleteWorkingCopy(ctx, "heparin-drip"))
	result, err = store.Compare(ctx, "heparin-drip")
	require.NoError(t, err)
	assert.Equal(t, models.CompareDeleted, result.Status)
}

// TestRevert_Idempotent tests that reverting twice yields identical working
// copy sections and a CLEAN compare after each call.
func TestRevert_Idempotent(t *testing.T) {
	store, _ := testStore()
	ctx := context.Background()

	_, err := store.SaveRecord(ctx, "heparin-drip", incoming("original"))
	require.NoError(t, err)
	_, err = store.SaveRecord(ctx, "heparin-drip", incoming("edited"))
	require.NoError(t, err)

	first, err := store.Revert(ctx, "heparin-drip")
	require.NoError(t, err)
	assert.Equal(t, "original", first.Sections[0].Content)
	assert.NotNil(t, first.RevertedAt)

	result, err := store.Compare(ctx, "heparin-drip")
	require.NoError(t, err)
	assert.Equal(t, models.CompareClean, result.Status)

	second, err := store.Revert(ctx, "heparin-drip")
	require.NoError(t, err)
	assert.Equal(t, first.Sections, second.Sections)
	assert.Equal(t, first.Version+1, second.Version)

	result, err = store.Compare(ctx, "heparin-drip")
	require.NoError(t, err)
	assert.Equal(t, models.CompareClean, result.Status)
}

// TestRevert_NoBaseline tests that reverting an unknown id fails.
func TestRevert_NoBaseline(t *testing.T) {
	store, _ := testStore()

	_, err := store.Revert(context.Background(), "unknown")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

// TestDelete_RemovesEverything tests that delete removes record, baseline,
// and working copy together.
func TestDelete_RemovesEverything(t *testing.T) {
	store, repo := testStore()
	ctx := context.Background()

	_, err := store.SaveRecord(ctx, "heparin-drip", incoming("original"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "heparin-drip"))

	_, err = repo.GetRecord(ctx, "heparin-drip")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = repo.GetBaseline(ctx, "heparin-drip")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = repo.GetWorkingCopy(ctx, "heparin-drip")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// Compare now reports NEW again.
	result, err := store.Compare(ctx, "heparin-drip")
	require.NoError(t, err)
	assert.Equal(t, models.CompareNew, result.Status)
}

// TestWriteVersioned_Conflict tests the optimistic-concurrency contract of
// the canonical store interface.
func TestWriteVersioned_Conflict(t *testing.T) {
	store, _ := testStore()
	ctx := context.Background()

	_, err := store.SaveRecord(ctx, "heparin-drip", incoming("original"))
	require.NoError(t, err)

	// Correct version succeeds.
	require.NoError(t, store.WriteVersioned(ctx, "heparin-drip", incoming("edit one"), 1))

	// Stale version fails with a conflict, and the record is untouched.
	err = store.WriteVersioned(ctx, "heparin-drip", incoming("edit two"), 1)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	rec, err := store.Get(ctx, "heparin-drip")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Version)
	assert.Equal(t, "edit one", rec.Sections[0].Content)
}

// TestContentHash_IgnoresMetadata tests that records differing only in
// display metadata share a content hash, while reordering sections changes
// it.
func TestContentHash_IgnoresMetadata(t *testing.T) {
	store, _ := testStore()
	ctx := context.Background()

	a := incoming("one", "two")
	b := incoming("one", "two")
	b.DisplayName = "Different Label"
	b.Keyname = "OTHER"

	recA, err := store.SaveRecord(ctx, "a", a)
	require.NoError(t, err)
	recB, err := store.SaveRecord(ctx, "b", b)
	require.NoError(t, err)
	assert.Equal(t, recA.ContentHash, recB.ContentHash)

	reordered := incoming("two", "one")
	recC, err := store.SaveRecord(ctx, "c", reordered)
	require.NoError(t, err)
	assert.NotEqual(t, recA.ContentHash, recC.ContentHash)
}
