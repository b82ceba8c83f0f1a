package importing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExecuteImport_CreatesByDefault(t *testing.T) {
	store := testReconcileStore()

	executor := NewExecutor(store, zap.NewNop())
	result := executor.ExecuteImport(context.Background(), []map[string]any{
		rawEntry("ANION_GAP", "Anion Gap", "electrolytes", "na - (cl + hco3)"),
	}, nil, nil)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Created)
	assert.Empty(t, result.Errors)

	rec, err := store.Get(context.Background(), "anion-gap")
	require.NoError(t, err)
	assert.Equal(t, "Anion Gap", rec.DisplayName)
	assert.Equal(t, 1, rec.Version)
}

func TestExecuteImport_UseExistingSkips(t *testing.T) {
	store := testReconcileStore()
	seedRecord(t, store, "ANION_GAP", "Anion Gap", "electrolytes", "na - (cl + hco3)")
	seedRecord(t, store, "OSMOLALITY", "Serum Osmolality", "electrolytes", "2 * na + glucose / 18")

	executor := NewExecutor(store, zap.NewNop())
	result := executor.ExecuteImport(context.Background(), []map[string]any{
		rawEntry("ANION_GAP", "Anion Gap", "electrolytes", "na - (cl + hco3)"),
		rawEntry("OSMOLALITY", "Serum Osmolality", "electrolytes", "2 * na + glucose / 18"),
	}, map[string]MergeDecision{
		"anion-gap":  {Action: DecisionUseExisting},
		"osmolality": {Action: DecisionUseExisting},
	}, nil)

	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, 0, result.Merged)

	// Nothing was written: versions stay at 1.
	rec, err := store.Get(context.Background(), "anion-gap")
	require.NoError(t, err)
	assert.Equal(t, 1, rec.Version)
}

func TestExecuteImport_MergeAppendsContent(t *testing.T) {
	store := testReconcileStore()
	seedRecord(t, store, "ANION_GAP", "Anion Gap", "electrolytes", "na - (cl + hco3)")

	executor := NewExecutor(store, zap.NewNop())
	result := executor.ExecuteImport(context.Background(), []map[string]any{
		rawEntry("ANION_GAP_V2", "Anion Gap v2", "electrolytes", "na + k - (cl + hco3)"),
	}, map[string]MergeDecision{
		"anion-gap-v2": {Action: DecisionMerge, TargetID: "anion-gap"},
	}, nil)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Merged)

	rec, err := store.Get(context.Background(), "anion-gap")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Version)
	require.Len(t, rec.Sections, 2)
	assert.Equal(t, "na - (cl + hco3)", rec.Sections[0].Content)
	assert.Equal(t, "na + k - (cl + hco3)", rec.Sections[1].Content)
	assert.Equal(t, 0, rec.Sections[0].Order)
	assert.Equal(t, 1, rec.Sections[1].Order)

	// The merge keeps the target's identity fields.
	assert.Equal(t, "Anion Gap", rec.DisplayName)
}

func TestExecuteImport_MergeMissingTargetIsRecorded(t *testing.T) {
	store := testReconcileStore()

	executor := NewExecutor(store, zap.NewNop())
	result := executor.ExecuteImport(context.Background(), []map[string]any{
		rawEntry("ANION_GAP", "Anion Gap", "electrolytes", "na - (cl + hco3)"),
		rawEntry("OSMOLALITY", "Serum Osmolality", "electrolytes", "2 * na + glucose / 18"),
	}, map[string]MergeDecision{
		"anion-gap": {Action: DecisionMerge, TargetID: "no-such-record"},
	}, nil)

	// One record failed, the other was still created.
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "anion-gap")
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Merged)
}

func TestExecuteImport_MergeWithoutTargetID(t *testing.T) {
	store := testReconcileStore()

	executor := NewExecutor(store, zap.NewNop())
	result := executor.ExecuteImport(context.Background(), []map[string]any{
		rawEntry("ANION_GAP", "Anion Gap", "electrolytes", "na - (cl + hco3)"),
	}, map[string]MergeDecision{
		"anion-gap": {Action: DecisionMerge},
	}, nil)

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "missing target id")
}

func TestExecuteImport_MalformedEntryIsRecorded(t *testing.T) {
	executor := NewExecutor(testReconcileStore(), zap.NewNop())
	result := executor.ExecuteImport(context.Background(), []map[string]any{
		{"displayName": "no name here"},
	}, nil, nil)

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 0, result.Created)
}

func TestExecuteImport_ReportsProgress(t *testing.T) {
	executor := NewExecutor(testReconcileStore(), zap.NewNop())

	var seen []Progress
	executor.ExecuteImport(context.Background(), []map[string]any{
		rawEntry("ANION_GAP", "Anion Gap", "electrolytes", "na - (cl + hco3)"),
		rawEntry("OSMOLALITY", "Serum Osmolality", "electrolytes", "2 * na + glucose / 18"),
	}, nil, func(p Progress) {
		seen = append(seen, p)
	})

	require.Len(t, seen, 2)
	assert.Equal(t, Progress{Current: 1, Total: 2, CurrentItem: "Anion Gap", Percentage: 50}, seen[0])
	assert.Equal(t, Progress{Current: 2, Total: 2, CurrentItem: "Serum Osmolality", Percentage: 100}, seen[1])
}

func TestExecuteImport_CancelledContextStopsBatch(t *testing.T) {
	store := testReconcileStore()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	executor := NewExecutor(store, zap.NewNop())
	result := executor.ExecuteImport(ctx, []map[string]any{
		rawEntry("ANION_GAP", "Anion Gap", "electrolytes", "na - (cl + hco3)"),
	}, nil, nil)

	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "cancelled")

	_, err := store.Get(context.Background(), "anion-gap")
	assert.Error(t, err)
}

func TestExecuteImport_ReimportAfterCreateMatchesExactly(t *testing.T) {
	store := testReconcileStore()
	batch := []map[string]any{
		rawEntry("ANION_GAP", "Anion Gap", "electrolytes", "na - (cl + hco3)"),
	}

	executor := NewExecutor(store, zap.NewNop())
	first := executor.ExecuteImport(context.Background(), batch, nil, nil)
	require.True(t, first.Success)
	require.Equal(t, 1, first.Created)

	// Re-analyzing the same batch now classifies it as an exact match.
	analyzer := NewAnalyzer(store, zap.NewNop())
	analysis, err := analyzer.AnalyzeBatch(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 1, analysis.Summary.ExactMatches)
	assert.Equal(t, "anion-gap", analysis.ExactMatches[0].MatchedRecordID)
}
