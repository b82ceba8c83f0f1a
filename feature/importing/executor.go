package importing

import (
	"context"
	"errors"
	"fmt"

	"formulary-manager/core/apperr"
	"formulary-manager/feature/ingredient"
	"formulary-manager/feature/ingredient/models"

	"go.uber.org/zap"
)

// Executor commits an analyzed batch into the reconcile store, one caller
// decision at a time.
type Executor struct {
	store  *ingredient.ReconcileStore
	logger *zap.Logger
}

// NewExecutor creates an executor over the given reconcile store.
func NewExecutor(store *ingredient.ReconcileStore, logger *zap.Logger) *Executor {
	return &Executor{store: store, logger: logger}
}

// ExecuteImport applies the caller's decisions to the batch in order.
// Decisions are keyed by the incoming record's slug id; a missing decision
// defaults to create-new. Per-record failures are collected and the loop
// continues, so partial progress is always preserved and reported.
// Cancellation is cooperative, checked between records; no record is ever
// left half-written.
func (e *Executor) ExecuteImport(ctx context.Context, batch []map[string]any, decisions map[string]MergeDecision, onProgress ProgressFunc) *ImportResult {
	result := &ImportResult{Errors: make([]string, 0)}
	total := len(batch)

	for i, raw := range batch {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("import cancelled after %d of %d records", i, total))
			break
		}

		currentItem := e.processRecord(ctx, raw, decisions, result)

		if onProgress != nil {
			onProgress(Progress{
				Current:     i + 1,
				Total:       total,
				CurrentItem: currentItem,
				Percentage:  float64(i+1) / float64(total) * 100,
			})
		}
	}

	result.Success = len(result.Errors) == 0

	e.logger.Info("Import batch executed",
		zap.Bool("success", result.Success),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("merged", result.Merged),
		zap.Int("errors", len(result.Errors)),
	)

	return result
}

// processRecord applies one record's decision and returns the item name for
// progress reporting. Failures land in result.Errors.
func (e *Executor) processRecord(ctx context.Context, raw map[string]any, decisions map[string]MergeDecision, result *ImportResult) string {
	incoming, err := ingredient.AdaptIncoming(raw)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return ""
	}

	id := models.Slug(incoming.Keyname)
	decision, ok := decisions[id]
	if !ok {
		decision = MergeDecision{Action: DecisionCreateNew}
	}

	switch decision.Action {
	case DecisionUseExisting:
		result.Skipped++

	case DecisionMerge:
		if err := e.merge(ctx, decision.TargetID, incoming); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", id, err))
		} else {
			result.Merged++
		}

	default:
		// create-new, including unknown actions
		if _, err := e.store.SaveRecord(ctx, id, *incoming); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", id, err))
		} else {
			result.Created++
		}
	}

	return incoming.DisplayName
}

// merge appends the incoming sections and tests after the target's current
// working copy content, through the versioned store write.
func (e *Executor) merge(ctx context.Context, targetID string, incoming *models.IncomingRecord) error {
	if targetID == "" {
		return fmt.Errorf("%w: merge decision missing target id", apperr.ErrValidation)
	}

	target, err := e.store.Get(ctx, targetID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return fmt.Errorf("%w: merge target %s", apperr.ErrNotFound, targetID)
		}
		return err
	}

	merged := models.IncomingRecord{
		Keyname:     target.Keyname,
		DisplayName: target.DisplayName,
		Category:    target.Category,
		Sections:    appendSections(target.Sections, incoming.Sections),
		Tests:       appendTests(target.Tests, incoming.Tests),
	}

	return e.store.WriteVersioned(ctx, targetID, merged, target.Version)
}

// appendSections concatenates incoming sections after existing ones,
// renumbering order so the combined list stays strictly positional.
func appendSections(existing, incoming []models.Section) []models.Section {
	out := make([]models.Section, 0, len(existing)+len(incoming))
	out = append(out, existing...)
	out = append(out, incoming...)
	for i := range out {
		out[i].Order = i
	}
	return out
}

func appendTests(existing, incoming []models.TestCase) []models.TestCase {
	out := make([]models.TestCase, 0, len(existing)+len(incoming))
	out = append(out, existing...)
	out = append(out, incoming...)
	for i := range out {
		out[i].Order = i
	}
	return out
}
