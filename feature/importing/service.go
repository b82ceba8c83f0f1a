package importing

import (
	"context"

	"formulary-manager/feature/ingredient"

	"go.uber.org/zap"
)

// Service handles import operations.
type Service struct {
	analyzer *Analyzer
	executor *Executor
	logger   *zap.Logger
}

// NewService creates a new import service over the reconcile store.
func NewService(store *ingredient.ReconcileStore, logger *zap.Logger) *Service {
	return &Service{
		analyzer: NewAnalyzer(store, logger),
		executor: NewExecutor(store, logger),
		logger:   logger,
	}
}

// Analyze classifies a raw batch against the canonical population.
func (s *Service) Analyze(ctx context.Context, batch []map[string]any) (*ImportAnalysisResult, error) {
	return s.analyzer.AnalyzeBatch(ctx, batch)
}

// Execute commits a batch under the given decisions, logging progress per
// record.
func (s *Service) Execute(ctx context.Context, batch []map[string]any, decisions map[string]MergeDecision) *ImportResult {
	return s.executor.ExecuteImport(ctx, batch, decisions, func(p Progress) {
		s.logger.Debug("Import progress",
			zap.Int("current", p.Current),
			zap.Int("total", p.Total),
			zap.String("item", p.CurrentItem),
		)
	})
}
