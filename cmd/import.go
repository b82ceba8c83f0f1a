package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"formulary-manager/core/config"
	"formulary-manager/core/database"
	"formulary-manager/core/logger"
	"formulary-manager/core/storage"
	"formulary-manager/feature/importing"
	"formulary-manager/feature/ingredient"
	"formulary-manager/feature/ingredient/gormstore"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importFile    string
	decisionsFile string
)

// importCmd is the parent command for import operations.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Analyze and execute ingredient import batches",
	Long: `Import reconciles an exported ingredient batch against the canonical
formulary. Analyze classifies every record without writing anything; execute
commits the batch under the given decisions.`,
}

// importAnalyzeCmd classifies a batch file without writing anything.
var importAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Classify a batch file against the canonical population",
	RunE:  runImportAnalyze,
}

// importExecuteCmd commits a batch file.
var importExecuteCmd = &cobra.Command{
	Use:   "execute",
	Short: "Commit a batch file, applying per-record decisions",
	Long: `Commit a batch file. Decisions are read from a JSON file mapping slug
ids to {"action": "use-existing"|"create-new"|"merge", "target_id": "..."}.
Records without a decision are created as new.`,
	RunE: runImportExecute,
}

func init() {
	importCmd.AddCommand(importAnalyzeCmd)
	importCmd.AddCommand(importExecuteCmd)

	importCmd.PersistentFlags().StringVarP(&importFile, "file", "f", "", "Path to the batch JSON file (required)")
	_ = importCmd.MarkPersistentFlagRequired("file")

	importExecuteCmd.Flags().StringVar(&decisionsFile, "decisions", "", "Path to the decisions JSON file")

	RootCmd.AddCommand(importCmd)
}

// openStore builds the reconcile store for CLI commands. Unlike the server,
// CLI invocations require the database: mutating an in-memory store that
// vanishes on exit would silently do nothing.
func openStore() (*ingredient.ReconcileStore, *zap.Logger, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := gormstore.New(db)
	if err := repo.Migrate(); err != nil {
		return nil, nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	var archive ingredient.Archive
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to storage: %w", err)
		}
		archive = ingredient.NewObjectArchive(client, cfg.Storage.Bucket)
	}

	return ingredient.NewReconcileStore(repo, archive, l), l, nil
}

// loadBatch reads a batch file. Both a bare JSON array and the API's
// {"ingredients": [...]} envelope are accepted.
func loadBatch(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var batch []map[string]any
	if err := json.Unmarshal(data, &batch); err == nil {
		return batch, nil
	}

	var envelope importing.AnalyzeRequest
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse batch file: %w", err)
	}
	return envelope.Ingredients, nil
}

func runImportAnalyze(cmd *cobra.Command, args []string) error {
	store, l, err := openStore()
	if err != nil {
		return err
	}

	batch, err := loadBatch(importFile)
	if err != nil {
		return err
	}

	analyzer := importing.NewAnalyzer(store, l)
	result, err := analyzer.AnalyzeBatch(context.Background(), batch)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	l.Info("Analysis complete",
		zap.Int("total", result.Summary.TotalChecked),
		zap.Int("exact_matches", result.Summary.ExactMatches),
		zap.Int("near_matches", result.Summary.NearMatches),
		zap.Int("unique", result.Summary.Unique),
		zap.Int("skipped", result.Summary.Skipped),
		zap.Float64("estimated_size_reduction_pct", result.Summary.EstimatedSizeReduction),
	)

	// Full classification goes to stdout so it can be piped into the
	// decisions file for execute.
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	return nil
}

func runImportExecute(cmd *cobra.Command, args []string) error {
	store, l, err := openStore()
	if err != nil {
		return err
	}

	batch, err := loadBatch(importFile)
	if err != nil {
		return err
	}

	decisions := make(map[string]importing.MergeDecision)
	if decisionsFile != "" {
		data, err := os.ReadFile(decisionsFile)
		if err != nil {
			return fmt.Errorf("failed to read decisions file: %w", err)
		}
		if err := json.Unmarshal(data, &decisions); err != nil {
			return fmt.Errorf("failed to parse decisions file: %w", err)
		}
	}

	executor := importing.NewExecutor(store, l)
	result := executor.ExecuteImport(context.Background(), batch, decisions, func(p importing.Progress) {
		l.Info("Import progress",
			zap.Int("current", p.Current),
			zap.Int("total", p.Total),
			zap.String("item", p.CurrentItem),
		)
	})

	l.Info("Import finished",
		zap.Bool("success", result.Success),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("merged", result.Merged),
	)
	for _, e := range result.Errors {
		l.Error("Import record failed", zap.String("detail", e))
	}

	if !result.Success {
		return fmt.Errorf("%d of %d records failed", len(result.Errors), len(batch))
	}
	return nil
}
