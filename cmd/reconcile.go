package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var yesConfirm bool

// reconcileCmd is the parent command for working-copy reconciliation.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare, revert, or delete ingredients against their baselines",
	Long: `Reconcile operates on a single ingredient's three representations:
the canonical record, the immutable baseline snapshot, and the working copy.

Examples:
  # Classify the working copy against its baseline
  reconcile compare corrected-sodium

  # Restore baseline content into the working copy
  reconcile revert corrected-sodium

  # Remove the record, baseline, and working copy together
  reconcile delete corrected-sodium --yes`,
}

var reconcileCompareCmd = &cobra.Command{
	Use:   "compare <id>",
	Short: "Classify the working copy against its baseline snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runReconcileCompare,
}

var reconcileRevertCmd = &cobra.Command{
	Use:   "revert <id>",
	Short: "Restore baseline content into the working copy",
	Args:  cobra.ExactArgs(1),
	RunE:  runReconcileRevert,
}

var reconcileDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete the record, baseline, and working copy (irreversible)",
	Args:  cobra.ExactArgs(1),
	RunE:  runReconcileDelete,
}

func init() {
	reconcileCmd.AddCommand(reconcileCompareCmd)
	reconcileCmd.AddCommand(reconcileRevertCmd)
	reconcileCmd.AddCommand(reconcileDeleteCmd)

	reconcileDeleteCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm the delete (non-interactive)")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcileCompare(cmd *cobra.Command, args []string) error {
	store, l, err := openStore()
	if err != nil {
		return err
	}

	result, err := store.Compare(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("compare failed: %w", err)
	}

	l.Info("Compare result",
		zap.String("id", args[0]),
		zap.String("status", string(result.Status)),
	)
	for _, diff := range result.Differences {
		l.Info("Difference", zap.String("detail", diff))
	}

	return nil
}

func runReconcileRevert(cmd *cobra.Command, args []string) error {
	store, l, err := openStore()
	if err != nil {
		return err
	}

	wc, err := store.Revert(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("revert failed: %w", err)
	}

	l.Info("Working copy reverted to baseline",
		zap.String("id", args[0]),
		zap.Int("version", wc.Version),
	)
	return nil
}

func runReconcileDelete(cmd *cobra.Command, args []string) error {
	store, l, err := openStore()
	if err != nil {
		return err
	}

	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	if err := store.Delete(context.Background(), args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	l.Info("Ingredient deleted", zap.String("id", args[0]))
	return nil
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
