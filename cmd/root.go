package cmd

import (
	"fmt"
	"os"

	"formulary-manager/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "formulary-manager",
	Short: "Formulary Manager Service",
	Long: `Formulary Manager keeps clinical calculator ingredients in a single
canonical form. It deduplicates imports, tracks working copies against their
baseline snapshots, and serves the reconciliation API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Console format with debug level gives readable ISO8601 output for a
		// CLI invocation, unlike the production epoch timestamps.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
