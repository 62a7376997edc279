// ABOUTME: Cobra root command wiring persistent flags shared by run/connect/manifest (§6.6)
// ABOUTME: Grounded on the pack's multi-command Cobra usage rather than the teacher's flat flag-based CLI

package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nullstream/acp-go/internal/acplog"
)

var (
	flagVerbose  bool
	flagTiming   bool
	flagBatching bool
	flagBatchMs  int
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "acphost",
		Short:         "Drive an ACP agent from the command line",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flagVerbose {
				acplog.SetLevel(slog.LevelDebug)
			}
		},
	}

	root.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "enable debug-level logging (individual frames are not logged)")
	root.PersistentFlags().BoolVar(&flagTiming, "timing", false, "emit structured timing metrics (ACP_TIMING)")
	root.PersistentFlags().BoolVar(&flagBatching, "batching", true, "coalesce streaming updates into batches (ACP_BATCHING)")
	root.PersistentFlags().IntVar(&flagBatchMs, "batch-ms", 50, "update batch window in milliseconds (ACP_BATCH_MS)")

	root.AddCommand(newRunCmd())
	root.AddCommand(newConnectCmd())
	root.AddCommand(newManifestCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		acplog.Error("acphost: %v", err)
		os.Exit(1)
	}
}
