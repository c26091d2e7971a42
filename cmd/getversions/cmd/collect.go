package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/getversions/internal/collector"
	"github.com/dbsmedya/getversions/internal/report"
)

var (
	collectRunID  string
	collectGlobal bool
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Report versions from output already in S3",
	Long: `Collect correlates output already in the bucket without dispatching anything.
With --run-id only objects written by that association or command count;
with --global the latest object per instance wins regardless of run.

Example:
  getversions collect --run-id 8d4e2c1b-0000-4000-8000-000000000000
  getversions collect --global --output json`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().StringVar(&collectRunID, "run-id", "",
		"Association or command id to correlate")
	collectCmd.Flags().BoolVar(&collectGlobal, "global", false,
		"Correlate across all runs")
	collectCmd.MarkFlagsMutuallyExclusive("run-id", "global")
	collectCmd.MarkFlagsOneRequired("run-id", "global")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	runID := collectRunID
	if collectGlobal {
		runID = ""
	}

	return runCollection(cmd.OutOrStdout(), false, false,
		func(ctx context.Context, c *collector.Collector) (*report.Report, error) {
			return c.Collect(ctx, runID)
		})
}
