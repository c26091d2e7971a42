package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/getversions/internal/collector"
	"github.com/dbsmedya/getversions/internal/report"
)

var (
	refreshRelocate bool
	refreshForce    bool
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the environment's association and report versions",
	Long: `Refresh re-applies the version association to every instance in the
environment and reports the latest output of that association per instance.

The refresh process follows these steps:
  1. Find the association targeting the environment tag
  2. Optionally reset its S3 output prefix and wait for Success
  3. Send AWS-RefreshAssociation to the environment
  4. Wait for output to settle in S3
  5. Correlate the latest stdout object per instance and read it
  6. Compare each value with the base version parameter

Example:
  getversions refresh --config getversions.yaml --environment Dev`,
	RunE: runRefresh,
}

func init() {
	refreshCmd.Flags().BoolVar(&refreshRelocate, "relocate", false,
		"Reset the association output prefix before refreshing")
	refreshCmd.Flags().BoolVar(&refreshForce, "force", false,
		"Run even if the environment lock cannot be acquired (use with caution)")

	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	return runCollection(cmd.OutOrStdout(), true, refreshForce,
		func(ctx context.Context, c *collector.Collector) (*report.Report, error) {
			return c.Refresh(ctx, collector.RefreshOptions{Relocate: refreshRelocate})
		})
}
