package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/getversions/internal/collector"
	"github.com/dbsmedya/getversions/internal/report"
)

var commandInstances []string

var commandCmd = &cobra.Command{
	Use:   "command",
	Short: "Send the version document ad hoc and report invocation output",
	Long: `Command sends the version document directly, without an association, to the
environment's instances (or to --instance ids), waits until no invocation is
pending and reports each instance's output from the invocation API.

Example:
  getversions command --environment Dev
  getversions command --instance i-0123456789abcdef0`,
	RunE: runCommand,
}

func init() {
	commandCmd.Flags().StringSliceVar(&commandInstances, "instance", nil,
		"Target these instance ids instead of the environment tag")

	rootCmd.AddCommand(commandCmd)
}

func runCommand(cmd *cobra.Command, args []string) error {
	return runCollection(cmd.OutOrStdout(), false, false,
		func(ctx context.Context, c *collector.Collector) (*report.Report, error) {
			return c.Command(ctx, commandInstances)
		})
}
