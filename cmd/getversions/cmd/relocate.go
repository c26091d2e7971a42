package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/getversions/internal/collector"
)

var relocateForce bool

var relocateCmd = &cobra.Command{
	Use:   "relocate PREFIX",
	Short: "Move the association's S3 output under a new prefix",
	Long: `Relocate updates the output prefix of the environment's association and
waits until the association reports Success again. Like refresh and daily it
holds the environment lock while doing so when the report database is enabled.

Example:
  getversions relocate 2024-01-02 --environment Dev`,
	Args: cobra.ExactArgs(1),
	RunE: runRelocate,
}

func init() {
	relocateCmd.Flags().BoolVar(&relocateForce, "force", false,
		"Run even if the environment lock cannot be acquired (use with caution)")

	rootCmd.AddCommand(relocateCmd)
}

func runRelocate(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext(context.Background(), a.log)
	defer cancel()

	c, err := a.collector(ctx)
	if err != nil {
		return err
	}

	id, err := a.relocate(ctx, c, args[0], relocateForce)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Association %s now writes to s3://%s/%s\n", id, a.cfg.Output.Bucket, args[0])
	return nil
}

// relocate moves the environment's association output under prefix while
// holding the environment lock.
func (a *app) relocate(ctx context.Context, c *collector.Collector, prefix string, force bool) (string, error) {
	var id string
	err := a.withEnvironmentLock(ctx, force, func() error {
		var err error
		id, err = c.RelocateEnvironment(ctx, prefix)
		return err
	})
	return id, err
}
