package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var validateSkipAWS bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and run preflight checks",
	Long: `Validate checks the configuration file and the collaborators a run depends on.

Checks performed:
  - Configuration syntax and required fields
  - Report database connectivity (when enabled)
  - Association lookup for the environment

Example:
  getversions validate --config getversions.yaml`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateSkipAWS, "skip-aws", false,
		"Only check configuration and database")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintf(out, "\n=== Configuration Validation ===\n")
	fmt.Fprintf(out, "Config file: %s\n", GetConfigFile())
	fmt.Fprintf(out, "Environment: %s (%s)\n", a.cfg.Environment, a.cfg.Targets.TagKey)
	fmt.Fprintf(out, "Output: s3://%s/%s\n", a.cfg.Output.Bucket, a.cfg.EffectivePrefix())

	ctx, cancel := signalContext(context.Background(), a.log)
	defer cancel()

	if a.db != nil {
		if err := a.db.Ping(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Report database: reachable")
	}

	if !validateSkipAWS {
		c, err := a.collector(ctx)
		if err != nil {
			return err
		}
		id, err := c.AssociationID(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Association: %s\n", id)
	}

	fmt.Fprintln(out, "=== Validation Complete ===")
	return nil
}
