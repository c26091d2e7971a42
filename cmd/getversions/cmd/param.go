package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var paramCmd = &cobra.Command{
	Use:   "param [NAME]",
	Short: "Print a Parameter Store value",
	Long: `Param prints a plain Parameter Store value, by default the base version
parameter every instance is compared against.

Example:
  getversions param
  getversions param base-version`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParam,
}

func init() {
	rootCmd.AddCommand(paramCmd)
}

func runParam(cmd *cobra.Command, args []string) error {
	a, err := newApp(context.Background())
	if err != nil {
		return err
	}
	defer a.Close()

	name := a.cfg.SSM.BaseParameterKey
	if len(args) == 1 {
		name = args[0]
	}

	ctx, cancel := signalContext(context.Background(), a.log)
	defer cancel()

	deps, err := depsFactory(ctx, a.cfg, a.log)
	if err != nil {
		return err
	}

	value, err := deps.Fleet.GetParameter(ctx, name)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Parameter %s has value %s\n", name, value)
	return nil
}
