package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/getversions/internal/collector"
	"github.com/dbsmedya/getversions/internal/report"
)

var (
	dailyDate  string
	dailyForce bool
)

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Refresh into a dated output prefix and report versions",
	Long: `Daily moves the association's S3 output under a YYYY-MM-DD prefix, refreshes
the association and reports only from that day's prefix. Dated prefixes keep
each listing small without relying on bucket lifecycle rules.

Example:
  getversions daily --environment Dev --date 2024-01-02`,
	RunE: runDaily,
}

func init() {
	dailyCmd.Flags().StringVar(&dailyDate, "date", "",
		"Day to write under, YYYY-MM-DD (default today, UTC)")
	dailyCmd.Flags().BoolVar(&dailyForce, "force", false,
		"Run even if the environment lock cannot be acquired (use with caution)")

	rootCmd.AddCommand(dailyCmd)
}

func parseDay(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now.UTC(), nil
	}
	day, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return day, nil
}

func runDaily(cmd *cobra.Command, args []string) error {
	day, err := parseDay(dailyDate, time.Now())
	if err != nil {
		return err
	}

	return runCollection(cmd.OutOrStdout(), true, dailyForce,
		func(ctx context.Context, c *collector.Collector) (*report.Report, error) {
			return c.Daily(ctx, day)
		})
}
