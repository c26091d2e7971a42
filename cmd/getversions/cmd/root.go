package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/getversions/internal/config"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile            string
	logLevel           string
	logFormat          string
	environment        string
	bucket             string
	prefix             string
	pollInterval       float64
	pollTimeout        int
	settleDelaySeconds int
	outputFormat       string
)

var rootCmd = &cobra.Command{
	Use:   "getversions",
	Short: "Fleet version reporting over AWS Systems Manager",
	Long: `getversions asks every instance in an environment to report its version
through AWS Systems Manager, then correlates the command output written to S3
to find the latest report per instance.

Features:
  - Association refresh with optional output relocation
  - Latest-wins correlation of S3 output, per run or across runs
  - Comparison against a base version held in Parameter Store
  - Optional MySQL report history with an HTTP read API`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "getversions.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Target overrides
	rootCmd.PersistentFlags().StringVarP(&environment, "environment", "e", "",
		"Override target environment (tag value)")
	rootCmd.PersistentFlags().StringVar(&bucket, "bucket", "",
		"Override S3 output bucket")
	rootCmd.PersistentFlags().StringVar(&prefix, "prefix", "",
		"Override S3 output key prefix")

	// Timing overrides
	rootCmd.PersistentFlags().Float64Var(&pollInterval, "poll-interval", 0,
		"Override poll interval in seconds")
	rootCmd.PersistentFlags().IntVar(&pollTimeout, "poll-timeout", 0,
		"Override poll deadline in seconds")
	rootCmd.PersistentFlags().IntVar(&settleDelaySeconds, "settle-delay", 0,
		"Override seconds to wait for command output to reach S3")

	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text",
		"Report format (text, json, yaml)")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() config.Overrides {
	return config.Overrides{
		LogLevel:           logLevel,
		LogFormat:          logFormat,
		Environment:        environment,
		Bucket:             bucket,
		Prefix:             prefix,
		PollInterval:       pollInterval,
		PollTimeout:        pollTimeout,
		SettleDelaySeconds: settleDelaySeconds,
	}
}
