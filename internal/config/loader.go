package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	substituteEnvVars(cfg)

	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) {
	cfg.AWS.Account = expandEnvVar(cfg.AWS.Account)
	cfg.AWS.Profile = expandEnvVar(cfg.AWS.Profile)
	cfg.AWS.Region = expandEnvVar(cfg.AWS.Region)

	cfg.Environment = expandEnvVar(cfg.Environment)

	cfg.Output.Bucket = expandEnvVar(cfg.Output.Bucket)
	cfg.Output.Prefix = expandEnvVar(cfg.Output.Prefix)

	cfg.Database.Host = expandEnvVar(cfg.Database.Host)
	cfg.Database.User = expandEnvVar(cfg.Database.User)
	cfg.Database.Password = expandEnvVar(cfg.Database.Password)
	cfg.Database.Database = expandEnvVar(cfg.Database.Database)

	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// Overrides carries CLI flag values layered on top of the config file.
// Zero values leave the file setting untouched.
type Overrides struct {
	LogLevel           string
	LogFormat          string
	Environment        string
	Bucket             string
	Prefix             string
	PollInterval       float64
	PollTimeout        int
	SettleDelaySeconds int
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Logging.Format = o.LogFormat
	}
	if o.Environment != "" {
		c.Environment = o.Environment
	}
	if o.Bucket != "" {
		c.Output.Bucket = o.Bucket
	}
	if o.Prefix != "" {
		c.Output.Prefix = o.Prefix
	}
	if o.PollInterval > 0 {
		c.Polling.IntervalSeconds = o.PollInterval
	}
	if o.PollTimeout > 0 {
		c.Polling.TimeoutSeconds = o.PollTimeout
	}
	if o.SettleDelaySeconds > 0 {
		c.Polling.SettleDelaySeconds = o.SettleDelaySeconds
	}
}

// Interval returns the poll interval as a duration.
func (p PollingConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds * float64(time.Second))
}

// Timeout returns the poll deadline as a duration; zero means unbounded.
func (p PollingConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// SettleDelay returns how long to wait for command output to land in S3.
func (p PollingConfig) SettleDelay() time.Duration {
	return time.Duration(p.SettleDelaySeconds) * time.Second
}
