// Package config provides configuration structures and loading for getversions.
package config

// Config represents the complete application configuration.
type Config struct {
	AWS         AWSConfig      `yaml:"aws" mapstructure:"aws"`
	Environment string         `yaml:"environment" mapstructure:"environment"`
	Targets     TargetConfig   `yaml:"targets" mapstructure:"targets"`
	SSM         SSMConfig      `yaml:"ssm" mapstructure:"ssm"`
	Output      OutputConfig   `yaml:"output" mapstructure:"output"`
	Polling     PollingConfig  `yaml:"polling" mapstructure:"polling"`
	Fetch       FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Database    DatabaseConfig `yaml:"database" mapstructure:"database"`
	Server      ServerConfig   `yaml:"server" mapstructure:"server"`
	Logging     LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// AWSConfig selects the account, credentials profile and region used for
// every AWS client.
type AWSConfig struct {
	Account string `yaml:"account" mapstructure:"account"`
	Profile string `yaml:"profile" mapstructure:"profile"` // defaults to the account name
	Region  string `yaml:"region" mapstructure:"region"`
}

// TargetConfig describes how instances are selected for dispatch.
type TargetConfig struct {
	TagKey string `yaml:"tag_key" mapstructure:"tag_key"` // e.g. tag:Environment
}

// SSMConfig names the Systems Manager documents and parameters used.
type SSMConfig struct {
	Document            string `yaml:"document" mapstructure:"document"`
	AssociationDocument string `yaml:"association_document" mapstructure:"association_document"`
	RefreshDocument     string `yaml:"refresh_document" mapstructure:"refresh_document"`
	Comment             string `yaml:"comment" mapstructure:"comment"`
	BaseParameterKey    string `yaml:"base_parameter_key" mapstructure:"base_parameter_key"`
}

// OutputConfig is the S3 location command output is written to.
type OutputConfig struct {
	Bucket string `yaml:"bucket" mapstructure:"bucket"`
	Prefix string `yaml:"prefix" mapstructure:"prefix"` // defaults to the account name
}

// PollingConfig bounds every wait on asynchronous AWS state.
type PollingConfig struct {
	IntervalSeconds    float64 `yaml:"interval_seconds" mapstructure:"interval_seconds"`
	TimeoutSeconds     int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"` // 0 = no deadline
	MaxAttempts        int     `yaml:"max_attempts" mapstructure:"max_attempts"`       // 0 = unlimited
	SettleDelaySeconds int     `yaml:"settle_delay_seconds" mapstructure:"settle_delay_seconds"`
}

// FetchConfig paces S3 GetObject calls.
type FetchConfig struct {
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	Burst         int     `yaml:"burst" mapstructure:"burst"`
}

// DatabaseConfig represents the optional MySQL report store.
type DatabaseConfig struct {
	Enabled            bool   `yaml:"enabled" mapstructure:"enabled"`
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// ServerConfig configures the HTTP read API.
type ServerConfig struct {
	Listen string `yaml:"listen" mapstructure:"listen"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		AWS: AWSConfig{
			Region: "eu-west-1",
		},
		Targets: TargetConfig{
			TagKey: "tag:Environment",
		},
		SSM: SSMConfig{
			Document:            "get_versions",
			AssociationDocument: "get_versions",
			RefreshDocument:     "AWS-RefreshAssociation",
			Comment:             "Get version of Amazon Linux fleet",
			BaseParameterKey:    "base-version",
		},
		Polling: PollingConfig{
			IntervalSeconds:    2,
			TimeoutSeconds:     600,
			MaxAttempts:        0,
			SettleDelaySeconds: 60,
		},
		Fetch: FetchConfig{
			RatePerSecond: 20,
			Burst:         5,
		},
		Database: DatabaseConfig{
			Enabled:            false,
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     5,
			MaxIdleConnections: 2,
		},
		Server: ServerConfig{
			Listen: ":8080",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// EffectiveProfile returns the credentials profile, falling back to the account.
func (a AWSConfig) EffectiveProfile() string {
	if a.Profile != "" {
		return a.Profile
	}
	return a.Account
}

// EffectivePrefix returns the output key prefix, falling back to the account.
func (c *Config) EffectivePrefix() string {
	if c.Output.Prefix != "" {
		return c.Output.Prefix
	}
	return c.AWS.Account
}
