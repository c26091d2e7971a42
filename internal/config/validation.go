package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateAWS()...)

	if c.Environment == "" {
		errors = append(errors, ValidationError{
			Field:   "environment",
			Message: "environment is required",
		})
	}

	if c.Targets.TagKey == "" {
		errors = append(errors, ValidationError{
			Field:   "targets.tag_key",
			Message: "tag_key is required",
		})
	}

	errors = append(errors, c.validateSSM()...)

	if c.Output.Bucket == "" {
		errors = append(errors, ValidationError{
			Field:   "output.bucket",
			Message: "bucket is required",
		})
	}

	errors = append(errors, c.validatePolling()...)
	errors = append(errors, c.validateFetch()...)

	if c.Database.Enabled {
		errors = append(errors, c.validateDatabase()...)
	}

	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateAWS() ValidationErrors {
	var errors ValidationErrors

	if c.AWS.Region == "" {
		errors = append(errors, ValidationError{
			Field:   "aws.region",
			Message: "region is required",
		})
	}

	if c.AWS.Account == "" && c.Output.Prefix == "" {
		errors = append(errors, ValidationError{
			Field:   "aws.account",
			Message: "account is required when output.prefix is not set",
		})
	}

	return errors
}

func (c *Config) validateSSM() ValidationErrors {
	var errors ValidationErrors

	if c.SSM.Document == "" {
		errors = append(errors, ValidationError{
			Field:   "ssm.document",
			Message: "document is required",
		})
	}

	if c.SSM.AssociationDocument == "" {
		errors = append(errors, ValidationError{
			Field:   "ssm.association_document",
			Message: "association_document is required",
		})
	}

	if c.SSM.RefreshDocument == "" {
		errors = append(errors, ValidationError{
			Field:   "ssm.refresh_document",
			Message: "refresh_document is required",
		})
	}

	return errors
}

func (c *Config) validatePolling() ValidationErrors {
	var errors ValidationErrors

	if c.Polling.IntervalSeconds <= 0 {
		errors = append(errors, ValidationError{
			Field:   "polling.interval_seconds",
			Message: "interval_seconds must be positive",
		})
	}

	if c.Polling.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "polling.timeout_seconds",
			Message: "timeout_seconds cannot be negative",
		})
	}

	if c.Polling.MaxAttempts < 0 {
		errors = append(errors, ValidationError{
			Field:   "polling.max_attempts",
			Message: "max_attempts cannot be negative",
		})
	}

	if c.Polling.SettleDelaySeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "polling.settle_delay_seconds",
			Message: "settle_delay_seconds cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateFetch() ValidationErrors {
	var errors ValidationErrors

	if c.Fetch.RatePerSecond < 0 {
		errors = append(errors, ValidationError{
			Field:   "fetch.rate_per_second",
			Message: "rate_per_second cannot be negative",
		})
	}

	if c.Fetch.Burst < 0 {
		errors = append(errors, ValidationError{
			Field:   "fetch.burst",
			Message: "burst cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateDatabase() ValidationErrors {
	var errors ValidationErrors
	db := &c.Database

	if db.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "database.host",
			Message: "host is required when database is enabled",
		})
	}

	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "database.port",
			Message: "port must be between 1 and 65535",
		})
	}

	if db.User == "" {
		errors = append(errors, ValidationError{
			Field:   "database.user",
			Message: "user is required when database is enabled",
		})
	}

	if db.Database == "" {
		errors = append(errors, ValidationError{
			Field:   "database.database",
			Message: "database name is required",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   "database.tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
