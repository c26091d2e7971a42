package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.AWS.Account = "acme"
	cfg.Environment = "Dev"
	cfg.Output.Bucket = "fleet.ssm.dev"
	return cfg
}

func TestValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("expected no validation errors, got: %v", err)
	}
}

func TestMissingEnvironment(t *testing.T) {
	cfg := validConfig()
	cfg.Environment = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for missing environment")
	}
	if !strings.Contains(err.Error(), "environment") {
		t.Errorf("expected error about environment, got: %v", err)
	}
}

func TestMissingBucket(t *testing.T) {
	cfg := validConfig()
	cfg.Output.Bucket = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for missing bucket")
	}
	if !strings.Contains(err.Error(), "output.bucket") {
		t.Errorf("expected error about output.bucket, got: %v", err)
	}
}

func TestAccountOptionalWithPrefix(t *testing.T) {
	cfg := validConfig()
	cfg.AWS.Account = ""

	if err := cfg.Validate(); err == nil {
		t.Error("expected error when neither account nor prefix is set")
	}

	cfg.Output.Prefix = "reports"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected prefix to satisfy account requirement, got: %v", err)
	}
}

func TestInvalidPolling(t *testing.T) {
	cfg := validConfig()
	cfg.Polling.IntervalSeconds = 0
	cfg.Polling.TimeoutSeconds = -1
	cfg.Polling.MaxAttempts = -3

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors for polling")
	}
	errStr := err.Error()
	for _, field := range []string{"polling.interval_seconds", "polling.timeout_seconds", "polling.max_attempts"} {
		if !strings.Contains(errStr, field) {
			t.Errorf("expected error about %s, got: %v", field, err)
		}
	}
}

func TestDatabaseValidationOnlyWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Host = ""

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected disabled database to skip validation, got: %v", err)
	}

	cfg.Database.Enabled = true
	cfg.Database.TLS = "sometimes"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors for enabled database")
	}
	if !strings.Contains(err.Error(), "database.host") {
		t.Errorf("expected error about database.host, got: %v", err)
	}
	if !strings.Contains(err.Error(), "database.tls") {
		t.Errorf("expected error about database.tls, got: %v", err)
	}
}

func TestInvalidLogging(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors for logging")
	}
	if !strings.Contains(err.Error(), "logging.level") {
		t.Errorf("expected error about logging.level, got: %v", err)
	}
	if !strings.Contains(err.Error(), "logging.format") {
		t.Errorf("expected error about logging.format, got: %v", err)
	}
}

func TestMultipleErrors(t *testing.T) {
	cfg := &Config{}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected multiple validation errors")
	}

	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) < 5 {
		t.Errorf("expected at least 5 errors, got %d", len(verrs))
	}
	if !strings.HasPrefix(err.Error(), "validation failed:") {
		t.Errorf("unexpected error format: %v", err)
	}
}
