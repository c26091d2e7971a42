package config

import "testing"

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.AWS.Region != "eu-west-1" {
		t.Errorf("expected default region 'eu-west-1', got %s", cfg.AWS.Region)
	}
	if cfg.Targets.TagKey != "tag:Environment" {
		t.Errorf("expected default tag key 'tag:Environment', got %s", cfg.Targets.TagKey)
	}
	if cfg.SSM.RefreshDocument != "AWS-RefreshAssociation" {
		t.Errorf("expected default refresh document, got %s", cfg.SSM.RefreshDocument)
	}
	if cfg.SSM.BaseParameterKey != "base-version" {
		t.Errorf("expected default base parameter key 'base-version', got %s", cfg.SSM.BaseParameterKey)
	}
	if cfg.Polling.IntervalSeconds != 2 {
		t.Errorf("expected default poll interval 2, got %v", cfg.Polling.IntervalSeconds)
	}
	if cfg.Polling.TimeoutSeconds != 600 {
		t.Errorf("expected default poll timeout 600, got %d", cfg.Polling.TimeoutSeconds)
	}
	if cfg.Database.Enabled {
		t.Error("expected database to be disabled by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level 'info', got %s", cfg.Logging.Level)
	}
}

func TestEffectiveProfile(t *testing.T) {
	aws := AWSConfig{Account: "acme"}
	if got := aws.EffectiveProfile(); got != "acme" {
		t.Errorf("expected profile to fall back to account, got %q", got)
	}

	aws.Profile = "ops"
	if got := aws.EffectiveProfile(); got != "ops" {
		t.Errorf("expected explicit profile 'ops', got %q", got)
	}
}

func TestEffectivePrefix(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AWS.Account = "acme"

	if got := cfg.EffectivePrefix(); got != "acme" {
		t.Errorf("expected prefix to fall back to account, got %q", got)
	}

	cfg.Output.Prefix = "2024-01-02"
	if got := cfg.EffectivePrefix(); got != "2024-01-02" {
		t.Errorf("expected explicit prefix, got %q", got)
	}
}

func TestPollingDurations(t *testing.T) {
	p := PollingConfig{IntervalSeconds: 0.5, TimeoutSeconds: 30, SettleDelaySeconds: 45}

	if p.Interval().Milliseconds() != 500 {
		t.Errorf("expected 500ms interval, got %s", p.Interval())
	}
	if p.Timeout().Seconds() != 30 {
		t.Errorf("expected 30s timeout, got %s", p.Timeout())
	}
	if p.SettleDelay().Seconds() != 45 {
		t.Errorf("expected 45s settle delay, got %s", p.SettleDelay())
	}
}
