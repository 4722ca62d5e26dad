package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		RateLimit: RateLimitConfig{Enabled: true, Threshold: 100, Timeout: 3 * time.Second},
		Logging:   LoggingConfig{Format: "text", Level: "info"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"negative threshold", func(c *Config) { c.RateLimit.Threshold = -1 }, "ratelimit.threshold"},
		{"zero timeout when enabled", func(c *Config) { c.RateLimit.Timeout = 0 }, "ratelimit.timeout"},
		{"zero timeout when disabled", func(c *Config) { c.RateLimit.Enabled = false; c.RateLimit.Timeout = 0 }, ""},
		{"good repo", func(c *Config) { c.GitHub.Repo = "AutumnsGrove/GroveEngine" }, ""},
		{"bad repo", func(c *Config) { c.GitHub.Repo = "just-a-name" }, "github.repo"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"upper-case level", func(c *Config) { c.Logging.Level = "DEBUG" }, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	cfg.Logging.Level = "trace"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "logging.format") || !strings.Contains(err.Error(), "logging.level") {
		t.Errorf("error should list both problems: %v", err)
	}
}
