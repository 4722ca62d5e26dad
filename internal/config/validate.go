package config

import (
	"fmt"
	"regexp"
	"strings"
)

// repoPattern matches an owner/name GitHub repository reference.
var repoPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*/[A-Za-z0-9._-]+$`)

// Validate checks the configuration for invalid values and returns a
// descriptive error if any field is incorrect.
func (c *Config) Validate() error {
	var errs []string

	if c.RateLimit.Threshold < 0 {
		errs = append(errs, fmt.Sprintf("ratelimit.threshold must be >= 0, got %d", c.RateLimit.Threshold))
	}
	if c.RateLimit.Enabled && c.RateLimit.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("ratelimit.timeout must be positive when ratelimit is enabled, got %s", c.RateLimit.Timeout))
	}

	if c.GitHub.Repo != "" && !repoPattern.MatchString(c.GitHub.Repo) {
		errs = append(errs, fmt.Sprintf("invalid github.repo %q: use owner/name", c.GitHub.Repo))
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("invalid logging.format %q: must be \"text\" or \"json\"", c.Logging.Format))
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("invalid logging.level %q: must be debug, info, warn, or error", c.Logging.Level))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
