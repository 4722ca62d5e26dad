package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// RootEnv names the environment variable that locates the project root.
const RootEnv = "GW_ROOT"

// Config is the top-level configuration for gw.
type Config struct {
	AgentMode bool            `yaml:"agent_mode" json:"agent_mode" mapstructure:"agent_mode"`
	Output    OutputConfig    `yaml:"output" json:"output" mapstructure:"output"`
	Rules     RulesConfig     `yaml:"rules" json:"rules" mapstructure:"rules"`
	Policy    PolicyConfig    `yaml:"policy" json:"policy" mapstructure:"policy"`
	RateLimit RateLimitConfig `yaml:"ratelimit" json:"ratelimit" mapstructure:"ratelimit"`
	GitHub    GitHubConfig    `yaml:"github" json:"github" mapstructure:"github"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging" mapstructure:"logging"`

	// Root is the project root taken from GW_ROOT, if set.
	Root string `yaml:"-" json:"-" mapstructure:"-"`
	// File is the configuration file that was read, if any.
	File string `yaml:"-" json:"-" mapstructure:"-"`
}

// OutputConfig controls result rendering.
type OutputConfig struct {
	JSON bool `yaml:"json" json:"json" mapstructure:"json"`
}

// RulesConfig locates the project rule overlay.
type RulesConfig struct {
	Overlay string `yaml:"overlay" json:"overlay" mapstructure:"overlay"` // default $GW_ROOT/.gw/rules.yaml
}

// PolicyConfig enables Rego extension rules.
type PolicyConfig struct {
	RegoDir string `yaml:"rego_dir" json:"rego_dir" mapstructure:"rego_dir"`
}

// RateLimitConfig controls the advisory GitHub quota check.
type RateLimitConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	Threshold int           `yaml:"threshold" json:"threshold" mapstructure:"threshold"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" mapstructure:"timeout"`
}

// GitHubConfig holds defaults for gh operations.
type GitHubConfig struct {
	Repo string `yaml:"repo" json:"repo" mapstructure:"repo"` // owner/name, passed as --repo
}

// LoggingConfig holds logging preferences.
type LoggingConfig struct {
	Format string `yaml:"format" json:"format" mapstructure:"format"` // text or json
	Level  string `yaml:"level" json:"level" mapstructure:"level"`
}

// RulesOverlayPath returns the overlay file to merge into the built-in
// rule tables, or "" when there is none to look for.
func (c *Config) RulesOverlayPath() string {
	if c.Rules.Overlay != "" {
		if c.Root != "" && !filepath.IsAbs(c.Rules.Overlay) {
			return filepath.Join(c.Root, c.Rules.Overlay)
		}
		return c.Rules.Overlay
	}
	if c.Root != "" {
		return filepath.Join(c.Root, ".gw", "rules.yaml")
	}
	return ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("agent_mode", false)
	v.SetDefault("output.json", false)
	v.SetDefault("rules.overlay", "")
	v.SetDefault("policy.rego_dir", "")
	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.threshold", 100)
	v.SetDefault("ratelimit.timeout", "3s")
	v.SetDefault("github.repo", "")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.level", "info")
}

// bindEnvVars binds nested keys to their GW_ equivalents. GW_JSON is the
// short form users already know for output.json.
func bindEnvVars(v *viper.Viper) {
	bindings := map[string][]string{
		"agent_mode":          {"GW_AGENT_MODE"},
		"output.json":         {"GW_JSON", "GW_OUTPUT_JSON"},
		"rules.overlay":       {"GW_RULES_OVERLAY"},
		"policy.rego_dir":     {"GW_POLICY_REGO_DIR"},
		"ratelimit.enabled":   {"GW_RATELIMIT_ENABLED"},
		"ratelimit.threshold": {"GW_RATELIMIT_THRESHOLD"},
		"ratelimit.timeout":   {"GW_RATELIMIT_TIMEOUT"},
		"github.repo":         {"GW_GITHUB_REPO"},
		"logging.format":      {"GW_LOGGING_FORMAT"},
		"logging.level":       {"GW_LOGGING_LEVEL"},
	}
	for key, envs := range bindings {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
}

// DefaultConfigDir returns the user configuration directory.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gw"), nil
}

// DefaultConfigPath returns the file `gw config init` writes when no path
// is given: the project file under GW_ROOT, or the user file.
func DefaultConfigPath() (string, error) {
	if root := os.Getenv(RootEnv); root != "" {
		return filepath.Join(root, ".gw.yaml"), nil
	}
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads configuration from configPath, or when empty from
// $GW_ROOT/.gw.yaml and then ~/.config/gw/config.yaml. Environment
// variables override file values.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	bindEnvVars(v)

	v.SetEnvPrefix("GW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	root := os.Getenv(RootEnv)

	switch {
	case configPath != "":
		v.SetConfigFile(configPath)
	case root != "" && fileExists(filepath.Join(root, ".gw.yaml")):
		v.SetConfigFile(filepath.Join(root, ".gw.yaml"))
	default:
		dir, err := DefaultConfigDir()
		if err != nil {
			slog.Warn("could not determine home directory", "error", err)
		} else {
			v.AddConfigPath(dir)
			v.SetConfigName("config")
			v.SetConfigType("yaml")
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			if configPath != "" || root != "" {
				return nil, err
			}
			slog.Debug("no config file found, using defaults", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.Root = root
	cfg.File = v.ConfigFileUsed()

	return &cfg, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
