package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate points HOME at an empty directory and clears GW_ variables so
// Load cannot pick up host configuration.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	for _, env := range []string{RootEnv, "GW_JSON", "GW_AGENT_MODE", "GW_GITHUB_REPO", "GW_RATELIMIT_THRESHOLD"} {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("creating dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestDefaultValues(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() with no config file: %v", err)
	}

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"agent_mode", cfg.AgentMode, false},
		{"output.json", cfg.Output.JSON, false},
		{"rules.overlay", cfg.Rules.Overlay, ""},
		{"policy.rego_dir", cfg.Policy.RegoDir, ""},
		{"ratelimit.enabled", cfg.RateLimit.Enabled, true},
		{"ratelimit.threshold", cfg.RateLimit.Threshold, 100},
		{"ratelimit.timeout", cfg.RateLimit.Timeout, 3 * time.Second},
		{"github.repo", cfg.GitHub.Repo, ""},
		{"logging.format", cfg.Logging.Format, "text"},
		{"logging.level", cfg.Logging.Level, "info"},
		{"root", cfg.Root, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("default %s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	isolate(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, cfgPath, `agent_mode: true
output:
  json: true
ratelimit:
  threshold: 250
  timeout: 1500ms
github:
  repo: AutumnsGrove/Lattice
logging:
  format: json
  level: debug
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load(%q): %v", cfgPath, err)
	}
	if !cfg.AgentMode || !cfg.Output.JSON {
		t.Errorf("agent_mode=%v output.json=%v, want true/true", cfg.AgentMode, cfg.Output.JSON)
	}
	if cfg.RateLimit.Threshold != 250 || cfg.RateLimit.Timeout != 1500*time.Millisecond {
		t.Errorf("ratelimit = %+v", cfg.RateLimit)
	}
	if cfg.GitHub.Repo != "AutumnsGrove/Lattice" {
		t.Errorf("github.repo = %q", cfg.GitHub.Repo)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.File != cfgPath {
		t.Errorf("File = %q, want %q", cfg.File, cfgPath)
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for explicitly requested missing file")
	}
}

func TestLoadFromProjectRoot(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".gw.yaml"), "github:\n  repo: acme/widgets\n")
	t.Setenv(RootEnv, root)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GitHub.Repo != "acme/widgets" {
		t.Errorf("github.repo = %q, want acme/widgets", cfg.GitHub.Repo)
	}
	if cfg.Root != root {
		t.Errorf("Root = %q, want %q", cfg.Root, root)
	}
	if got, want := cfg.RulesOverlayPath(), filepath.Join(root, ".gw", "rules.yaml"); got != want {
		t.Errorf("RulesOverlayPath() = %q, want %q", got, want)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("GW_JSON", "1")
	t.Setenv("GW_AGENT_MODE", "true")
	t.Setenv("GW_RATELIMIT_THRESHOLD", "5")
	t.Setenv("GW_GITHUB_REPO", "octo/cat")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Output.JSON {
		t.Error("GW_JSON=1 should enable output.json")
	}
	if !cfg.AgentMode {
		t.Error("GW_AGENT_MODE=true should enable agent_mode")
	}
	if cfg.RateLimit.Threshold != 5 {
		t.Errorf("threshold = %d, want 5", cfg.RateLimit.Threshold)
	}
	if cfg.GitHub.Repo != "octo/cat" {
		t.Errorf("github.repo = %q", cfg.GitHub.Repo)
	}
}

func TestRulesOverlayPath(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"nothing", Config{}, ""},
		{"root only", Config{Root: "/repo"}, "/repo/.gw/rules.yaml"},
		{"relative overlay under root", Config{Root: "/repo", Rules: RulesConfig{Overlay: "policy/rules.yaml"}}, "/repo/policy/rules.yaml"},
		{"absolute overlay", Config{Root: "/repo", Rules: RulesConfig{Overlay: "/etc/gw/rules.yaml"}}, "/etc/gw/rules.yaml"},
		{"relative overlay without root", Config{Rules: RulesConfig{Overlay: "rules.yaml"}}, "rules.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.RulesOverlayPath(); got != filepath.FromSlash(tt.want) {
				t.Errorf("RulesOverlayPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteTemplate(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	got, err := WriteTemplate("default", path, false)
	if err != nil {
		t.Fatalf("WriteTemplate: %v", err)
	}
	if got != path {
		t.Errorf("path = %q, want %q", got, path)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("written template does not load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("written template does not validate: %v", err)
	}

	if _, err := WriteTemplate("agent", path, false); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second write without force: err = %v", err)
	}
	if _, err := WriteTemplate("agent", path, true); err != nil {
		t.Fatalf("forced write: %v", err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load agent template: %v", err)
	}
	if !cfg.AgentMode || !cfg.Output.JSON {
		t.Errorf("agent template: agent_mode=%v json=%v", cfg.AgentMode, cfg.Output.JSON)
	}
}

func TestWriteTemplateDefaultsToProjectRoot(t *testing.T) {
	isolate(t)
	root := t.TempDir()
	t.Setenv(RootEnv, root)

	got, err := WriteTemplate("default", "", false)
	if err != nil {
		t.Fatalf("WriteTemplate: %v", err)
	}
	if want := filepath.Join(root, ".gw.yaml"); got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestGetTemplateUnknown(t *testing.T) {
	if _, err := GetTemplate("enterprise"); err == nil {
		t.Fatal("expected error for unknown template")
	}
}
