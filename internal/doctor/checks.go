package doctor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AutumnsGrove/gw/internal/config"
	"github.com/AutumnsGrove/gw/internal/exec"
	"github.com/AutumnsGrove/gw/internal/gitrepo"
	"github.com/AutumnsGrove/gw/internal/policy"
	"github.com/AutumnsGrove/gw/internal/ratelimit"
)

// CheckResult represents the outcome of a single diagnostic check.
type CheckResult struct {
	Name        string `json:"name"`
	Status      string `json:"status"` // pass, fail, warn
	Message     string `json:"message"`
	Remediation string `json:"remediation,omitempty"`
}

// Report is a collection of check results.
type Report struct {
	Results []CheckResult `json:"results"`
}

// HasFailures returns true if any check failed.
func (r *Report) HasFailures() bool {
	for _, c := range r.Results {
		if c.Status == "fail" {
			return true
		}
	}
	return false
}

// Count returns the number of results with the given status.
func (r *Report) Count(status string) int {
	n := 0
	for _, c := range r.Results {
		if c.Status == status {
			n++
		}
	}
	return n
}

// JSON returns the report as formatted JSON.
func (r *Report) JSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Env is what the checks inspect.
type Env struct {
	Config  *config.Config
	Runner  exec.Runner
	Dir     string
	Fetcher ratelimit.Fetcher
}

// RunAll executes all diagnostic checks and returns a report.
func RunAll(ctx context.Context, env Env) *Report {
	checks := []func() CheckResult{
		func() CheckResult {
			return CheckTool(ctx, env.Runner, "git", true, "install git from https://git-scm.com")
		},
		func() CheckResult {
			return CheckTool(ctx, env.Runner, "gh", false, "install the GitHub CLI from https://cli.github.com")
		},
		func() CheckResult { return CheckGHAuth(ctx, env.Runner) },
		func() CheckResult { return CheckWrangler(ctx, env.Runner) },
		func() CheckResult {
			return CheckTool(ctx, env.Runner, "npx", false, "install Node.js to use gw fmt, gw lint and gw publish")
		},
		func() CheckResult { return CheckConfig(env.Config) },
		func() CheckResult { return CheckRules(env.Config) },
	}

	if env.Config != nil && env.Config.Policy.RegoDir != "" {
		checks = append(checks, func() CheckResult { return CheckRego(ctx, env.Config.Policy.RegoDir) })
	}

	checks = append(checks, func() CheckResult { return CheckRepository(env.Dir) })

	if env.Config != nil && env.Config.RateLimit.Enabled && env.Fetcher != nil {
		checks = append(checks, func() CheckResult {
			return CheckRateLimit(ctx, env.Fetcher, env.Config.RateLimit.Threshold)
		})
	}

	report := &Report{}
	for _, check := range checks {
		report.Results = append(report.Results, check())
	}
	return report
}

// CheckTool verifies that name is installed. A missing required tool
// fails; a missing optional tool warns.
func CheckTool(ctx context.Context, r exec.Runner, name string, required bool, remediation string) CheckResult {
	result := CheckResult{Name: name}

	info, err := exec.Detect(ctx, r, name)
	if err != nil {
		result.Status = "warn"
		if required {
			result.Status = "fail"
		}
		result.Message = err.Error()
		result.Remediation = remediation
		return result
	}

	result.Status = "pass"
	result.Message = info.Version
	return result
}

// CheckGHAuth verifies the GitHub CLI is logged in.
func CheckGHAuth(ctx context.Context, r exec.Runner) CheckResult {
	result := CheckResult{Name: "gh auth"}

	if _, ok := exec.Which("gh"); !ok {
		result.Status = "warn"
		result.Message = "gh not installed, skipping"
		return result
	}

	res, err := r.Run(ctx, exec.Cmd{Name: "gh", Args: []string{"auth", "status"}})
	if err != nil || !res.OK() {
		result.Status = "warn"
		result.Message = "not authenticated"
		result.Remediation = "run 'gh auth login'"
		return result
	}

	result.Status = "pass"
	result.Message = "authenticated"
	return result
}

// CheckWrangler verifies wrangler is reachable directly or through npx.
func CheckWrangler(ctx context.Context, r exec.Runner) CheckResult {
	result := CheckResult{Name: "wrangler"}

	if info, err := exec.Detect(ctx, r, "wrangler"); err == nil {
		result.Status = "pass"
		result.Message = info.Version
		return result
	}
	if _, ok := exec.Which("npx"); ok {
		result.Status = "pass"
		result.Message = "available through npx"
		return result
	}

	result.Status = "warn"
	result.Message = "wrangler not found"
	result.Remediation = "install with 'npm install -g wrangler' to use gw deploy, secret, kv and r2"
	return result
}

// CheckConfig reports which configuration file is in use and whether it
// validates.
func CheckConfig(cfg *config.Config) CheckResult {
	result := CheckResult{Name: "config"}

	if cfg == nil {
		result.Status = "fail"
		result.Message = "configuration not loaded"
		return result
	}
	if err := cfg.Validate(); err != nil {
		result.Status = "fail"
		result.Message = err.Error()
		result.Remediation = "fix the values above in " + orDefault(cfg.File, "your config file")
		return result
	}
	if cfg.File == "" {
		result.Status = "warn"
		result.Message = "no config file, using defaults"
		result.Remediation = "run 'gw config init'"
		return result
	}

	result.Status = "pass"
	result.Message = cfg.File
	return result
}

// CheckRules verifies that the built-in rule tables and any overlay load.
func CheckRules(cfg *config.Config) CheckResult {
	result := CheckResult{Name: "rule tables"}

	overlay := ""
	if cfg != nil {
		overlay = cfg.RulesOverlayPath()
	}

	rs, err := policy.Load(overlay)
	if err != nil {
		result.Status = "fail"
		result.Message = err.Error()
		result.Remediation = "run 'gw rules validate " + orDefault(overlay, "<overlay>") + "' for details"
		return result
	}

	result.Status = "pass"
	result.Message = fmt.Sprintf("%d families", len(rs.Families))
	if overlay != "" {
		result.Message += ", overlay " + overlay
	}
	return result
}

// CheckRego verifies that the Rego extension modules compile.
func CheckRego(ctx context.Context, dir string) CheckResult {
	result := CheckResult{Name: "rego extension"}

	if _, err := policy.NewRegoExtension(ctx, dir); err != nil {
		result.Status = "fail"
		result.Message = err.Error()
		result.Remediation = "fix the modules in " + dir + " or unset policy.rego_dir"
		return result
	}

	result.Status = "pass"
	result.Message = dir
	return result
}

// CheckRepository reports the enclosing git repository and branch.
func CheckRepository(dir string) CheckResult {
	result := CheckResult{Name: "repository"}

	repo, err := gitrepo.Open(dir)
	if err != nil {
		result.Status = "warn"
		if errors.Is(err, gitrepo.ErrNotRepository) {
			result.Message = "not inside a git repository"
		} else {
			result.Message = err.Error()
		}
		return result
	}

	branch, err := repo.CurrentBranch()
	if err != nil {
		result.Status = "warn"
		result.Message = err.Error()
		return result
	}

	result.Status = "pass"
	result.Message = "on branch " + orDefault(branch, "(detached HEAD)")
	return result
}

// CheckRateLimit reports the remaining GitHub API quota.
func CheckRateLimit(ctx context.Context, f ratelimit.Fetcher, threshold int) CheckResult {
	result := CheckResult{Name: "GitHub rate limit"}

	ctx, cancel := context.WithTimeout(ctx, ratelimit.DefaultTimeout)
	defer cancel()

	snap, err := f.Fetch(ctx)
	if err != nil {
		result.Status = "warn"
		result.Message = "could not read rate limit: " + firstLine(err.Error())
		return result
	}

	result.Message = fmt.Sprintf("%d/%d requests remaining", snap.Remaining, snap.Limit)
	if snap.Remaining < threshold {
		result.Status = "warn"
		result.Remediation = "wait for the quota to reset at " + snap.Reset.Format("15:04")
		return result
	}
	result.Status = "pass"
	return result
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
