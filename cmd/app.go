package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/AutumnsGrove/gw/internal/exec"
	"github.com/AutumnsGrove/gw/internal/output"
	"github.com/AutumnsGrove/gw/internal/policy"
	"github.com/AutumnsGrove/gw/internal/ratelimit"
	"github.com/AutumnsGrove/gw/internal/safety"
	"github.com/AutumnsGrove/gw/internal/wrap"
	"github.com/spf13/cobra"
)

// writeFlag is shared by every state-changing command.
var writeFlag bool

func addWriteFlag(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().BoolVar(&writeFlag, "write", false, "confirm this state-changing operation")
	}
}

func newPrinter() *output.Printer {
	return output.New(jsonOutput || (Cfg != nil && Cfg.Output.JSON))
}

// buildGate assembles the interception gate from the built-in tables, the
// project overlay and any Rego extension. A broken overlay or extension
// never disables the built-in tables.
func buildGate(ctx context.Context) *policy.Gate {
	overlay := ""
	if Cfg != nil {
		overlay = Cfg.RulesOverlayPath()
	}

	rs, err := policy.Load(overlay)
	if err != nil {
		slog.Warn("rule overlay rejected, using built-in rules", "overlay", overlay, "error", err)
		rs = policy.Default()
	}

	var opts []policy.Option
	if Cfg != nil && Cfg.Policy.RegoDir != "" {
		ext, err := policy.NewRegoExtension(ctx, Cfg.Policy.RegoDir)
		if err != nil {
			slog.Warn("rego extension disabled", "dir", Cfg.Policy.RegoDir, "error", err)
		} else {
			opts = append(opts, policy.WithExtension(ext))
		}
	}

	return policy.NewGate(policy.NewClassifier(rs, opts...))
}

// newService wires the wrapper: the safety gate asks for confirmation on
// stderr only when a human is attached and output is not JSON.
func newService(p *output.Printer) *wrap.Service {
	det := safety.Detector{AgentMode: Cfg.AgentMode}
	interactive := func() bool { return !p.JSON && det.Interactive() }
	gate := safety.NewGate(safety.DefaultTiers(), interactive, safety.PromptConfirmer{In: os.Stdin, Out: os.Stderr})

	runner := exec.CommandRunner{}

	var monitor *ratelimit.Monitor
	if Cfg.RateLimit.Enabled {
		monitor = ratelimit.NewMonitor(ratelimit.GHFetcher{Runner: runner}, Cfg.RateLimit.Threshold, Cfg.RateLimit.Timeout)
	}

	dir, err := os.Getwd()
	if err != nil {
		dir = ""
	}
	return wrap.NewService(runner, gate, monitor, dir)
}

func githubBuilder() wrap.GitHub {
	return wrap.GitHub{Repo: Cfg.GitHub.Repo}
}

// failureRecord is emitted in JSON mode when an operation does not run.
type failureRecord struct {
	Operation  string `json:"operation"`
	Tier       string `json:"tier,omitempty"`
	Error      string `json:"error"`
	Suggestion string `json:"suggestion,omitempty"`
}

// runOp executes op and reports the result.
func runOp(cmd *cobra.Command, op wrap.Op, err error) error {
	if err != nil {
		return err
	}

	p := newPrinter()
	out, err := newService(p).Execute(cmd.Context(), op, writeFlag)
	return report(p, out, err)
}

// report prints an operation's outcome, or the safety error that kept it
// from running, and returns the error main should exit with.
func report(p *output.Printer, out *wrap.Outcome, err error) error {
	var se *safety.Error
	if errors.As(err, &se) {
		rec := failureRecord{Operation: se.Operation, Tier: se.Tier.String(), Error: se.Message, Suggestion: se.Suggestion}
		if rerr := p.Record(rec, nil); rerr != nil {
			return fmt.Errorf("writing result: %w", rerr)
		}
		p.Error("Safety check failed: %s", se.Message)
		p.Warn("%s", se.Suggestion)
		return errReported
	}
	if out == nil {
		return err
	}

	if out.Aborted {
		return p.Record(out, func(w io.Writer) error {
			_, werr := io.WriteString(w, output.Dim("Aborted")+"\n")
			return werr
		})
	}

	if out.Warning != "" {
		p.Warn("%s", out.Warning)
	}
	if rerr := p.Record(out, nil); rerr != nil {
		return fmt.Errorf("writing result: %w", rerr)
	}
	p.Text(out.Stdout)
	if !p.JSON && out.Stderr != "" {
		fmt.Fprint(p.Err, out.Stderr)
	}
	return err
}
