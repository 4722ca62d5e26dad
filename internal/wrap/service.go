// Package wrap implements the gw wrapper operations: every operation is
// checked against its safety tier before anything runs, GitHub mutations
// carry a best-effort rate-limit warning, and the underlying tool is run
// from an argument list.
package wrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AutumnsGrove/gw/internal/exec"
	"github.com/AutumnsGrove/gw/internal/ratelimit"
	"github.com/AutumnsGrove/gw/internal/safety"
)

// Op is one wrapper operation ready to run.
type Op struct {
	// Name is the safety operation identifier, e.g. "git_push_force".
	Name  string
	Tool  string
	Args  []string
	Stdin string
	// GitHub marks operations against the hosted API.
	GitHub bool
}

// Command renders the argv for display. Stdin is never shown.
func (o Op) Command() string {
	return exec.Cmd{Name: o.Tool, Args: o.Args}.String()
}

// Outcome is the structured record of one executed operation.
type Outcome struct {
	Operation string `json:"operation"`
	Tier      string `json:"tier"`
	Command   string `json:"command,omitempty"`
	ExitCode  int    `json:"exit_code"`
	Stdout    string `json:"stdout,omitempty"`
	Stderr    string `json:"stderr,omitempty"`
	Warning   string `json:"warning,omitempty"`
	Aborted   bool   `json:"aborted,omitempty"`
}

// ToolError reports a wrapped tool that ran and exited non-zero.
type ToolError struct {
	Operation string
	Command   string
	ExitCode  int
	Stderr    string
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s exited %d", e.Command, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// UsageError reports arguments an operation cannot be built from.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string { return e.Message }

func usagef(format string, args ...interface{}) error {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// WriteTimeout bounds a state-changing operation when the caller's context
// has no deadline. Read-only operations keep the runner's default.
const WriteTimeout = 30 * time.Minute

// Service runs wrapper operations.
type Service struct {
	runner       exec.Runner
	safety       *safety.Gate
	monitor      *ratelimit.Monitor
	dir          string
	writeTimeout time.Duration
}

// NewService creates a service. monitor may be nil to disable rate-limit
// warnings.
func NewService(runner exec.Runner, gate *safety.Gate, monitor *ratelimit.Monitor, dir string) *Service {
	return &Service{runner: runner, safety: gate, monitor: monitor, dir: dir, writeTimeout: WriteTimeout}
}

// Authorize applies the safety gate to op without running anything. A
// declined confirmation returns safety.ErrAborted.
func (s *Service) Authorize(op string, write bool) error {
	return s.safety.Check(op, write)
}

// Execute authorizes and runs op. A safety violation returns the
// *safety.Error before any process starts. A declined confirmation is not
// an error: the outcome is marked Aborted. A non-zero exit is returned as
// a *ToolError together with the outcome.
func (s *Service) Execute(ctx context.Context, op Op, write bool) (*Outcome, error) {
	tier := s.safety.Tier(op.Name)
	out := &Outcome{Operation: op.Name, Tier: tier.String(), Command: op.Command()}

	if err := s.safety.Check(op.Name, write); err != nil {
		if errors.Is(err, safety.ErrAborted) {
			slog.Info("operation aborted", "operation", op.Name)
			out.Aborted = true
			return out, nil
		}
		return nil, err
	}

	if op.GitHub && tier != safety.ReadOnly {
		out.Warning = s.monitor.Check(ctx)
	}

	runCtx := ctx
	if _, ok := ctx.Deadline(); !ok && tier != safety.ReadOnly && s.writeTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.writeTimeout)
		defer cancel()
	}

	slog.Debug("executing operation", "operation", op.Name, "tier", tier.String(), "tool", op.Tool)
	res, err := s.runner.Run(runCtx, exec.Cmd{Name: op.Tool, Args: op.Args, Stdin: op.Stdin, Dir: s.dir})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Name, err)
	}

	out.ExitCode = res.ExitCode
	out.Stdout = res.Stdout
	out.Stderr = res.Stderr
	if !res.OK() {
		return out, &ToolError{Operation: op.Name, Command: out.Command, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}
	return out, nil
}
