// Package exec runs the external tools gw wraps (git, gh, wrangler, npm).
//
// Commands are always executed from an argument list. Nothing is passed
// through a shell.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	osexec "os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a subprocess started without its own deadline.
const DefaultTimeout = 30 * time.Second

// Cmd describes one subprocess invocation.
type Cmd struct {
	Name  string
	Args  []string
	Stdin string
	Dir   string
}

func (c Cmd) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result holds the captured output of a finished command. A non-zero exit
// is reported here, not as an error.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// OK reports whether the command exited zero.
func (r *Result) OK() bool {
	return r.ExitCode == 0
}

// Lines returns stdout split into non-empty lines.
func (r *Result) Lines() []string {
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(r.Stdout), "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Runner executes commands. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, c Cmd) (*Result, error)
}

// CommandRunner runs commands with os/exec.
type CommandRunner struct {
	// Timeout applies when ctx has no deadline. Zero means DefaultTimeout
	// and a negative value means no limit.
	Timeout time.Duration
}

// Run implements Runner. An error is returned only when the process could
// not be started or was killed by the context.
func (r CommandRunner) Run(ctx context.Context, c Cmd) (*Result, error) {
	if _, ok := ctx.Deadline(); !ok && r.Timeout >= 0 {
		timeout := r.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := osexec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = time.Second
	if c.Stdin != "" {
		cmd.Stdin = strings.NewReader(c.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running command", "command", c.Name, "args", len(c.Args))
	err := cmd.Run()

	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		if ctx.Err() != nil {
			return res, fmt.Errorf("running %s: %w", c.Name, ctx.Err())
		}
		var exitErr *osexec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("running %s: %w", c.Name, err)
	}
	return res, nil
}
