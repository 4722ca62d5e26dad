package exec

import (
	"context"
	"errors"
	osexec "os/exec"
	"reflect"
	"strings"
	"testing"
	"time"
)

func requireSh(t *testing.T) {
	t.Helper()
	if _, err := osexec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestResultLines(t *testing.T) {
	r := &Result{Stdout: "a\n\nb\nc\n"}
	if got, want := r.Lines(), []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Lines() = %v, want %v", got, want)
	}
	if got := (&Result{}).Lines(); len(got) != 0 {
		t.Errorf("Lines() on empty = %v", got)
	}
}

func TestCmdString(t *testing.T) {
	if got := (Cmd{Name: "git", Args: []string{"status", "-s"}}).String(); got != "git status -s" {
		t.Errorf("String() = %q", got)
	}
	if got := (Cmd{Name: "git"}).String(); got != "git" {
		t.Errorf("String() = %q", got)
	}
}

func TestCommandRunnerCapturesOutput(t *testing.T) {
	requireSh(t)
	res, err := CommandRunner{}.Run(context.Background(), Cmd{
		Name: "sh",
		Args: []string{"-c", "echo out; echo err >&2; exit 3"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Stdout != "out\n" || res.Stderr != "err\n" {
		t.Errorf("stdout=%q stderr=%q", res.Stdout, res.Stderr)
	}
	if res.ExitCode != 3 || res.OK() {
		t.Errorf("ExitCode = %d, OK = %v", res.ExitCode, res.OK())
	}
}

func TestCommandRunnerStdinAndDir(t *testing.T) {
	requireSh(t)
	dir := t.TempDir()
	res, err := CommandRunner{}.Run(context.Background(), Cmd{
		Name:  "sh",
		Args:  []string{"-c", "cat; pwd"},
		Stdin: "secret-value\n",
		Dir:   dir,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	lines := res.Lines()
	if len(lines) != 2 || lines[0] != "secret-value" {
		t.Fatalf("lines = %v", lines)
	}
}

func TestCommandRunnerMissingBinary(t *testing.T) {
	_, err := CommandRunner{}.Run(context.Background(), Cmd{Name: "gw-definitely-not-installed"})
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestCommandRunnerTimeout(t *testing.T) {
	requireSh(t)
	start := time.Now()
	_, err := CommandRunner{Timeout: 100 * time.Millisecond}.Run(context.Background(), Cmd{
		Name: "sh",
		Args: []string{"-c", "exec sleep 5"},
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("timeout was not enforced")
	}
}

func TestCommandRunnerNegativeTimeoutDisablesLimit(t *testing.T) {
	requireSh(t)
	res, err := CommandRunner{Timeout: -1}.Run(context.Background(), Cmd{
		Name: "sh",
		Args: []string{"-c", "sleep 0.2; echo done"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "done" {
		t.Errorf("stdout = %q", res.Stdout)
	}
}

func TestNotFoundError(t *testing.T) {
	old := LookPath
	LookPath = func(string) (string, error) { return "", osexec.ErrNotFound }
	t.Cleanup(func() { LookPath = old })

	_, err := Detect(context.Background(), CommandRunner{}, "gh")
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Name != "gh" {
		t.Fatalf("Detect err = %v, want *NotFoundError", err)
	}
	if got := Wrangler(); !reflect.DeepEqual(got, []string{"npx", "wrangler"}) {
		t.Errorf("Wrangler() = %v", got)
	}
}

type versionRunner struct{ out string }

func (v versionRunner) Run(_ context.Context, c Cmd) (*Result, error) {
	return &Result{Stdout: v.out}, nil
}

func TestDetect(t *testing.T) {
	old := LookPath
	LookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
	t.Cleanup(func() { LookPath = old })

	info, err := Detect(context.Background(), versionRunner{out: "gh version 2.40.0 (2023-12-07)\nhttps://github.com/cli/cli\n"}, "gh")
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if info.Path != "/usr/bin/gh" || info.Version != "gh version 2.40.0 (2023-12-07)" {
		t.Errorf("info = %+v", info)
	}
	if got := Wrangler(); !reflect.DeepEqual(got, []string{"wrangler"}) {
		t.Errorf("Wrangler() = %v", got)
	}
}
