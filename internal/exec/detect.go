package exec

import (
	"context"
	"fmt"
	"log/slog"
	osexec "os/exec"
	"strings"
)

// LookPath is the PATH lookup used by this package.
var LookPath = osexec.LookPath

// Which reports the path of name on PATH.
func Which(name string) (string, bool) {
	path, err := LookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}

// ToolInfo describes a tool found on the host.
type ToolInfo struct {
	Name    string
	Path    string
	Version string
}

// NotFoundError is returned when a required tool is not on PATH.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found on PATH", e.Name)
}

// Detect locates name and asks it for its version.
func Detect(ctx context.Context, r Runner, name string) (*ToolInfo, error) {
	path, ok := Which(name)
	if !ok {
		return nil, &NotFoundError{Name: name}
	}

	res, err := r.Run(ctx, Cmd{Name: path, Args: []string{"--version"}})
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, fmt.Errorf("%s --version exited %d", name, res.ExitCode)
	}

	info := &ToolInfo{Name: name, Path: path, Version: firstLine(res.Stdout)}
	slog.Debug("detected tool", "name", info.Name, "path", info.Path, "version", info.Version)
	return info, nil
}

// Wrangler returns the argv prefix used to invoke wrangler: the binary when
// it is installed, npx otherwise.
func Wrangler() []string {
	if _, ok := Which("wrangler"); ok {
		return []string{"wrangler"}
	}
	return []string{"npx", "wrangler"}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
