package policy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/open-policy-agent/opa/v1/rego"
)

// regoEvalTimeout bounds a single extension evaluation. Rego evaluation is
// in-memory; the bound only protects against pathological policies.
const regoEvalTimeout = 250 * time.Millisecond

// RegoExtension evaluates organisation-supplied Rego rules against commands
// the built-in tables allowed. Modules declare `package gw` and a `deny`
// set whose members are objects with "rule", "message" and optional
// "suggest" keys (a bare string is taken as the message). A member with a
// suggestion redirects; one without refuses outright.
type RegoExtension struct {
	query   rego.PreparedEvalQuery
	modules int
}

// NewRegoExtension compiles every .rego file under dir.
func NewRegoExtension(ctx context.Context, dir string) (*RegoExtension, error) {
	files, err := findRegoFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("finding rego files in %s: %w", dir, err)
	}
	return NewRegoExtensionFromModules(ctx, files)
}

// NewRegoExtensionFromModules compiles the given Rego sources keyed by file name.
func NewRegoExtensionFromModules(ctx context.Context, modules map[string]string) (*RegoExtension, error) {
	opts := []func(*rego.Rego){
		rego.Query("data.gw.deny"),
	}

	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts = append(opts, rego.Module(name, modules[name]))
	}

	pq, err := rego.New(opts...).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("preparing OPA query: %w", err)
	}

	slog.Debug("rego extension prepared", "modules", len(modules))
	return &RegoExtension{query: pq, modules: len(modules)}, nil
}

// Evaluate implements Extension. Evaluation errors are logged and the
// command is left allowed.
func (e *RegoExtension) Evaluate(cmd AtomicCommand) (Decision, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), regoEvalTimeout)
	defer cancel()

	input := map[string]interface{}{
		"command":    cmd.Normalized(),
		"program":    cmd.Program,
		"subcommand": cmd.Subcommand,
		"args":       toInterfaces(cmd.Args),
		"flags":      toInterfaces(cmd.Flags()),
	}

	rs, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		slog.Warn("rego evaluation failed, allowing command", "command", cmd.Raw, "error", err)
		return Decision{}, false
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return Decision{}, false
	}

	members, ok := rs[0].Expressions[0].Value.([]interface{})
	if !ok || len(members) == 0 {
		return Decision{}, false
	}

	d := denyDecision(members[0])
	if d.Rule == "" {
		d.Rule = "rego-deny"
	}
	return d, true
}

func denyDecision(member interface{}) Decision {
	switch m := member.(type) {
	case string:
		return Decision{Verdict: BlockDestructive, Message: m}
	case map[string]interface{}:
		d := Decision{Verdict: BlockDestructive}
		if v, ok := m["rule"].(string); ok {
			d.Rule = v
		}
		if v, ok := m["message"].(string); ok {
			d.Message = v
		}
		if v, ok := m["suggest"].(string); ok && v != "" {
			d.Verdict = BlockRedirect
			d.Suggest = v
		}
		return d
	default:
		return Decision{Verdict: BlockDestructive, Message: fmt.Sprint(member)}
	}
}

func toInterfaces(in []string) []interface{} {
	out := make([]interface{}, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// findRegoFiles discovers all .rego files under the given directory.
func findRegoFiles(dir string) (map[string]string, error) {
	files := make(map[string]string)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".rego") {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("reading %s: %w", path, readErr)
		}
		relPath, _ := filepath.Rel(dir, path)
		files[relPath] = string(data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
