package wrap

import (
	"path/filepath"
	"strings"
)

// formattable lists the extensions prettier is run on when formatting
// changed files.
var formattable = map[string]bool{
	".js": true, ".jsx": true, ".ts": true, ".tsx": true, ".mjs": true, ".cjs": true,
	".svelte": true, ".css": true, ".scss": true, ".html": true,
	".json": true, ".md": true, ".yaml": true, ".yml": true,
}

// Formattable filters paths down to the ones prettier handles.
func Formattable(paths []string) []string {
	var out []string
	for _, p := range paths {
		if formattable[strings.ToLower(filepath.Ext(p))] {
			out = append(out, p)
		}
	}
	return out
}

// Fmt formats paths with prettier, or the whole tree with all.
func Fmt(paths []string, all bool) (Op, error) {
	args := []string{"prettier", "--write"}
	switch {
	case all:
		args = append(args, ".")
	case len(paths) == 0:
		return Op{}, usagef("nothing to format: give files or --all")
	default:
		args = append(args, paths...)
	}
	return Op{Name: "fmt", Tool: "npx", Args: args}, nil
}

// Lint runs eslint on paths, or the current directory.
func Lint(paths []string, fix bool) Op {
	args := []string{"eslint"}
	if fix {
		args = append(args, "--fix")
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}
	return Op{Name: "lint", Tool: "npx", Args: append(args, paths...)}
}

// PublishNPM publishes the package in the working directory.
func PublishNPM(tag string, dryRun bool) Op {
	args := []string{"publish"}
	if tag != "" {
		args = append(args, "--tag", tag)
	}
	if dryRun {
		args = append(args, "--dry-run")
	}
	return Op{Name: "publish_npm", Tool: "npm", Args: args}
}
