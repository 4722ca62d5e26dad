// Package chain splits a compound shell command line into the atomic
// commands it is made of.
//
// The split is purely textual. Separators that appear inside quoted
// arguments are treated as real separators: `git log --grep "a;b"` yields
// two segments. This can only over-report commands, never hide one, so the
// policy layer errs toward blocking rather than missing a chained write.
//
// A lone & (run in background) also separates commands. Redirections such
// as 2>&1, >&2 and &>file do not.
package chain

import (
	"regexp"
	"strings"
)

// separators matches &&, ||, ;, | and newlines with surrounding whitespace.
var separators = regexp.MustCompile(`\s*(?:&&|\|\||;|\||\r?\n)\s*`)

// Split returns the trimmed, non-empty atomic commands of line in order.
// A blank line yields an empty slice.
func Split(line string) []string {
	parts := separators.Split(line, -1)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		for _, p := range splitBackground(part) {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// splitBackground splits s on & characters that are not part of a
// redirection. s contains no && since those are split first.
func splitBackground(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '&' {
			continue
		}
		if i > 0 && (s[i-1] == '>' || s[i-1] == '<') {
			continue
		}
		if i+1 < len(s) && s[i+1] == '>' {
			continue
		}
		out = append(out, s[start:i])
		start = i + 1
	}
	return append(out, s[start:])
}
