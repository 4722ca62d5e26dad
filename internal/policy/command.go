package policy

import (
	"path"
	"regexp"
	"strings"
)

// envAssign matches a leading NAME=value environment assignment.
var envAssign = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)

// launchers run another program named by their first argument.
var launchers = map[string][]string{
	"npx":  nil,
	"bunx": nil,
	"pnpm": {"exec", "dlx"},
	"yarn": {"dlx"},
}

// AtomicCommand is one non-chained invocation split into tokens.
type AtomicCommand struct {
	Raw     string
	Tokens  []string
	Program string
	Args    []string
	// Subcommand is the first non-flag argument. It is filled in by the
	// classifier once the family (and its value flags) is known.
	Subcommand string
	// subIndex is the position of Subcommand in Args, or -1.
	subIndex int
}

// ParseAtomic tokenizes one atomic command on whitespace. Leading
// environment assignments are dropped, the program is reduced to its base
// name and launcher prefixes (npx, bunx, pnpm exec) are unwrapped.
// Quotes are not interpreted.
func ParseAtomic(raw string) AtomicCommand {
	tokens := strings.Fields(raw)
	cmd := AtomicCommand{Raw: raw, Tokens: tokens, subIndex: -1}

	rest := tokens
	for len(rest) > 0 && envAssign.MatchString(rest[0]) {
		rest = rest[1:]
	}
	rest = unwrapLauncher(rest)
	if len(rest) == 0 {
		return cmd
	}

	cmd.Program = path.Base(rest[0])
	// npx wrangler@3 runs wrangler.
	if i := strings.LastIndex(cmd.Program, "@"); i > 0 {
		cmd.Program = cmd.Program[:i]
	}
	cmd.Args = rest[1:]
	return cmd
}

func unwrapLauncher(tokens []string) []string {
	for len(tokens) > 0 {
		subs, ok := launchers[path.Base(tokens[0])]
		if !ok {
			return tokens
		}
		next := tokens[1:]
		if subs != nil {
			if len(next) == 0 || !contains(subs, next[0]) {
				return tokens
			}
			next = next[1:]
		}
		for len(next) > 0 && strings.HasPrefix(next[0], "-") {
			next = next[1:]
		}
		if len(next) == 0 {
			return tokens
		}
		tokens = next
	}
	return tokens
}

// Normalized returns the program followed by its arguments separated by
// single spaces. Pattern rules match against this form.
func (c AtomicCommand) Normalized() string {
	if c.Program == "" {
		return ""
	}
	if len(c.Args) == 0 {
		return c.Program
	}
	return c.Program + " " + strings.Join(c.Args, " ")
}

// Flags returns the arguments that begin with "-".
func (c AtomicCommand) Flags() []string {
	var flags []string
	for _, a := range c.Args {
		if strings.HasPrefix(a, "-") {
			flags = append(flags, a)
		}
	}
	return flags
}

// HasArg reports whether any argument equals one of names.
func (c AtomicCommand) HasArg(names ...string) bool {
	for _, a := range c.Args {
		if contains(names, a) {
			return true
		}
	}
	return false
}

// SubArgs returns the arguments after the subcommand. Global options that
// precede the subcommand are not included. Without a subcommand it
// returns nil.
func (c AtomicCommand) SubArgs() []string {
	if c.subIndex < 0 || c.subIndex >= len(c.Args) {
		return nil
	}
	return c.Args[c.subIndex+1:]
}

// HasSubArg reports whether any argument after the subcommand equals one
// of names.
func (c AtomicCommand) HasSubArg(names ...string) bool {
	for _, a := range c.SubArgs() {
		if contains(names, a) {
			return true
		}
	}
	return false
}

// findSubcommand returns the first argument that is not a flag and its
// index in Args, skipping the value that follows any flag listed in
// valueFlags. The index is -1 when there is none.
func (c AtomicCommand) findSubcommand(valueFlags []string) (string, int) {
	for i := 0; i < len(c.Args); i++ {
		a := c.Args[i]
		if !strings.HasPrefix(a, "-") {
			return a, i
		}
		if contains(valueFlags, a) {
			i++
		}
	}
	return "", -1
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
