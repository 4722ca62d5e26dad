package policy

import (
	"fmt"
	"log/slog"
	"strings"
)

// Extension is an additional rule source consulted after the built-in
// tables have allowed a command. It must be side-effect free.
type Extension interface {
	Evaluate(cmd AtomicCommand) (Decision, bool)
}

// Classifier resolves a verdict for one atomic command.
//
// Classification fails open: a command whose program belongs to no
// family, that has no subcommand, or that matches no rule is allowed.
// Enforcement only restricts commands explicitly known to be unsafe or to
// have a safer equivalent. Do not turn the defaults into denials; that
// changes the safety posture from availability-first to deny-by-default.
type Classifier struct {
	rules     *RuleSet
	special   map[string][]SpecialCase
	extension Extension
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithSpecialCases replaces the built-in special cases.
func WithSpecialCases(cases []SpecialCase) Option {
	return func(c *Classifier) {
		c.special = groupSpecialCases(cases)
	}
}

// WithExtension adds an extension consulted after the tables allow.
func WithExtension(ext Extension) Option {
	return func(c *Classifier) {
		c.extension = ext
	}
}

// NewClassifier creates a classifier over a compiled rule set.
func NewClassifier(rules *RuleSet, opts ...Option) *Classifier {
	c := &Classifier{
		rules:   rules,
		special: groupSpecialCases(DefaultSpecialCases()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func groupSpecialCases(cases []SpecialCase) map[string][]SpecialCase {
	m := make(map[string][]SpecialCase)
	for _, sc := range cases {
		m[sc.Family] = append(m[sc.Family], sc)
	}
	return m
}

// Wrapper returns the approved wrapper's invocation name.
func (c *Classifier) Wrapper() string {
	if c.rules == nil {
		return ""
	}
	return c.rules.Wrapper
}

// Classify returns the verdict for one atomic command. A panic inside a
// rule is recovered and the command is allowed.
func (c *Classifier) Classify(raw string) (d Decision) {
	cmd := ParseAtomic(raw)
	d = Decision{Verdict: Allow, Command: strings.TrimSpace(raw)}

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("rule evaluation failed, allowing command", "command", raw, "panic", r)
			d = Decision{Verdict: Allow, Command: strings.TrimSpace(raw), Rule: "evaluation-error"}
		}
	}()

	fam := c.rules.Family(cmd.Program)
	if fam == nil {
		return d
	}
	d.Family = fam.Name

	cmd.Subcommand, cmd.subIndex = cmd.findSubcommand(fam.ValueFlags)
	if cmd.Subcommand == "" {
		return d
	}
	d.Subcommand = cmd.Subcommand

	for _, sc := range c.special[fam.Name] {
		if sd, ok := sc.Match(cmd, c.rules.Wrapper); ok {
			return c.finish(d, sd, fam, cmd)
		}
	}

	if r := firstMatch(fam.Destructive, cmd); r != nil {
		return c.finish(d, Decision{Verdict: BlockDestructive, Rule: r.Name, Message: r.Message}, fam, cmd)
	}
	if r := firstMatch(fam.Redirect, cmd); r != nil {
		return c.finish(d, Decision{Verdict: BlockRedirect, Rule: r.Name, Suggest: r.Suggest, Message: r.Message}, fam, cmd)
	}
	if r := firstMatch(fam.Read, cmd); r != nil {
		d.Rule = r.Name
		return d
	}

	if c.extension != nil {
		if ed, ok := c.extension.Evaluate(cmd); ok {
			return c.finish(d, ed, fam, cmd)
		}
	}
	return d
}

// finish merges a rule outcome into the base decision and fills in the
// default message for blocking verdicts.
func (c *Classifier) finish(base, out Decision, fam *Family, cmd AtomicCommand) Decision {
	base.Verdict = out.Verdict
	base.Rule = out.Rule
	if !out.Verdict.Blocks() {
		return base
	}

	base.Suggest = ""
	if out.Verdict == BlockRedirect {
		base.Suggest = out.Suggest
	}
	base.Message = out.Message
	if base.Message == "" {
		base.Message = c.defaultMessage(base, fam, cmd)
	} else if base.Suggest != "" && !strings.Contains(base.Message, base.Suggest) {
		base.Message += fmt.Sprintf("\n\n→ `%s`", base.Suggest)
	}
	return base
}

func (c *Classifier) defaultMessage(d Decision, fam *Family, cmd AtomicCommand) string {
	wrapper := c.rules.Wrapper
	shown := displayCommand(cmd)
	if d.Verdict == BlockDestructive {
		return fmt.Sprintf("**BLOCKED**: `%s` is destructive and has no %s equivalent.\n"+
			"This command cannot be run by agents.", shown, wrapper)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Use **%s** instead of raw %s for write operations:\n\n", wrapper, cmd.Program)
	fmt.Fprintf(&b, "- `%s ...` → `%s`", shown, d.Suggest)
	if fam.Footer != "" {
		b.WriteString("\n\n")
		b.WriteString(fam.Footer)
	}
	return b.String()
}

// displayCommand shows the program and up to two following words that
// are not flags, e.g. "gh pr create" or "git commit".
func displayCommand(cmd AtomicCommand) string {
	parts := []string{cmd.Program}
	for _, a := range cmd.Args {
		if len(parts) == 3 || strings.HasPrefix(a, "-") {
			break
		}
		parts = append(parts, a)
	}
	if len(parts) > 2 && parts[1] == cmd.Subcommand {
		return strings.Join(parts, " ")
	}
	return cmd.Program + " " + cmd.Subcommand
}

func firstMatch(rules []Rule, cmd AtomicCommand) *Rule {
	for i := range rules {
		if rules[i].Matches(cmd) {
			return &rules[i]
		}
	}
	return nil
}
