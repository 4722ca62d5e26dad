package policy

import (
	"fmt"
	"regexp"
)

// Verdict is the classification outcome for one atomic command.
type Verdict int

const (
	Allow            Verdict = iota // proceed unmodified
	BlockRedirect                   // refuse and point at the wrapper equivalent
	BlockDestructive                // refuse outright, no safe equivalent exists
)

func (v Verdict) String() string {
	switch v {
	case Allow:
		return "allow"
	case BlockRedirect:
		return "block-redirect"
	case BlockDestructive:
		return "block-destructive"
	default:
		return fmt.Sprintf("verdict(%d)", int(v))
	}
}

// Blocks reports whether the verdict refuses the command.
func (v Verdict) Blocks() bool {
	return v == BlockRedirect || v == BlockDestructive
}

// MarshalText renders the verdict by name in JSON output.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Rule is one named entry in a family's rule table. Exactly one of
// Subcommand or Pattern is set. Pattern is matched against the normalized
// atomic command (program followed by single-spaced arguments).
type Rule struct {
	Name       string `yaml:"name"`
	Subcommand string `yaml:"subcommand,omitempty"`
	Pattern    string `yaml:"pattern,omitempty"`
	Suggest    string `yaml:"suggest,omitempty"`
	Message    string `yaml:"message,omitempty"`

	re *regexp.Regexp
}

// Matches reports whether the rule applies to cmd. A pattern rule that
// has not been compiled never matches.
func (r *Rule) Matches(cmd AtomicCommand) bool {
	if r.Subcommand != "" {
		return cmd.Subcommand == r.Subcommand
	}
	if r.re == nil {
		return false
	}
	return r.re.MatchString(cmd.Normalized())
}

// Family groups the rules for one tool family. Tables are consulted in
// the order Destructive, Redirect, Read.
type Family struct {
	Name     string   `yaml:"name"`
	Programs []string `yaml:"programs"`
	// ValueFlags are global options whose next token is a value, not the
	// subcommand (git -C <dir> push).
	ValueFlags  []string `yaml:"value_flags,omitempty"`
	Footer      string   `yaml:"footer,omitempty"`
	Destructive []Rule   `yaml:"destructive,omitempty"`
	Redirect    []Rule   `yaml:"redirect,omitempty"`
	Read        []Rule   `yaml:"read,omitempty"`
}

// RuleSet is the full set of rule tables. A compiled RuleSet is treated
// as immutable: the classifier reads it concurrently and never copies it.
type RuleSet struct {
	Version  int      `yaml:"version"`
	Wrapper  string   `yaml:"wrapper"`
	Families []Family `yaml:"families"`

	byProgram map[string]*Family
}

// Family returns the family that claims program, or nil.
func (rs *RuleSet) Family(program string) *Family {
	if rs == nil {
		return nil
	}
	return rs.byProgram[program]
}

// Decision is the outcome of classifying one atomic command, or of
// evaluating a whole chain.
type Decision struct {
	Verdict    Verdict `json:"verdict"`
	Command    string  `json:"command,omitempty"`
	Family     string  `json:"family,omitempty"`
	Subcommand string  `json:"subcommand,omitempty"`
	Rule       string  `json:"rule,omitempty"`
	Message    string  `json:"message,omitempty"`
	Suggest    string  `json:"suggest,omitempty"`
}

// Err returns a *BlockedError for blocking decisions and nil otherwise.
func (d Decision) Err() error {
	if !d.Verdict.Blocks() {
		return nil
	}
	return &BlockedError{Decision: d}
}

// BlockedError is returned when a command line is refused.
type BlockedError struct {
	Decision Decision
}

func (e *BlockedError) Error() string {
	if e.Decision.Suggest != "" {
		return fmt.Sprintf("command blocked: %s\n  Rule: %s\n  Use instead: %s",
			e.Decision.Command, e.Decision.Rule, e.Decision.Suggest)
	}
	return fmt.Sprintf("command blocked: %s\n  Rule: %s\n  This command cannot be run by agents.",
		e.Decision.Command, e.Decision.Rule)
}
