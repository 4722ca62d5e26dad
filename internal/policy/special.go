package policy

import (
	"fmt"
	"strings"
)

// SpecialCase is a named, family-scoped rule that needs more than a table
// lookup: the same subcommand is read-only in one argument shape and
// mutating in another. Special cases run before the family's tables.
type SpecialCase struct {
	Name   string
	Family string
	// Match returns a decision and true when the case applies. wrapper is
	// the approved wrapper's invocation name.
	Match func(cmd AtomicCommand, wrapper string) (Decision, bool)
}

// branchMutatingFlags upgrade `git branch` from a listing to a write.
var branchMutatingFlags = []string{"-d", "-D", "--delete", "-m", "-M", "--move", "-c", "-C", "--copy"}

// apiMutatingMethods are the HTTP methods that turn `gh api` into a write.
var apiMutatingMethods = []string{"POST", "PUT", "PATCH", "DELETE"}

// apiFieldFlags make gh default to POST when no method is given.
var apiFieldFlags = []string{"-f", "-F", "--field", "--raw-field", "--input"}

// DefaultSpecialCases returns the built-in special cases.
func DefaultSpecialCases() []SpecialCase {
	return []SpecialCase{
		{Name: "git-branch-list", Family: "git", Match: matchGitBranch},
		{Name: "git-checkout-discard", Family: "git", Match: matchGitCheckoutDiscard},
		{Name: "git-checkout-switch", Family: "git", Match: matchGitCheckoutSwitch},
		{Name: "gh-api-method", Family: "gh", Match: matchGhAPI},
		{Name: "wrangler-d1", Family: "wrangler", Match: matchWranglerD1},
	}
}

func matchGitBranch(cmd AtomicCommand, wrapper string) (Decision, bool) {
	if cmd.Subcommand != "branch" {
		return Decision{}, false
	}
	if !cmd.HasSubArg(branchMutatingFlags...) {
		return Decision{Verdict: Allow, Rule: "git-branch-list"}, true
	}
	suggest := wrapper + " git branch --write --delete <name>"
	return Decision{
		Verdict: BlockRedirect,
		Rule:    "git-branch-list",
		Suggest: suggest,
		Message: fmt.Sprintf("Use **%[1]s** for branch operations:\n"+
			"- Delete: `%[2]s`\n"+
			"- Create: `%[1]s git branch --write <name>`", wrapper, suggest),
	}, true
}

func matchGitCheckoutDiscard(cmd AtomicCommand, _ string) (Decision, bool) {
	if cmd.Subcommand != "checkout" || !cmd.HasSubArg("--") || !cmd.HasSubArg(".") {
		return Decision{}, false
	}
	return Decision{
		Verdict: BlockDestructive,
		Rule:    "git-checkout-discard",
		Message: "**BLOCKED**: `git checkout -- .` discards all changes.\n" +
			"This is destructive and cannot be undone.\n\n" +
			"If you need to discard changes, let the user decide.",
	}, true
}

func matchGitCheckoutSwitch(cmd AtomicCommand, wrapper string) (Decision, bool) {
	if cmd.Subcommand != "checkout" {
		return Decision{}, false
	}
	suggest := wrapper + " git switch <branch>"
	return Decision{
		Verdict: BlockRedirect,
		Rule:    "git-checkout-switch",
		Suggest: suggest,
		Message: fmt.Sprintf("Use **%[1]s** for switching branches:\n"+
			"- `%[2]s`\n"+
			"- `%[1]s git switch --write --create <new-branch>` (create and switch)", wrapper, suggest),
	}, true
}

func matchGhAPI(cmd AtomicCommand, wrapper string) (Decision, bool) {
	if cmd.Subcommand != "api" {
		return Decision{}, false
	}
	method := apiMethod(cmd.SubArgs())
	mutating := contains(apiMutatingMethods, method)
	if method == "" && cmd.HasSubArg(apiFieldFlags...) {
		mutating = true
	}
	if !mutating {
		return Decision{Verdict: Allow, Rule: "gh-api-method"}, true
	}
	suggest := wrapper + " gh api --write ..."
	return Decision{
		Verdict: BlockRedirect,
		Rule:    "gh-api-method",
		Suggest: suggest,
		Message: fmt.Sprintf("Use **%s** for write API calls:\n\n"+
			"- `gh api -X %s ...` → `%s`\n\n"+
			"%s enforces safety tiers for GitHub API mutations.", wrapper, orPOST(method), suggest, wrapper),
	}, true
}

// apiMethod returns the upper-cased method given by -X or --method in any
// of its spellings, or "" when none is present.
func apiMethod(args []string) string {
	for i, a := range args {
		switch {
		case a == "-X" || a == "--method":
			if i+1 < len(args) {
				return strings.ToUpper(args[i+1])
			}
		case strings.HasPrefix(a, "--method="):
			return strings.ToUpper(strings.TrimPrefix(a, "--method="))
		case strings.HasPrefix(a, "-X="):
			return strings.ToUpper(strings.TrimPrefix(a, "-X="))
		case strings.HasPrefix(a, "-X") && len(a) > 2:
			return strings.ToUpper(a[2:])
		}
	}
	return ""
}

func orPOST(method string) string {
	if method == "" {
		return "POST"
	}
	return method
}

func matchWranglerD1(cmd AtomicCommand, _ string) (Decision, bool) {
	if cmd.Subcommand != "d1" {
		return Decision{}, false
	}
	return Decision{Verdict: Allow, Rule: "wrangler-d1"}, true
}
