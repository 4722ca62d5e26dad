// Package safety gates wrapper operations by safety tier.
//
// This is a second layer, independent from command interception: the
// interceptor stops misuse of the raw tools, the tier gate enforces
// confirmed intent even when the wrapper itself is used correctly.
package safety

import "fmt"

// Tier is the confirmation requirement attached to a wrapper operation.
type Tier int

const (
	ReadOnly     Tier = iota // always proceeds
	GuardedWrite             // requires the write-confirmation marker
	Destructive              // marker plus interactive confirmation when a human is attached
)

func (t Tier) String() string {
	switch t {
	case ReadOnly:
		return "read-only"
	case GuardedWrite:
		return "guarded-write"
	case Destructive:
		return "destructive"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

// MarshalText renders the tier by name in JSON output.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Tiers maps operation identifiers to their tier.
type Tiers map[string]Tier

// Lookup returns the tier for op. Unregistered operations are treated as
// guarded writes.
func (t Tiers) Lookup(op string) Tier {
	if tier, ok := t[op]; ok {
		return tier
	}
	return GuardedWrite
}

// DefaultTiers returns a fresh copy of the built-in operation table.
func DefaultTiers() Tiers {
	return Tiers{
		// git
		"git_status":      ReadOnly,
		"git_log":         ReadOnly,
		"git_diff":        ReadOnly,
		"git_branch_list": ReadOnly,
		"git_stash_list":  ReadOnly,

		"git_commit":        GuardedWrite,
		"git_add":           GuardedWrite,
		"git_push":          GuardedWrite,
		"git_pull":          GuardedWrite,
		"git_switch":        GuardedWrite,
		"git_stash":         GuardedWrite,
		"git_branch_create": GuardedWrite,
		"git_cherry_pick":   GuardedWrite,
		"git_merge":         GuardedWrite,
		"git_reset":         GuardedWrite,

		"git_push_force":    Destructive,
		"git_branch_delete": Destructive,
		"git_reset_hard":    Destructive,
		"git_rebase":        Destructive,
		"git_stash_drop":    Destructive,

		// GitHub
		"gh_pr_list":    ReadOnly,
		"gh_pr_view":    ReadOnly,
		"gh_issue_list": ReadOnly,
		"gh_issue_view": ReadOnly,
		"gh_run_list":   ReadOnly,
		"gh_run_view":   ReadOnly,
		"gh_api_get":    ReadOnly,

		"gh_pr_create":      GuardedWrite,
		"gh_pr_comment":     GuardedWrite,
		"gh_issue_create":   GuardedWrite,
		"gh_issue_comment":  GuardedWrite,
		"gh_issue_close":    GuardedWrite,
		"gh_run_rerun":      GuardedWrite,
		"gh_release_create": GuardedWrite,
		"gh_api_write":      GuardedWrite,

		"gh_pr_merge":       Destructive,
		"gh_pr_close":       Destructive,
		"gh_run_cancel":     Destructive,
		"gh_release_delete": Destructive,
		"gh_api_delete":     Destructive,

		// Cloudflare
		"deploy":           GuardedWrite,
		"secret_set":       GuardedWrite,
		"kv_put":           GuardedWrite,
		"r2_put":           GuardedWrite,
		"r2_bucket_create": GuardedWrite,

		"secret_delete":    Destructive,
		"kv_delete":        Destructive,
		"r2_delete":        Destructive,
		"r2_bucket_delete": Destructive,

		// dev tools
		"fmt":         ReadOnly,
		"lint":        ReadOnly,
		"publish_npm": GuardedWrite,
	}
}
