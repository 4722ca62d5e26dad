package cmd

import (
	"testing"

	"github.com/AutumnsGrove/gw/internal/policy"
)

func TestRuleRecordsFamilyFilter(t *testing.T) {
	rs := policy.Default()

	all := ruleRecords(rs, "")
	gh := ruleRecords(rs, "gh")
	if len(gh) == 0 || len(gh) >= len(all) {
		t.Fatalf("gh filter returned %d of %d records", len(gh), len(all))
	}
	for _, r := range gh {
		if r.Family != "gh" {
			t.Errorf("record %s belongs to family %q", r.Rule, r.Family)
		}
	}

	var sawSpecial bool
	for _, r := range gh {
		if r.Table == "special" {
			sawSpecial = true
		}
	}
	if !sawSpecial {
		t.Error("gh api special case missing from listing")
	}
}

func TestRuleRecordsMatchColumn(t *testing.T) {
	for _, r := range ruleRecords(policy.Default(), "git") {
		if r.Rule == "git-clean" {
			if r.Match != "subcommand clean" {
				t.Errorf("git-clean match = %q", r.Match)
			}
			if r.Table != "destructive" {
				t.Errorf("git-clean table = %q", r.Table)
			}
			return
		}
	}
	t.Fatal("git-clean not listed")
}

func TestRuleRecordsUnknownFamily(t *testing.T) {
	if got := ruleRecords(policy.Default(), "svn"); len(got) != 0 {
		t.Errorf("expected no records, got %d", len(got))
	}
}
