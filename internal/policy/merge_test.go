package policy

import (
	"errors"
	"strings"
	"testing"
)

func TestMergeRuleSets_NilBase(t *testing.T) {
	if _, err := MergeRuleSets(nil, validRuleSet()); err == nil {
		t.Fatal("expected error for nil base")
	}
}

func TestMergeRuleSets_NilOverlayCopies(t *testing.T) {
	base := validRuleSet()
	got, err := MergeRuleSets(base, nil)
	if err != nil {
		t.Fatalf("MergeRuleSets: %v", err)
	}
	got.Families[0].Redirect[0].Suggest = "changed"
	if base.Families[0].Redirect[0].Suggest != "gw git push --write" {
		t.Error("merge result shares rule storage with the base")
	}
}

func TestMergeRuleSets_AppendsToExistingFamily(t *testing.T) {
	overlay := &RuleSet{
		Families: []Family{{
			Name:        "git",
			Programs:    []string{"git", "hub"},
			Destructive: []Rule{{Name: "git-filter-branch", Subcommand: "filter-branch"}},
			Redirect:    []Rule{{Name: "git-am", Subcommand: "am", Suggest: "gw git am --write"}},
		}},
	}

	got, err := MergeRuleSets(validRuleSet(), overlay)
	if err != nil {
		t.Fatalf("MergeRuleSets: %v", err)
	}
	git := got.Families[0]
	if len(git.Destructive) != 2 || git.Destructive[1].Name != "git-filter-branch" {
		t.Errorf("destructive: %+v", git.Destructive)
	}
	if len(git.Redirect) != 2 || git.Redirect[0].Name != "git-push" {
		t.Errorf("base rules should keep priority: %+v", git.Redirect)
	}
	if len(git.Programs) != 2 || git.Programs[1] != "hub" {
		t.Errorf("programs: %v", git.Programs)
	}
}

func TestMergeRuleSets_AddsNewFamily(t *testing.T) {
	overlay := &RuleSet{
		Version: 2,
		Families: []Family{{
			Name:        "kubectl",
			Programs:    []string{"kubectl"},
			Destructive: []Rule{{Name: "kubectl-delete", Subcommand: "delete"}},
		}},
	}
	got, err := MergeRuleSets(validRuleSet(), overlay)
	if err != nil {
		t.Fatalf("MergeRuleSets: %v", err)
	}
	if len(got.Families) != 3 || got.Families[2].Name != "kubectl" {
		t.Errorf("families: %+v", got.Families)
	}
	if got.Version != 2 {
		t.Errorf("version: got %d, want 2", got.Version)
	}
}

func TestMergeRuleSets_Violations(t *testing.T) {
	overlay := &RuleSet{
		Wrapper: "other",
		Families: []Family{{
			Name: "git",
			Read: []Rule{{Name: "git-push-ok", Subcommand: "push"}},
		}},
	}

	_, err := MergeRuleSets(validRuleSet(), overlay)
	var mergeErr *MergeError
	if !errors.As(err, &mergeErr) {
		t.Fatalf("expected *MergeError, got %v", err)
	}
	if len(mergeErr.Violations) != 2 {
		t.Fatalf("violations: %v", mergeErr.Violations)
	}
	if !strings.Contains(err.Error(), "cannot loosen") {
		t.Errorf("error: %v", err)
	}
}
