package policy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultRuleSet_Valid(t *testing.T) {
	rs, err := DefaultRuleSet()
	if err != nil {
		t.Fatalf("DefaultRuleSet: %v", err)
	}
	if errs := ValidateRuleSet(rs); len(errs) > 0 {
		t.Fatalf("embedded rules invalid: %v", errs)
	}
	if rs.Wrapper != "gw" {
		t.Errorf("wrapper: got %q", rs.Wrapper)
	}

	want := []string{"git", "gh", "wrangler", "prettier", "eslint", "npm"}
	for _, name := range want {
		if familyIndex(rs.Families, name) < 0 {
			t.Errorf("missing family %q", name)
		}
	}
}

func TestDefault_CompilesPatterns(t *testing.T) {
	rs := Default()
	gh := rs.Family("gh")
	if gh == nil {
		t.Fatal("gh family not indexed")
	}
	for _, r := range gh.Redirect {
		if r.Pattern != "" && r.re == nil {
			t.Errorf("rule %s: pattern not compiled", r.Name)
		}
	}
}

func TestCompile_DoesNotMutateInput(t *testing.T) {
	rs, err := DefaultRuleSet()
	if err != nil {
		t.Fatal(err)
	}
	compiled, err := Compile(rs)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if rs.byProgram != nil {
		t.Error("Compile indexed the input rule set")
	}
	for _, r := range rs.Families[familyIndex(rs.Families, "gh")].Redirect {
		if r.re != nil {
			t.Fatal("Compile compiled patterns on the input rule set")
		}
	}
	if compiled.Family("git") == nil {
		t.Error("compiled rule set missing git family")
	}
}

func TestCompile_Invalid(t *testing.T) {
	rs := &RuleSet{
		Version: 1,
		Wrapper: "gw",
		Families: []Family{{
			Name:     "git",
			Programs: []string{"git"},
			Redirect: []Rule{{Name: "no-suggest", Subcommand: "push"}},
		}},
	}
	_, err := Compile(rs)
	if err == nil {
		t.Fatal("expected error for redirect without suggestion")
	}
	if !strings.Contains(err.Error(), "suggested replacement") {
		t.Errorf("error should explain the problem: %v", err)
	}
}

func TestLoadRuleSet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")

	content := `version: 1
families:
  - name: terraform
    programs: [terraform, tofu]
    destructive:
      - name: terraform-destroy
        subcommand: destroy
    redirect:
      - name: terraform-apply
        subcommand: apply
        suggest: gw tf apply --write
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rs, err := LoadRuleSet(path)
	if err != nil {
		t.Fatalf("LoadRuleSet: %v", err)
	}
	if len(rs.Families) != 1 || rs.Families[0].Name != "terraform" {
		t.Fatalf("families: %+v", rs.Families)
	}
	if got := rs.Families[0].Programs; len(got) != 2 || got[1] != "tofu" {
		t.Errorf("programs: %v", got)
	}
}

func TestLoadRuleSet_FileNotFound(t *testing.T) {
	if _, err := LoadRuleSet("/nonexistent/rules.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRuleSet_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("families: [[[\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadRuleSet(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoad_WithOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `families:
  - name: git
    destructive:
      - name: git-filter-branch
        subcommand: filter-branch
  - name: terraform
    programs: [terraform]
    destructive:
      - name: terraform-destroy
        subcommand: destroy
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rs, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c := NewClassifier(rs)

	if d := c.Classify("git filter-branch --tree-filter x"); d.Verdict != BlockDestructive {
		t.Errorf("overlay git rule not applied: %s", d.Verdict)
	}
	if d := c.Classify("terraform destroy -auto-approve"); d.Verdict != BlockDestructive {
		t.Errorf("overlay family not applied: %s", d.Verdict)
	}
	if d := c.Classify("git commit -m x"); d.Verdict != BlockRedirect {
		t.Errorf("base rules lost after merge: %s", d.Verdict)
	}
}

func TestLoad_MissingOverlayUsesDefaults(t *testing.T) {
	rs, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rs.Family("git") == nil {
		t.Error("defaults not loaded")
	}
}
