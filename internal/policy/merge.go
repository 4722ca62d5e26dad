package policy

import (
	"fmt"
	"log/slog"
	"strings"
)

// MergeError reports one or more violations found while merging an overlay.
type MergeError struct {
	Violations []string
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("rule set merge violations:\n  - %s", strings.Join(e.Violations, "\n  - "))
}

// MergeRuleSets combines the base rule set with a project overlay. An
// overlay can only add rules: rules for an existing family are appended to
// the matching tables and unknown families are added whole. Because the
// tables are consulted destructive first, an overlay read rule can never
// loosen a base block; one that names a subcommand the base already blocks
// is reported as a violation since it would never take effect.
func MergeRuleSets(base, overlay *RuleSet) (*RuleSet, error) {
	if base == nil {
		return nil, fmt.Errorf("base rule set is required")
	}

	result := deepCopyRuleSet(base)
	if overlay == nil {
		return result, nil
	}

	var violations []string

	if overlay.Wrapper != "" && overlay.Wrapper != result.Wrapper {
		violations = append(violations, fmt.Sprintf(
			"wrapper: overlay sets %q, base uses %q", overlay.Wrapper, result.Wrapper))
	}
	if overlay.Version > result.Version {
		result.Version = overlay.Version
	}

	for _, of := range overlay.Families {
		idx := familyIndex(result.Families, of.Name)
		if idx < 0 {
			result.Families = append(result.Families, deepCopyRuleSet(&RuleSet{Families: []Family{of}}).Families[0])
			continue
		}

		fam := &result.Families[idx]
		violations = append(violations, shadowedReads(fam, of.Read)...)

		fam.Programs = unionStrings(fam.Programs, of.Programs)
		fam.ValueFlags = unionStrings(fam.ValueFlags, of.ValueFlags)
		if of.Footer != "" {
			fam.Footer = of.Footer
		}
		fam.Destructive = append(fam.Destructive, of.Destructive...)
		fam.Redirect = append(fam.Redirect, of.Redirect...)
		fam.Read = append(fam.Read, of.Read...)
	}

	if len(violations) > 0 {
		return nil, &MergeError{Violations: violations}
	}

	slog.Debug("rule set merge completed", "families", len(result.Families))
	return result, nil
}

func shadowedReads(fam *Family, reads []Rule) []string {
	var violations []string
	for _, r := range reads {
		if r.Subcommand == "" {
			continue
		}
		for _, table := range [][]Rule{fam.Destructive, fam.Redirect} {
			for _, b := range table {
				if b.Subcommand == r.Subcommand {
					violations = append(violations, fmt.Sprintf(
						"%s: read rule %q cannot loosen blocking rule %q", fam.Name, r.Name, b.Name))
				}
			}
		}
	}
	return violations
}

func familyIndex(families []Family, name string) int {
	for i, f := range families {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a))
	for _, s := range a {
		seen[s] = true
	}
	for _, s := range b {
		if !seen[s] {
			a = append(a, s)
			seen[s] = true
		}
	}
	return a
}
