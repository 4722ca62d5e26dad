package policy

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"go.yaml.in/yaml/v3"
)

//go:embed rules.yaml
var defaultRules []byte

// ParseRuleSet decodes a rule set document without compiling it.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing rule set: %w", err)
	}
	return &rs, nil
}

// LoadRuleSet reads a rule set YAML file from disk without compiling it.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule set %s: %w", path, err)
	}
	rs, err := ParseRuleSet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("loaded rule set", "path", path, "version", rs.Version, "families", len(rs.Families))
	return rs, nil
}

// DefaultRuleSet returns the embedded rule tables, parsed but not compiled.
func DefaultRuleSet() (*RuleSet, error) {
	return ParseRuleSet(defaultRules)
}

// Compile validates rs and returns a compiled copy ready for classification.
// The input is not modified.
func Compile(rs *RuleSet) (*RuleSet, error) {
	if errs := ValidateRuleSet(rs); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, e := range errs {
			joined[i] = e
		}
		return nil, fmt.Errorf("invalid rule set: %w", errors.Join(joined...))
	}

	out := deepCopyRuleSet(rs)
	out.byProgram = make(map[string]*Family)
	for i := range out.Families {
		fam := &out.Families[i]
		for _, table := range [][]Rule{fam.Destructive, fam.Redirect, fam.Read} {
			for j := range table {
				if table[j].Pattern == "" {
					continue
				}
				// Validated above; MustCompile cannot fail here.
				table[j].re = regexp.MustCompile(table[j].Pattern)
			}
		}
		for _, p := range fam.Programs {
			out.byProgram[p] = fam
		}
	}
	return out, nil
}

// Default returns the compiled embedded rule tables. The embedded document
// is covered by tests, so a failure here is a build defect.
func Default() *RuleSet {
	rs, err := DefaultRuleSet()
	if err != nil {
		panic(err)
	}
	compiled, err := Compile(rs)
	if err != nil {
		panic(err)
	}
	return compiled
}

// Load builds the effective rule set: the embedded defaults merged with
// the overlay file at overlayPath, if one is given and exists.
func Load(overlayPath string) (*RuleSet, error) {
	base, err := DefaultRuleSet()
	if err != nil {
		return nil, err
	}

	if overlayPath != "" {
		if _, statErr := os.Stat(overlayPath); statErr == nil {
			overlay, err := LoadRuleSet(overlayPath)
			if err != nil {
				return nil, err
			}
			base, err = MergeRuleSets(base, overlay)
			if err != nil {
				return nil, fmt.Errorf("merging %s: %w", overlayPath, err)
			}
		} else if !os.IsNotExist(statErr) {
			return nil, fmt.Errorf("checking rule overlay %s: %w", overlayPath, statErr)
		}
	}

	return Compile(base)
}

func deepCopyRuleSet(rs *RuleSet) *RuleSet {
	out := &RuleSet{
		Version:  rs.Version,
		Wrapper:  rs.Wrapper,
		Families: make([]Family, len(rs.Families)),
	}
	for i, f := range rs.Families {
		out.Families[i] = Family{
			Name:        f.Name,
			Programs:    append([]string(nil), f.Programs...),
			ValueFlags:  append([]string(nil), f.ValueFlags...),
			Footer:      f.Footer,
			Destructive: append([]Rule(nil), f.Destructive...),
			Redirect:    append([]Rule(nil), f.Redirect...),
			Read:        append([]Rule(nil), f.Read...),
		}
	}
	return out
}
