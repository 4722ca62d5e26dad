package policy

import (
	"fmt"
	"regexp"
)

// ValidationError describes a single validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateRuleSet checks a rule set for schema correctness and for the
// verdict invariants: redirect rules carry a suggestion, destructive and
// read rules carry none.
func ValidateRuleSet(rs *RuleSet) []ValidationError {
	var errs []ValidationError

	if rs == nil {
		return []ValidationError{{Field: "rules", Message: "is required"}}
	}

	if rs.Version < 1 {
		errs = append(errs, ValidationError{Field: "version", Message: "must be >= 1"})
	}
	if rs.Wrapper == "" {
		errs = append(errs, ValidationError{Field: "wrapper", Message: "is required"})
	}

	familyNames := make(map[string]bool)
	programs := make(map[string]string)
	ruleNames := make(map[string]string)

	for i, fam := range rs.Families {
		prefix := fmt.Sprintf("families[%d]", i)

		if fam.Name == "" {
			errs = append(errs, ValidationError{Field: prefix + ".name", Message: "is required"})
		} else if familyNames[fam.Name] {
			errs = append(errs, ValidationError{Field: prefix + ".name", Message: fmt.Sprintf("duplicate family %q", fam.Name)})
		}
		familyNames[fam.Name] = true

		if len(fam.Programs) == 0 {
			errs = append(errs, ValidationError{Field: prefix + ".programs", Message: "must have at least one program"})
		}
		for _, p := range fam.Programs {
			if owner, ok := programs[p]; ok && owner != fam.Name {
				errs = append(errs, ValidationError{
					Field:   prefix + ".programs",
					Message: fmt.Sprintf("program %q already claimed by family %q", p, owner),
				})
			}
			programs[p] = fam.Name
		}

		errs = append(errs, validateRules(prefix+".destructive", fam.Destructive, BlockDestructive, ruleNames)...)
		errs = append(errs, validateRules(prefix+".redirect", fam.Redirect, BlockRedirect, ruleNames)...)
		errs = append(errs, validateRules(prefix+".read", fam.Read, Allow, ruleNames)...)
	}

	return errs
}

func validateRules(prefix string, rules []Rule, verdict Verdict, names map[string]string) []ValidationError {
	var errs []ValidationError

	for i, r := range rules {
		field := fmt.Sprintf("%s[%d]", prefix, i)

		if r.Name == "" {
			errs = append(errs, ValidationError{Field: field + ".name", Message: "is required"})
		} else if other, ok := names[r.Name]; ok {
			errs = append(errs, ValidationError{Field: field + ".name", Message: fmt.Sprintf("duplicate rule %q (also at %s)", r.Name, other)})
		} else {
			names[r.Name] = field
		}

		switch {
		case r.Subcommand == "" && r.Pattern == "":
			errs = append(errs, ValidationError{Field: field, Message: "one of subcommand or pattern is required"})
		case r.Subcommand != "" && r.Pattern != "":
			errs = append(errs, ValidationError{Field: field, Message: "subcommand and pattern are mutually exclusive"})
		case r.Pattern != "":
			if _, err := regexp.Compile(r.Pattern); err != nil {
				errs = append(errs, ValidationError{Field: field + ".pattern", Message: fmt.Sprintf("invalid pattern: %v", err)})
			}
		}

		switch verdict {
		case BlockRedirect:
			if r.Suggest == "" {
				errs = append(errs, ValidationError{Field: field + ".suggest", Message: "redirect rules require a suggested replacement"})
			}
		case BlockDestructive:
			if r.Suggest != "" {
				errs = append(errs, ValidationError{Field: field + ".suggest", Message: "destructive rules have no replacement"})
			}
		case Allow:
			if r.Suggest != "" || r.Message != "" {
				errs = append(errs, ValidationError{Field: field, Message: "read rules take no suggest or message"})
			}
		}
	}

	return errs
}
