package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/AutumnsGrove/gw/internal/output"
	"github.com/AutumnsGrove/gw/internal/policy"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate interception rule tables",
}

var rulesListCmd = &cobra.Command{
	Use:   "list [family]",
	Short: "List the effective interception rules",
	Long: `List prints every rule in the effective rule set: the built-in tables
plus the project overlay. Tables are consulted in the order shown:
special cases, destructive, redirect, read.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRulesList,
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate [overlay.yaml]",
	Short: "Validate a rule overlay against the built-in tables",
	Long: `Validate checks an overlay file for schema problems and for rules that
would try to loosen a built-in block. Without an argument the configured
overlay ($GW_ROOT/.gw/rules.yaml by default) is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRulesValidate,
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesValidateCmd)
	rootCmd.AddCommand(rulesCmd)
}

// ruleRecord is one row of `gw rules list`.
type ruleRecord struct {
	Family  string `json:"family"`
	Table   string `json:"table"`
	Rule    string `json:"rule"`
	Match   string `json:"match"`
	Suggest string `json:"suggest,omitempty"`
}

func ruleRecords(rs *policy.RuleSet, family string) []ruleRecord {
	var out []ruleRecord
	for _, sc := range policy.DefaultSpecialCases() {
		if family == "" || sc.Family == family {
			out = append(out, ruleRecord{Family: sc.Family, Table: "special", Rule: sc.Name, Match: "(argument shape)"})
		}
	}
	for _, fam := range rs.Families {
		if family != "" && fam.Name != family {
			continue
		}
		tables := []struct {
			name  string
			rules []policy.Rule
		}{
			{"destructive", fam.Destructive},
			{"redirect", fam.Redirect},
			{"read", fam.Read},
		}
		for _, t := range tables {
			for _, r := range t.rules {
				match := r.Pattern
				if r.Subcommand != "" {
					match = "subcommand " + r.Subcommand
				}
				out = append(out, ruleRecord{Family: fam.Name, Table: t.name, Rule: r.Name, Match: match, Suggest: r.Suggest})
			}
		}
	}
	return out
}

func runRulesList(cmd *cobra.Command, args []string) error {
	rs, err := policy.Load(Cfg.RulesOverlayPath())
	if err != nil {
		return err
	}

	family := ""
	if len(args) == 1 {
		family = args[0]
	}
	records := ruleRecords(rs, family)
	if len(records) == 0 {
		return fmt.Errorf("no rules for family %q", family)
	}

	p := newPrinter()
	return p.Record(records, func(w io.Writer) error {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FAMILY\tTABLE\tRULE\tMATCH\tSUGGEST")
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Family, r.Table, r.Rule, r.Match, r.Suggest)
		}
		return tw.Flush()
	})
}

// validateRecord is the result of `gw rules validate`.
type validateRecord struct {
	Overlay  string `json:"overlay"`
	Valid    bool   `json:"valid"`
	Families int    `json:"families,omitempty"`
	Error    string `json:"error,omitempty"`
}

func runRulesValidate(cmd *cobra.Command, args []string) error {
	overlay := Cfg.RulesOverlayPath()
	if len(args) == 1 {
		overlay = args[0]
	}
	if overlay == "" {
		return fmt.Errorf("no overlay configured: pass a file or set GW_ROOT")
	}

	p := newPrinter()
	rec := validateRecord{Overlay: overlay}

	if _, err := policy.LoadRuleSet(overlay); err != nil {
		rec.Error = err.Error()
	} else if rs, err := policy.Load(overlay); err != nil {
		rec.Error = err.Error()
	} else {
		rec.Valid = true
		rec.Families = len(rs.Families)
	}

	if err := p.Record(rec, func(w io.Writer) error {
		if rec.Valid {
			fmt.Fprintf(w, "%s %s (%d families after merge)\n", output.Status("pass"), overlay, rec.Families)
			return nil
		}
		fmt.Fprintf(w, "%s %s\n%s\n", output.Status("fail"), overlay, rec.Error)
		return nil
	}); err != nil {
		return err
	}
	if !rec.Valid {
		return errReported
	}
	return nil
}
