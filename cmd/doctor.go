package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/AutumnsGrove/gw/internal/doctor"
	"github.com/AutumnsGrove/gw/internal/exec"
	"github.com/AutumnsGrove/gw/internal/output"
	"github.com/AutumnsGrove/gw/internal/ratelimit"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check tools, credentials and configuration",
	Long: `Doctor runs diagnostic checks for everything gw depends on: git, the
GitHub CLI and its login, wrangler, npx, the configuration file, the rule
overlay, any Rego extension, the current repository and the GitHub API
quota.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	p := newPrinter()

	runner := exec.CommandRunner{}
	dir, err := os.Getwd()
	if err != nil {
		dir = ""
	}

	report := doctor.RunAll(cmd.Context(), doctor.Env{
		Config:  Cfg,
		Runner:  runner,
		Dir:     dir,
		Fetcher: ratelimit.GHFetcher{Runner: runner},
	})

	if err := p.Record(report, func(w io.Writer) error {
		p.Header("gw doctor")
		fmt.Fprintln(w)
		for _, r := range report.Results {
			fmt.Fprintf(w, "  %-5s %s: %s\n", output.Status(r.Status), r.Name, r.Message)
			if r.Remediation != "" && r.Status != "pass" {
				fmt.Fprintf(w, "        %s\n", output.Dim("fix: "+r.Remediation))
			}
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%d passed, %d warnings, %d failed\n",
			report.Count("pass"), report.Count("warn"), report.Count("fail"))
		return nil
	}); err != nil {
		return err
	}

	if report.HasFailures() {
		return errReported
	}
	return nil
}
