package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/AutumnsGrove/gw/internal/output"
	"github.com/spf13/cobra"
)

var checkExitCode bool

var checkCmd = &cobra.Command{
	Use:   "check -- <command line>",
	Short: "Show how a shell command line would be classified",
	Long: `Check runs a command line through the same interception gate as
gw hook and prints the decision. Nothing is executed.

Examples:
  gw check -- git status
  gw check -- 'git add . && git commit -m "wip"'
  gw check --json -- gh api -X POST /repos/o/r/issues`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkExitCode, "exit-code", false, "exit 2 when the command line would be blocked")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	line := strings.Join(args, " ")
	d := buildGate(cmd.Context()).Evaluate(line)
	if d.Command == "" {
		d.Command = line
	}

	p := newPrinter()
	err := p.Record(d, func(w io.Writer) error {
		fmt.Fprintf(w, "%s  %s\n", output.Status(d.Verdict.String()), d.Command)
		if d.Rule != "" {
			fmt.Fprintf(w, "%s\n", output.Dim("rule: "+d.Rule))
		}
		return nil
	})
	if err != nil {
		return err
	}
	if d.Verdict.Blocks() {
		p.Markdown(d.Message)
		if checkExitCode {
			return &exitError{code: 2}
		}
	}
	return nil
}
