package cmd

import (
	"log/slog"
	"os"

	"github.com/AutumnsGrove/gw/internal/hook"
	"github.com/spf13/cobra"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Evaluate an agent's pending shell command (PreToolUse hook)",
	Long: `Hook reads one PreToolUse event as JSON on stdin and decides whether
the shell command it carries may run.

Allowed commands produce no output. A blocked command produces a single
JSON document on stdout carrying the block message and, where one
exists, the gw command to use instead. The exit status is always 0;
malformed input is allowed with a warning on stderr.

Register it as a PreToolUse hook for the Bash tool:

  {"hooks": {"PreToolUse": [{"matcher": "Bash",
    "hooks": [{"type": "command", "command": "gw hook"}]}]}}`,
	Args: cobra.NoArgs,
	RunE: runHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func runHook(cmd *cobra.Command, args []string) error {
	gate := buildGate(cmd.Context())
	// The exit status is 0 even when the block document cannot be written.
	if err := hook.Handle(os.Stdin, os.Stdout, gate); err != nil {
		slog.Error("hook output failed", "error", err)
	}
	return nil
}
