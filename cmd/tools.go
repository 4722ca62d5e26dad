package cmd

import (
	"github.com/AutumnsGrove/gw/internal/wrap"
	"github.com/spf13/cobra"
)

var (
	fmtAll     bool
	lintFix    bool
	publishTag string
	publishDry bool
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [files...]",
	Short: "Format files with prettier",
	Long: `Fmt runs prettier --write. Without arguments it formats the changed
files in the current repository that prettier understands; --all formats
the whole tree.`,
	RunE: runFmt,
}

var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Run eslint",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, wrap.Lint(args, lintFix), nil)
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish packages",
}

var publishNPMCmd = &cobra.Command{
	Use:   "npm",
	Short: "Publish the package in the current directory to npm",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, wrap.PublishNPM(publishTag, publishDry), nil)
	},
}

func init() {
	fmtCmd.Flags().BoolVar(&fmtAll, "all", false, "format the whole tree")
	lintCmd.Flags().BoolVar(&lintFix, "fix", false, "apply automatic fixes")
	publishNPMCmd.Flags().StringVar(&publishTag, "tag", "", "dist-tag to publish under")
	publishNPMCmd.Flags().BoolVar(&publishDry, "dry-run", false, "pack and report without uploading")

	addWriteFlag(publishNPMCmd)

	publishCmd.AddCommand(publishNPMCmd)
	rootCmd.AddCommand(fmtCmd, lintCmd, publishCmd)
}

func runFmt(cmd *cobra.Command, args []string) error {
	files := args
	if len(files) == 0 && !fmtAll {
		changed, err := changedFiles()
		if err != nil {
			return err
		}
		files = wrap.Formattable(changed)
		if len(files) == 0 {
			newPrinter().Success("No changed files to format")
			return nil
		}
	}
	op, err := wrap.Fmt(files, fmtAll)
	return runOp(cmd, op, err)
}

// changedFiles lists modified, added and untracked paths that still exist.
func changedFiles() ([]string, error) {
	repo, err := openRepo()
	if err != nil {
		return nil, err
	}
	st, err := repo.Status()
	if err != nil {
		return nil, err
	}
	var files []string
	for _, c := range st.Changes {
		if c.Worktree == "D" || (c.Staging == "D" && c.Worktree == " ") {
			continue
		}
		files = append(files, c.Path)
	}
	return files, nil
}
