package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/AutumnsGrove/gw/internal/gitrepo"
	"github.com/AutumnsGrove/gw/internal/output"
	"github.com/AutumnsGrove/gw/internal/wrap"
	"github.com/spf13/cobra"
)

var gitCmd = &cobra.Command{
	Use:   "git",
	Short: "Safety-tiered git operations",
	Long: `Git wraps git with safety tiers.

  read-only      status, log, diff, branch (list), stash list
  guarded write  commit, add, push, pull, switch, stash, branch create,
                 reset, merge, cherry-pick (need --write)
  destructive    push --force, branch --delete, reset --hard, rebase,
                 stash drop (need --write and, at a terminal, confirmation)

Commit messages must follow Conventional Commits.`,
}

// Flags for git subcommands.
var (
	gitLogLimit     int
	gitLogOneline   bool
	gitDiffStaged   bool
	gitBranchDelete string
	gitBranchForce  bool
	gitCommitMsg    string
	gitCommitAll    bool
	gitAddAll       bool
	gitPushForce    bool
	gitPushUpstream bool
	gitPullRebase   bool
	gitSwitchCreate bool
	gitStashMessage string
	gitResetHard    bool
	gitMergeNoFF    bool
)

var gitStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the working tree status",
	Args:  cobra.NoArgs,
	RunE:  runGitStatus,
}

var gitLogCmd = &cobra.Command{
	Use:   "log [-- <git log args>]",
	Short: "Show commit history",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, wrap.GitLog(gitLogLimit, gitLogOneline, args...), nil)
	},
}

var gitDiffCmd = &cobra.Command{
	Use:   "diff [paths...]",
	Short: "Show changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, wrap.GitDiff(gitDiffStaged, args...), nil)
	},
}

var gitBranchCmd = &cobra.Command{
	Use:   "branch [name [start]]",
	Short: "List, create or delete branches",
	Long: `Branch lists local branches when called without arguments, creates a
branch when given a name (--write), and deletes one with --delete
(--write, destructive).

Examples:
  gw git branch
  gw git branch --write feature/login
  gw git branch --write --delete old-feature`,
	Args: cobra.MaximumNArgs(2),
	RunE: runGitBranch,
}

var gitCommitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Record staged changes (Conventional Commits)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := wrap.GitCommit(gitCommitMsg, gitCommitAll)
		return runOp(cmd, op, err)
	},
}

var gitAddCmd = &cobra.Command{
	Use:   "add [paths...]",
	Short: "Stage changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := wrap.GitAdd(args, gitAddAll)
		return runOp(cmd, op, err)
	},
}

var gitPushCmd = &cobra.Command{
	Use:   "push [remote [branch]]",
	Short: "Push commits (--force is destructive)",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		o := wrap.PushOptions{Force: gitPushForce, SetUpstream: gitPushUpstream}
		if len(args) > 0 {
			o.Remote = args[0]
		}
		if len(args) > 1 {
			o.Branch = args[1]
		}
		return runOp(cmd, wrap.GitPush(o), nil)
	},
}

var gitPullCmd = &cobra.Command{
	Use:   "pull [remote [branch]]",
	Short: "Fetch and integrate remote changes",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		remote, branch := "", ""
		if len(args) > 0 {
			remote = args[0]
		}
		if len(args) > 1 {
			branch = args[1]
		}
		return runOp(cmd, wrap.GitPull(remote, branch, gitPullRebase), nil)
	},
}

var gitSwitchCmd = &cobra.Command{
	Use:   "switch <branch>",
	Short: "Switch branches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := wrap.GitSwitch(args[0], gitSwitchCreate)
		return runOp(cmd, op, err)
	},
}

var gitStashCmd = &cobra.Command{
	Use:   "stash [push|pop|apply|list|drop]",
	Short: "Stash working tree changes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		action := ""
		if len(args) == 1 {
			action = args[0]
		}
		op, err := wrap.GitStash(action, gitStashMessage)
		return runOp(cmd, op, err)
	},
}

var gitResetCmd = &cobra.Command{
	Use:   "reset [commit]",
	Short: "Move HEAD (--hard is destructive)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := ""
		if len(args) == 1 {
			target = args[0]
		}
		return runOp(cmd, wrap.GitReset(target, gitResetHard), nil)
	},
}

var gitMergeCmd = &cobra.Command{
	Use:   "merge <branch>",
	Short: "Merge a branch into the current branch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := wrap.GitMerge(args[0], gitMergeNoFF)
		return runOp(cmd, op, err)
	},
}

var gitRebaseCmd = &cobra.Command{
	Use:   "rebase <upstream>",
	Short: "Rebase the current branch (destructive)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := wrap.GitRebase(args[0])
		return runOp(cmd, op, err)
	},
}

var gitCherryPickCmd = &cobra.Command{
	Use:   "cherry-pick <commit>...",
	Short: "Apply existing commits",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := wrap.GitCherryPick(args...)
		return runOp(cmd, op, err)
	},
}

func init() {
	gitLogCmd.Flags().IntVarP(&gitLogLimit, "limit", "n", 10, "number of commits to show")
	gitLogCmd.Flags().BoolVar(&gitLogOneline, "oneline", true, "one line per commit")
	gitDiffCmd.Flags().BoolVar(&gitDiffStaged, "staged", false, "show staged changes")
	gitBranchCmd.Flags().StringVarP(&gitBranchDelete, "delete", "d", "", "delete the named branch")
	gitBranchCmd.Flags().BoolVarP(&gitBranchForce, "force", "D", false, "delete even if unmerged")
	gitCommitCmd.Flags().StringVarP(&gitCommitMsg, "message", "m", "", "commit message, e.g. \"feat(auth): add login\"")
	gitCommitCmd.Flags().BoolVarP(&gitCommitAll, "all", "a", false, "stage tracked modifications first")
	_ = gitCommitCmd.MarkFlagRequired("message")
	gitAddCmd.Flags().BoolVarP(&gitAddAll, "all", "A", false, "stage every change")
	gitPushCmd.Flags().BoolVarP(&gitPushForce, "force", "f", false, "force push with lease (destructive)")
	gitPushCmd.Flags().BoolVarP(&gitPushUpstream, "set-upstream", "u", false, "set upstream tracking")
	gitPullCmd.Flags().BoolVar(&gitPullRebase, "rebase", false, "rebase instead of merge")
	gitSwitchCmd.Flags().BoolVarP(&gitSwitchCreate, "create", "c", false, "create the branch first")
	gitStashCmd.Flags().StringVarP(&gitStashMessage, "message", "m", "", "stash message")
	gitResetCmd.Flags().BoolVar(&gitResetHard, "hard", false, "discard working tree changes (destructive)")
	gitMergeCmd.Flags().BoolVar(&gitMergeNoFF, "no-ff", false, "always create a merge commit")

	addWriteFlag(gitBranchCmd, gitCommitCmd, gitAddCmd, gitPushCmd, gitPullCmd, gitSwitchCmd,
		gitStashCmd, gitResetCmd, gitMergeCmd, gitRebaseCmd, gitCherryPickCmd)

	gitCmd.AddCommand(gitStatusCmd, gitLogCmd, gitDiffCmd, gitBranchCmd, gitCommitCmd, gitAddCmd,
		gitPushCmd, gitPullCmd, gitSwitchCmd, gitStashCmd, gitResetCmd, gitMergeCmd, gitRebaseCmd,
		gitCherryPickCmd)
	rootCmd.AddCommand(gitCmd)
}

func openRepo() (*gitrepo.Repo, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return gitrepo.Open(dir)
}

func runGitStatus(cmd *cobra.Command, args []string) error {
	p := newPrinter()
	if err := newService(p).Authorize("git_status", writeFlag); err != nil {
		return err
	}

	repo, err := openRepo()
	if err != nil {
		return err
	}
	st, err := repo.Status()
	if err != nil {
		return err
	}

	return p.Record(st, func(w io.Writer) error {
		branch := st.Branch
		if branch == "" {
			branch = "(detached HEAD)"
		}
		fmt.Fprintf(w, "On branch %s\n", branch)
		if st.Clean {
			fmt.Fprintln(w, output.Dim("nothing to commit, working tree clean"))
			return nil
		}
		for _, c := range st.Changes {
			fmt.Fprintln(w, c.Short())
		}
		return nil
	})
}

// branchList is the JSON record for a branch listing.
type branchList struct {
	Current  string   `json:"current"`
	Branches []string `json:"branches"`
}

func runGitBranch(cmd *cobra.Command, args []string) error {
	switch {
	case gitBranchDelete != "":
		op, err := wrap.GitBranchDelete(gitBranchDelete, gitBranchForce)
		return runOp(cmd, op, err)
	case len(args) > 0:
		start := ""
		if len(args) == 2 {
			start = args[1]
		}
		op, err := wrap.GitBranchCreate(args[0], start)
		return runOp(cmd, op, err)
	}

	p := newPrinter()
	if err := newService(p).Authorize("git_branch_list", writeFlag); err != nil {
		return err
	}
	repo, err := openRepo()
	if err != nil {
		return err
	}
	current, err := repo.CurrentBranch()
	if err != nil {
		return err
	}
	branches, err := repo.Branches()
	if err != nil {
		return err
	}

	return p.Record(branchList{Current: current, Branches: branches}, func(w io.Writer) error {
		for _, b := range branches {
			marker := "  "
			if b == current {
				marker = "* "
			}
			fmt.Fprintln(w, marker+b)
		}
		return nil
	})
}
