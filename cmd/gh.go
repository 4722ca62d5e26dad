package cmd

import (
	"github.com/AutumnsGrove/gw/internal/wrap"
	"github.com/spf13/cobra"
)

var ghCmd = &cobra.Command{
	Use:   "gh",
	Short: "Safety-tiered GitHub operations",
	Long: `Gh wraps the GitHub CLI with safety tiers and rate-limit awareness.

Listing and viewing are read-only. Creating, commenting, rerunning and
API writes need --write. Merging, closing pull requests, cancelling runs,
deleting releases and API DELETE calls are destructive.

Set github.repo (or GW_GITHUB_REPO) to target a repository other than the
one in the current directory.`,
}

var (
	ghPRCmd      = &cobra.Command{Use: "pr", Short: "Pull requests"}
	ghIssueCmd   = &cobra.Command{Use: "issue", Short: "Issues"}
	ghRunCmd     = &cobra.Command{Use: "run", Short: "Workflow runs"}
	ghReleaseCmd = &cobra.Command{Use: "release", Short: "Releases"}
)

// Flags for gh subcommands.
var (
	ghList         wrap.ListOptions
	ghRunList      wrap.RunListOptions
	ghPRCreate     wrap.PRCreateOptions
	ghRelease      wrap.ReleaseCreateOptions
	ghBody         string
	ghMergeMethod  string
	ghDeleteBranch bool
	ghIssueTitle   string
	ghIssueLabels  []string
	ghCloseReason  string
	ghRunLog       bool
	ghRunLogFailed bool
	ghRerunFailed  bool
	ghAPIMethod    string
	ghAPIFields    []string
)

var ghPRListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pull requests",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, githubBuilder().PRList(ghList), nil)
	},
}

var ghPRViewCmd = &cobra.Command{
	Use:   "view <number>",
	Short: "Show a pull request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := githubBuilder().PRView(args[0])
		return runOp(cmd, op, err)
	},
}

var ghPRCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Open a pull request from the current branch",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := githubBuilder().PRCreate(ghPRCreate)
		return runOp(cmd, op, err)
	},
}

var ghPRMergeCmd = &cobra.Command{
	Use:   "merge <number>",
	Short: "Merge a pull request (destructive)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := githubBuilder().PRMerge(args[0], ghMergeMethod, ghDeleteBranch)
		return runOp(cmd, op, err)
	},
}

var ghPRCloseCmd = &cobra.Command{
	Use:   "close <number>",
	Short: "Close a pull request without merging (destructive)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := githubBuilder().PRClose(args[0])
		return runOp(cmd, op, err)
	},
}

var ghPRCommentCmd = &cobra.Command{
	Use:   "comment <number>",
	Short: "Comment on a pull request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := githubBuilder().PRComment(args[0], ghBody)
		return runOp(cmd, op, err)
	},
}

var ghIssueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, githubBuilder().IssueList(ghList), nil)
	},
}

var ghIssueViewCmd = &cobra.Command{
	Use:   "view <number>",
	Short: "Show an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := githubBuilder().IssueView(args[0])
		return runOp(cmd, op, err)
	},
}

var ghIssueCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Open an issue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := githubBuilder().IssueCreate(ghIssueTitle, ghBody, ghIssueLabels)
		return runOp(cmd, op, err)
	},
}

var ghIssueCloseCmd = &cobra.Command{
	Use:   "close <number>",
	Short: "Close an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := githubBuilder().IssueClose(args[0], ghCloseReason)
		return runOp(cmd, op, err)
	},
}

var ghIssueCommentCmd = &cobra.Command{
	Use:   "comment <number>",
	Short: "Comment on an issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := githubBuilder().IssueComment(args[0], ghBody)
		return runOp(cmd, op, err)
	},
}

var ghRunListCmd = &cobra.Command{
	Use:   "list",
	Short: "List workflow runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOp(cmd, githubBuilder().RunList(ghRunList), nil)
	},
}

var ghRunViewCmd = &cobra.Command{
	Use:   "view <run-id>",
	Short: "Show a workflow run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := githubBuilder().RunView(args[0], ghRunLog, ghRunLogFailed)
		return runOp(cmd, op, err)
	},
}

var ghRunRerunCmd = &cobra.Command{
	Use:   "rerun <run-id>",
	Short: "Rerun a workflow run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := githubBuilder().RunRerun(args[0], ghRerunFailed)
		return runOp(cmd, op, err)
	},
}

var ghRunCancelCmd = &cobra.Command{
	Use:   "cancel <run-id>",
	Short: "Cancel a workflow run (destructive)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := githubBuilder().RunCancel(args[0])
		return runOp(cmd, op, err)
	},
}

var ghReleaseCreateCmd = &cobra.Command{
	Use:   "create <tag>",
	Short: "Publish a release",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o := ghRelease
		o.Tag = args[0]
		op, err := githubBuilder().ReleaseCreate(o)
		return runOp(cmd, op, err)
	},
}

var ghReleaseDeleteCmd = &cobra.Command{
	Use:   "delete <tag>",
	Short: "Delete a release (destructive)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := githubBuilder().ReleaseDelete(args[0])
		return runOp(cmd, op, err)
	},
}

var ghAPICmd = &cobra.Command{
	Use:   "api <path>",
	Short: "Call the GitHub REST API",
	Long: `Api calls the GitHub REST API. The tier follows the HTTP method: GET is
read-only, DELETE is destructive and everything else needs --write.
Without -X the method is GET, or POST when fields are given.

Examples:
  gw gh api repos/{owner}/{repo}/pulls
  gw gh api --write repos/{owner}/{repo}/issues/7/labels -f labels[]=bug
  gw gh api --write -X DELETE repos/{owner}/{repo}/git/refs/heads/old`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op, err := githubBuilder().API(ghAPIMethod, args[0], ghAPIFields)
		return runOp(cmd, op, err)
	},
}

func addListFlags(c *cobra.Command) {
	c.Flags().StringVarP(&ghList.State, "state", "s", "", "filter by state (open, closed, merged, all)")
	c.Flags().StringVar(&ghList.Author, "author", "", "filter by author")
	c.Flags().StringVarP(&ghList.Label, "label", "l", "", "filter by label")
	c.Flags().IntVarP(&ghList.Limit, "limit", "L", 30, "maximum number of results")
}

func init() {
	addListFlags(ghPRListCmd)
	addListFlags(ghIssueListCmd)

	ghPRCreateCmd.Flags().StringVarP(&ghPRCreate.Title, "title", "t", "", "pull request title")
	ghPRCreateCmd.Flags().StringVarP(&ghPRCreate.Body, "body", "b", "", "pull request body")
	ghPRCreateCmd.Flags().StringVarP(&ghPRCreate.Base, "base", "B", "", "base branch")
	ghPRCreateCmd.Flags().BoolVarP(&ghPRCreate.Draft, "draft", "d", false, "open as draft")
	ghPRMergeCmd.Flags().StringVar(&ghMergeMethod, "method", "squash", "merge, squash or rebase")
	ghPRMergeCmd.Flags().BoolVar(&ghDeleteBranch, "delete-branch", false, "delete the head branch after merging")

	for _, c := range []*cobra.Command{ghPRCommentCmd, ghIssueCommentCmd, ghIssueCreateCmd} {
		c.Flags().StringVarP(&ghBody, "body", "b", "", "text body")
	}
	ghIssueCreateCmd.Flags().StringVarP(&ghIssueTitle, "title", "t", "", "issue title")
	ghIssueCreateCmd.Flags().StringSliceVarP(&ghIssueLabels, "label", "l", nil, "labels to add")
	ghIssueCloseCmd.Flags().StringVarP(&ghCloseReason, "reason", "r", "", "completed or \"not planned\"")

	ghRunListCmd.Flags().StringVarP(&ghRunList.Workflow, "workflow", "w", "", "filter by workflow")
	ghRunListCmd.Flags().StringVarP(&ghRunList.Branch, "branch", "b", "", "filter by branch")
	ghRunListCmd.Flags().StringVarP(&ghRunList.Status, "status", "s", "", "filter by status")
	ghRunListCmd.Flags().IntVarP(&ghRunList.Limit, "limit", "L", 20, "maximum number of runs")
	ghRunViewCmd.Flags().BoolVar(&ghRunLog, "log", false, "print the full log")
	ghRunViewCmd.Flags().BoolVar(&ghRunLogFailed, "log-failed", false, "print logs of failed steps")
	ghRunRerunCmd.Flags().BoolVar(&ghRerunFailed, "failed", false, "rerun only failed jobs")

	ghReleaseCreateCmd.Flags().StringVarP(&ghRelease.Title, "title", "t", "", "release title")
	ghReleaseCreateCmd.Flags().StringVarP(&ghRelease.Notes, "notes", "n", "", "release notes (generated when empty)")
	ghReleaseCreateCmd.Flags().BoolVarP(&ghRelease.Draft, "draft", "d", false, "save as draft")
	ghReleaseCreateCmd.Flags().BoolVarP(&ghRelease.Prerelease, "prerelease", "p", false, "mark as prerelease")

	ghAPICmd.Flags().StringVarP(&ghAPIMethod, "method", "X", "", "HTTP method")
	ghAPICmd.Flags().StringArrayVarP(&ghAPIFields, "field", "f", nil, "request field key=value")

	addWriteFlag(ghPRCreateCmd, ghPRMergeCmd, ghPRCloseCmd, ghPRCommentCmd,
		ghIssueCreateCmd, ghIssueCloseCmd, ghIssueCommentCmd,
		ghRunRerunCmd, ghRunCancelCmd, ghReleaseCreateCmd, ghReleaseDeleteCmd, ghAPICmd)

	ghPRCmd.AddCommand(ghPRListCmd, ghPRViewCmd, ghPRCreateCmd, ghPRMergeCmd, ghPRCloseCmd, ghPRCommentCmd)
	ghIssueCmd.AddCommand(ghIssueListCmd, ghIssueViewCmd, ghIssueCreateCmd, ghIssueCloseCmd, ghIssueCommentCmd)
	ghRunCmd.AddCommand(ghRunListCmd, ghRunViewCmd, ghRunRerunCmd, ghRunCancelCmd)
	ghReleaseCmd.AddCommand(ghReleaseCreateCmd, ghReleaseDeleteCmd)
	ghCmd.AddCommand(ghPRCmd, ghIssueCmd, ghRunCmd, ghReleaseCmd, ghAPICmd)
	rootCmd.AddCommand(ghCmd)
}
