package wrap

import (
	"strconv"
	"strings"
)

// GitHub builds gh operations. Repo, when set, is passed as --repo to
// every repository-scoped command.
type GitHub struct {
	Repo string
}

func (g GitHub) op(name string, args ...string) Op {
	if g.Repo != "" {
		args = append(args, "--repo", g.Repo)
	}
	return Op{Name: name, Tool: "gh", Args: args, GitHub: true}
}

func requireNumber(kind, n string) error {
	if _, err := strconv.Atoi(n); err != nil || strings.HasPrefix(n, "-") {
		return usagef("%s must be a number, got %q", kind, n)
	}
	return nil
}

// ListOptions filters list commands.
type ListOptions struct {
	State  string
	Author string
	Label  string
	Limit  int
}

func (o ListOptions) args() []string {
	var args []string
	if o.State != "" {
		args = append(args, "--state", o.State)
	}
	if o.Author != "" {
		args = append(args, "--author", o.Author)
	}
	if o.Label != "" {
		args = append(args, "--label", o.Label)
	}
	if o.Limit > 0 {
		args = append(args, "--limit", strconv.Itoa(o.Limit))
	}
	return args
}

// PRList lists pull requests.
func (g GitHub) PRList(o ListOptions) Op {
	return g.op("gh_pr_list", append([]string{"pr", "list"}, o.args()...)...)
}

// PRView shows one pull request.
func (g GitHub) PRView(number string) (Op, error) {
	if err := requireNumber("pull request", number); err != nil {
		return Op{}, err
	}
	return g.op("gh_pr_view", "pr", "view", number), nil
}

// PRCreateOptions describes a new pull request.
type PRCreateOptions struct {
	Title string
	Body  string
	Base  string
	Draft bool
}

// PRCreate opens a pull request from the current branch.
func (g GitHub) PRCreate(o PRCreateOptions) (Op, error) {
	if o.Title == "" {
		return Op{}, usagef("pull request title is required")
	}
	args := []string{"pr", "create", "--title", o.Title, "--body", o.Body}
	if o.Base != "" {
		args = append(args, "--base", o.Base)
	}
	if o.Draft {
		args = append(args, "--draft")
	}
	return g.op("gh_pr_create", args...), nil
}

// PRMerge merges a pull request with method merge, squash or rebase.
func (g GitHub) PRMerge(number, method string, deleteBranch bool) (Op, error) {
	if err := requireNumber("pull request", number); err != nil {
		return Op{}, err
	}
	if method == "" {
		method = "squash"
	}
	switch method {
	case "merge", "squash", "rebase":
	default:
		return Op{}, usagef("unknown merge method %q: use merge, squash or rebase", method)
	}
	args := []string{"pr", "merge", number, "--" + method}
	if deleteBranch {
		args = append(args, "--delete-branch")
	}
	return g.op("gh_pr_merge", args...), nil
}

// PRClose closes a pull request without merging.
func (g GitHub) PRClose(number string) (Op, error) {
	if err := requireNumber("pull request", number); err != nil {
		return Op{}, err
	}
	return g.op("gh_pr_close", "pr", "close", number), nil
}

// PRComment adds a comment to a pull request.
func (g GitHub) PRComment(number, body string) (Op, error) {
	if err := requireNumber("pull request", number); err != nil {
		return Op{}, err
	}
	if body == "" {
		return Op{}, usagef("comment body is required")
	}
	return g.op("gh_pr_comment", "pr", "comment", number, "--body", body), nil
}

// IssueList lists issues.
func (g GitHub) IssueList(o ListOptions) Op {
	return g.op("gh_issue_list", append([]string{"issue", "list"}, o.args()...)...)
}

// IssueView shows one issue.
func (g GitHub) IssueView(number string) (Op, error) {
	if err := requireNumber("issue", number); err != nil {
		return Op{}, err
	}
	return g.op("gh_issue_view", "issue", "view", number), nil
}

// IssueCreate opens an issue.
func (g GitHub) IssueCreate(title, body string, labels []string) (Op, error) {
	if title == "" {
		return Op{}, usagef("issue title is required")
	}
	args := []string{"issue", "create", "--title", title, "--body", body}
	for _, l := range labels {
		args = append(args, "--label", l)
	}
	return g.op("gh_issue_create", args...), nil
}

// IssueClose closes an issue, optionally with a reason (completed or
// "not planned").
func (g GitHub) IssueClose(number, reason string) (Op, error) {
	if err := requireNumber("issue", number); err != nil {
		return Op{}, err
	}
	args := []string{"issue", "close", number}
	if reason != "" {
		args = append(args, "--reason", reason)
	}
	return g.op("gh_issue_close", args...), nil
}

// IssueComment adds a comment to an issue.
func (g GitHub) IssueComment(number, body string) (Op, error) {
	if err := requireNumber("issue", number); err != nil {
		return Op{}, err
	}
	if body == "" {
		return Op{}, usagef("comment body is required")
	}
	return g.op("gh_issue_comment", "issue", "comment", number, "--body", body), nil
}

// RunListOptions filters workflow runs.
type RunListOptions struct {
	Workflow string
	Branch   string
	Status   string
	Limit    int
}

// RunList lists workflow runs.
func (g GitHub) RunList(o RunListOptions) Op {
	args := []string{"run", "list"}
	if o.Workflow != "" {
		args = append(args, "--workflow", o.Workflow)
	}
	if o.Branch != "" {
		args = append(args, "--branch", o.Branch)
	}
	if o.Status != "" {
		args = append(args, "--status", o.Status)
	}
	if o.Limit > 0 {
		args = append(args, "--limit", strconv.Itoa(o.Limit))
	}
	return g.op("gh_run_list", args...)
}

// RunView shows a workflow run. log fetches full logs, failedLog only the
// failed jobs.
func (g GitHub) RunView(id string, log, failedLog bool) (Op, error) {
	if err := requireNumber("run id", id); err != nil {
		return Op{}, err
	}
	args := []string{"run", "view", id}
	switch {
	case failedLog:
		args = append(args, "--log-failed")
	case log:
		args = append(args, "--log")
	}
	return g.op("gh_run_view", args...), nil
}

// RunRerun reruns a workflow run, or only its failed jobs.
func (g GitHub) RunRerun(id string, failedOnly bool) (Op, error) {
	if err := requireNumber("run id", id); err != nil {
		return Op{}, err
	}
	args := []string{"run", "rerun", id}
	if failedOnly {
		args = append(args, "--failed")
	}
	return g.op("gh_run_rerun", args...), nil
}

// RunCancel cancels an in-progress workflow run.
func (g GitHub) RunCancel(id string) (Op, error) {
	if err := requireNumber("run id", id); err != nil {
		return Op{}, err
	}
	return g.op("gh_run_cancel", "run", "cancel", id), nil
}

// ReleaseCreateOptions describes a new release.
type ReleaseCreateOptions struct {
	Tag        string
	Title      string
	Notes      string
	Draft      bool
	Prerelease bool
}

// ReleaseCreate publishes a release for a tag.
func (g GitHub) ReleaseCreate(o ReleaseCreateOptions) (Op, error) {
	if o.Tag == "" {
		return Op{}, usagef("release tag is required")
	}
	args := []string{"release", "create", o.Tag}
	if o.Title != "" {
		args = append(args, "--title", o.Title)
	}
	if o.Notes != "" {
		args = append(args, "--notes", o.Notes)
	} else {
		args = append(args, "--generate-notes")
	}
	if o.Draft {
		args = append(args, "--draft")
	}
	if o.Prerelease {
		args = append(args, "--prerelease")
	}
	return g.op("gh_release_create", args...), nil
}

// ReleaseDelete deletes a release. gh's own prompt is suppressed; the
// safety gate has already confirmed.
func (g GitHub) ReleaseDelete(tag string) (Op, error) {
	if tag == "" {
		return Op{}, usagef("release tag is required")
	}
	return g.op("gh_release_delete", "release", "delete", tag, "--yes"), nil
}

// API builds a raw REST call. An empty method defaults to GET, or POST
// when fields are given, matching gh. GET is read-only, DELETE is
// destructive and every other method is a guarded write.
func (g GitHub) API(method, path string, fields []string) (Op, error) {
	if path == "" {
		return Op{}, usagef("API path is required")
	}
	method = strings.ToUpper(method)
	if method == "" {
		method = "GET"
		if len(fields) > 0 {
			method = "POST"
		}
	}

	name := "gh_api_write"
	switch method {
	case "GET":
		name = "gh_api_get"
	case "DELETE":
		name = "gh_api_delete"
	case "POST", "PUT", "PATCH":
	default:
		return Op{}, usagef("unsupported HTTP method %q", method)
	}

	args := []string{"api", "-X", method, path}
	for _, f := range fields {
		args = append(args, "-f", f)
	}
	return Op{Name: name, Tool: "gh", Args: args, GitHub: true}, nil
}
