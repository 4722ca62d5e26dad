package wrap

import (
	"regexp"
	"strconv"
)

// conventionalCommit matches a Conventional Commits header:
// type(optional-scope)!: description
var conventionalCommit = regexp.MustCompile(
	`^(feat|fix|docs|style|refactor|perf|test|build|ci|chore|revert)(\([\w./-]+\))?!?: \S.*`)

// ValidateCommitMessage checks the first line of msg against Conventional
// Commits.
func ValidateCommitMessage(msg string) error {
	header := msg
	for i, r := range msg {
		if r == '\n' {
			header = msg[:i]
			break
		}
	}
	if !conventionalCommit.MatchString(header) {
		return usagef("commit message %q does not follow Conventional Commits: use \"type(scope): description\" "+
			"with type one of feat, fix, docs, style, refactor, perf, test, build, ci, chore, revert", header)
	}
	return nil
}

func gitOp(name string, args ...string) Op {
	return Op{Name: name, Tool: "git", Args: args}
}

// GitLog shows recent history.
func GitLog(limit int, oneline bool, extra ...string) Op {
	args := []string{"log"}
	if limit > 0 {
		args = append(args, "-n", strconv.Itoa(limit))
	}
	if oneline {
		args = append(args, "--oneline")
	}
	return gitOp("git_log", append(args, extra...)...)
}

// GitDiff shows unstaged, or with staged the staged, changes.
func GitDiff(staged bool, paths ...string) Op {
	args := []string{"diff"}
	if staged {
		args = append(args, "--staged")
	}
	if len(paths) > 0 {
		args = append(append(args, "--"), paths...)
	}
	return gitOp("git_diff", args...)
}

// GitBranchCreate creates a branch at HEAD or at start.
func GitBranchCreate(name, start string) (Op, error) {
	if name == "" {
		return Op{}, usagef("branch name is required")
	}
	args := []string{"branch", name}
	if start != "" {
		args = append(args, start)
	}
	return gitOp("git_branch_create", args...), nil
}

// GitBranchDelete deletes a branch; force allows unmerged branches.
func GitBranchDelete(name string, force bool) (Op, error) {
	if name == "" {
		return Op{}, usagef("branch name is required")
	}
	flag := "-d"
	if force {
		flag = "-D"
	}
	return gitOp("git_branch_delete", "branch", flag, name), nil
}

// GitCommit records staged changes. all stages tracked modifications first.
func GitCommit(message string, all bool) (Op, error) {
	if err := ValidateCommitMessage(message); err != nil {
		return Op{}, err
	}
	args := []string{"commit"}
	if all {
		args = append(args, "-a")
	}
	return gitOp("git_commit", append(args, "-m", message)...), nil
}

// GitAdd stages paths, or everything with all.
func GitAdd(paths []string, all bool) (Op, error) {
	switch {
	case all:
		return gitOp("git_add", "add", "--all"), nil
	case len(paths) == 0:
		return Op{}, usagef("nothing to add: give paths or --all")
	default:
		return gitOp("git_add", append([]string{"add", "--"}, paths...)...), nil
	}
}

// PushOptions configures GitPush.
type PushOptions struct {
	Remote      string
	Branch      string
	Force       bool
	SetUpstream bool
}

// GitPush pushes to the remote. Force pushes use --force-with-lease and
// are destructive.
func GitPush(o PushOptions) Op {
	name := "git_push"
	args := []string{"push"}
	if o.Force {
		name = "git_push_force"
		args = append(args, "--force-with-lease")
	}
	if o.SetUpstream {
		args = append(args, "--set-upstream")
	}
	if o.Remote != "" {
		args = append(args, o.Remote)
		if o.Branch != "" {
			args = append(args, o.Branch)
		}
	}
	return gitOp(name, args...)
}

// GitPull fetches and integrates. rebase selects --rebase over a merge.
func GitPull(remote, branch string, rebase bool) Op {
	args := []string{"pull"}
	if rebase {
		args = append(args, "--rebase")
	}
	if remote != "" {
		args = append(args, remote)
		if branch != "" {
			args = append(args, branch)
		}
	}
	return gitOp("git_pull", args...)
}

// GitSwitch changes branch; create makes the branch first.
func GitSwitch(branch string, create bool) (Op, error) {
	if branch == "" {
		return Op{}, usagef("branch name is required")
	}
	args := []string{"switch"}
	if create {
		args = append(args, "-c")
	}
	return gitOp("git_switch", append(args, branch)...), nil
}

// GitStash runs a stash action: push (default), pop, apply, list or drop.
func GitStash(action, message string) (Op, error) {
	switch action {
	case "", "push":
		args := []string{"stash", "push"}
		if message != "" {
			args = append(args, "-m", message)
		}
		return gitOp("git_stash", args...), nil
	case "pop", "apply":
		return gitOp("git_stash", "stash", action), nil
	case "list":
		return gitOp("git_stash_list", "stash", "list"), nil
	case "drop":
		return gitOp("git_stash_drop", "stash", "drop"), nil
	default:
		return Op{}, usagef("unknown stash action %q: use push, pop, apply, list or drop", action)
	}
}

// GitReset moves HEAD. hard discards working tree changes and is
// destructive.
func GitReset(target string, hard bool) Op {
	name := "git_reset"
	args := []string{"reset"}
	if hard {
		name = "git_reset_hard"
		args = append(args, "--hard")
	}
	if target != "" {
		args = append(args, target)
	}
	return gitOp(name, args...)
}

// GitMerge merges branch into the current branch.
func GitMerge(branch string, noFF bool) (Op, error) {
	if branch == "" {
		return Op{}, usagef("branch to merge is required")
	}
	args := []string{"merge"}
	if noFF {
		args = append(args, "--no-ff")
	}
	return gitOp("git_merge", append(args, branch)...), nil
}

// GitRebase rebases the current branch onto upstream.
func GitRebase(upstream string) (Op, error) {
	if upstream == "" {
		return Op{}, usagef("upstream is required")
	}
	return gitOp("git_rebase", "rebase", upstream), nil
}

// GitCherryPick applies the given commits.
func GitCherryPick(commits ...string) (Op, error) {
	if len(commits) == 0 {
		return Op{}, usagef("at least one commit is required")
	}
	return gitOp("git_cherry_pick", append([]string{"cherry-pick"}, commits...)...), nil
}
