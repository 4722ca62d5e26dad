// Package gitrepo inspects the working repository without shelling out.
// It never writes.
package gitrepo

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ErrNotRepository is returned when no repository encloses the path.
var ErrNotRepository = errors.New("not a git repository")

// Repo is an opened repository.
type Repo struct {
	repo *git.Repository
}

// Open finds the repository enclosing path, walking up to parent directories.
func Open(path string) (*Repo, error) {
	r, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, ErrNotRepository
		}
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return &Repo{repo: r}, nil
}

// CurrentBranch returns the short name of the checked-out branch. An
// unborn branch is still reported by name; a detached HEAD returns "".
func (r *Repo) CurrentBranch() (string, error) {
	head, err := r.repo.Storer.Reference(plumbing.HEAD)
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", err)
	}
	if head.Type() == plumbing.SymbolicReference {
		return head.Target().Short(), nil
	}
	return "", nil
}

// Branches lists local branch names in sorted order.
func (r *Repo) Branches() ([]string, error) {
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	defer iter.Close()

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// FileChange is one path with its staged and unstaged state, using git's
// short status codes.
type FileChange struct {
	Path     string `json:"path"`
	Staging  string `json:"staging"`
	Worktree string `json:"worktree"`
}

// Status summarises the working tree.
type Status struct {
	Branch  string       `json:"branch"`
	Clean   bool         `json:"clean"`
	Changes []FileChange `json:"changes,omitempty"`
}

// Status reads the working tree state.
func (r *Repo) Status() (*Status, error) {
	wt, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree: %w", err)
	}
	st, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("reading status: %w", err)
	}

	branch, err := r.CurrentBranch()
	if err != nil {
		return nil, err
	}

	out := &Status{Branch: branch, Clean: st.IsClean()}
	for path, fs := range st {
		if fs.Staging == git.Unmodified && fs.Worktree == git.Unmodified {
			continue
		}
		out.Changes = append(out.Changes, FileChange{
			Path:     path,
			Staging:  string(rune(fs.Staging)),
			Worktree: string(rune(fs.Worktree)),
		})
	}
	sort.Slice(out.Changes, func(i, j int) bool { return out.Changes[i].Path < out.Changes[j].Path })
	return out, nil
}

// Short renders a change the way `git status --short` does.
func (c FileChange) Short() string {
	return c.Staging + c.Worktree + " " + c.Path
}
