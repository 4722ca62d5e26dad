package gitrepo

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func initRepo(t *testing.T) (string, *git.Repository) {
	t.Helper()
	dir := t.TempDir()
	r, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName("main")},
	})
	require.NoError(t, err)
	return dir, r
}

func commitFile(t *testing.T, dir string, r *git.Repository, name, content string) plumbing.Hash {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	wt, err := r.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	h, err := wt.Commit("feat: add "+name, &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return h
}

func TestOpenNotRepository(t *testing.T) {
	_, err := Open(t.TempDir())
	assert.ErrorIs(t, err, ErrNotRepository)
}

func TestOpenDetectsParent(t *testing.T) {
	dir, _ := initRepo(t)
	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	repo, err := Open(sub)
	require.NoError(t, err)
	branch, err := repo.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "main", branch)
}

func TestBranches(t *testing.T) {
	dir, r := initRepo(t)
	h := commitFile(t, dir, r, "README.md", "hello\n")
	require.NoError(t, r.Storer.SetReference(plumbing.NewHashReference(plumbing.NewBranchReferenceName("feature/x"), h)))

	repo, err := Open(dir)
	require.NoError(t, err)
	branches, err := repo.Branches()
	require.NoError(t, err)
	assert.Equal(t, []string{"feature/x", "main"}, branches)
}

func TestStatus(t *testing.T) {
	dir, r := initRepo(t)
	commitFile(t, dir, r, "README.md", "hello\n")

	repo, err := Open(dir)
	require.NoError(t, err)

	st, err := repo.Status()
	require.NoError(t, err)
	assert.True(t, st.Clean)
	assert.Equal(t, "main", st.Branch)
	assert.Empty(t, st.Changes)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("changed\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x\n"), 0o644))

	st, err = repo.Status()
	require.NoError(t, err)
	assert.False(t, st.Clean)
	require.Len(t, st.Changes, 2)
	assert.Equal(t, " M README.md", st.Changes[0].Short())
	assert.Equal(t, "?? new.txt", st.Changes[1].Short())
}

func TestDetachedHead(t *testing.T) {
	dir, r := initRepo(t)
	h := commitFile(t, dir, r, "README.md", "hello\n")
	require.NoError(t, r.Storer.SetReference(plumbing.NewHashReference(plumbing.HEAD, h)))

	repo, err := Open(dir)
	require.NoError(t, err)
	branch, err := repo.CurrentBranch()
	require.NoError(t, err)
	assert.Empty(t, branch)
}
