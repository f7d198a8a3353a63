package replay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/stretchr/testify/require"

	"github.com/kurobon/tf2git/internal/gitdest"
	"github.com/kurobon/tf2git/internal/tfs"
)

// fakeClient implements tfs.Client against an in-memory worktree. Each
// changeset is described by its full tree; Get writes the full tree on
// force and only the delta against the previously fetched changeset
// otherwise, mirroring how the real client behaves.
type fakeClient struct {
	fs      billy.Filesystem
	trees   map[int]map[string]string
	details map[int]*tfs.Changeset

	failGet     map[int]bool
	failDetails map[int]bool

	forces []bool
	prev   int
}

func (f *fakeClient) History(context.Context, string) (string, error) {
	return "", errors.New("not used in tests")
}

func (f *fakeClient) Get(_ context.Context, id int, force bool) error {
	f.forces = append(f.forces, force)
	if f.failGet[id] {
		return errors.New("tf: connection lost")
	}

	tree, ok := f.trees[id]
	if !ok {
		return errors.New("tf: no such changeset")
	}

	prev := map[string]string{}
	if !force {
		prev = f.trees[f.prev]
	}
	for p, content := range tree {
		if force || prev[p] != content {
			if err := util.WriteFile(f.fs, p, []byte(content), 0o644); err != nil {
				return err
			}
		}
	}
	for p := range prev {
		if _, ok := tree[p]; !ok {
			if err := f.fs.Remove(p); err != nil {
				return err
			}
		}
	}

	f.prev = id
	return nil
}

func (f *fakeClient) ChangesetDetails(_ context.Context, id int) (*tfs.Changeset, error) {
	if f.failDetails[id] {
		return nil, errors.New("tf: changeset lookup failed")
	}
	cs, ok := f.details[id]
	if !ok {
		return nil, errors.New("tf: no such changeset")
	}
	return cs, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newDestRepo returns a gitdest repo over in-memory storage plus the
// underlying go-git handle for inspection.
func newDestRepo(t *testing.T) (*gitdest.Repo, *gogit.Repository) {
	t.Helper()
	inner, err := gogit.Init(memory.NewStorage(), memfs.New())
	require.NoError(t, err)
	dest, err := gitdest.Wrap(inner)
	require.NoError(t, err)
	return dest, inner
}

// commitChain returns the linear history reachable from HEAD, oldest
// first.
func commitChain(t *testing.T, repo *gogit.Repository) []*object.Commit {
	t.Helper()
	head, err := repo.Head()
	require.NoError(t, err)

	var chain []*object.Commit
	c, err := repo.CommitObject(head.Hash())
	require.NoError(t, err)
	for {
		chain = append([]*object.Commit{c}, chain...)
		if c.NumParents() == 0 {
			break
		}
		c, err = c.Parent(0)
		require.NoError(t, err)
	}
	return chain
}
