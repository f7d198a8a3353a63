// Package gitdest wraps the destination git repository. Every staging,
// commit, rename and index query the replay loop performs goes through
// Repo, built on go-git so no git binary is required.
package gitdest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo is a thin facade over a go-git repository whose worktree is the
// migration working directory.
type Repo struct {
	repo *gogit.Repository
	wt   *gogit.Worktree
}

// Init creates a fresh repository rooted at path.
func Init(path string) (*Repo, error) {
	repo, err := gogit.PlainInit(path, false)
	if err != nil {
		return nil, fmt.Errorf("git init %s: %w", path, err)
	}
	return wrap(repo)
}

// Open opens an existing repository rooted at path.
func Open(path string) (*Repo, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("git open %s: %w", path, err)
	}
	return wrap(repo)
}

// InitOrOpen opens the repository at path, initializing it first when
// none exists yet.
func InitOrOpen(path string) (*Repo, error) {
	repo, err := gogit.PlainOpen(path)
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return Init(path)
	}
	if err != nil {
		return nil, fmt.Errorf("git open %s: %w", path, err)
	}
	return wrap(repo)
}

// Wrap adapts an already-constructed go-git repository. Tests use this
// with in-memory storage and a memfs worktree.
func Wrap(repo *gogit.Repository) (*Repo, error) {
	return wrap(repo)
}

func wrap(repo *gogit.Repository) (*Repo, error) {
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("worktree: %w", err)
	}
	return &Repo{repo: repo, wt: wt}, nil
}

// Filesystem exposes the worktree filesystem, rooted at the repository.
func (r *Repo) Filesystem() billy.Filesystem {
	return r.wt.Filesystem
}

// StageAll stages every worktree change: modifications, additions and
// deletions, exactly like `git add -A`.
func (r *Repo) StageAll() error {
	if err := r.wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return fmt.Errorf("stage all: %w", err)
	}
	return nil
}

// Unstage drops rel from the index while leaving the file on disk, the
// equivalent of `git rm --cached`. Unstaging a path that is not in the
// index is a no-op.
func (r *Repo) Unstage(rel string) error {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}
	if _, err := idx.Remove(rel); err != nil {
		if errors.Is(err, index.ErrEntryNotFound) {
			return nil
		}
		return fmt.Errorf("unstage %s: %w", rel, err)
	}
	return r.repo.Storer.SetIndex(idx)
}

// Tracked reports whether rel is present in the index under exactly
// that casing.
func (r *Repo) Tracked(rel string) (bool, error) {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return false, fmt.Errorf("read index: %w", err)
	}
	_, err = idx.Entry(rel)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, index.ErrEntryNotFound) {
		return false, nil
	}
	return false, err
}

// TrackedFold returns the index entry whose name matches rel ignoring
// case, when one exists.
func (r *Repo) TrackedFold(rel string) (string, bool, error) {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return "", false, fmt.Errorf("read index: %w", err)
	}
	for _, e := range idx.Entries {
		if strings.EqualFold(e.Name, rel) {
			return e.Name, true, nil
		}
	}
	return "", false, nil
}

// Move renames a file in both the worktree and the index. go-git's
// Worktree.Move refuses case-only renames on case-insensitive
// filesystems because the destination appears to exist, so the rename
// is applied directly: a filesystem rename (skipped when the source
// path is already gone) and an index entry rewrite for every entry
// matching the source name ignoring case.
func (r *Repo) Move(from, to string) error {
	if err := r.wt.Filesystem.Rename(from, to); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("rename %s -> %s: %w", from, to, err)
	}

	idx, err := r.repo.Storer.Index()
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}
	changed := false
	for _, e := range idx.Entries {
		if strings.EqualFold(e.Name, from) && e.Name != to {
			e.Name = to
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return r.repo.Storer.SetIndex(idx)
}

// CommitFromFile creates a commit from the current index, reading the
// message from messagePath inside the worktree. Empty commits are
// allowed: a source changeset with no content delta still maps to one
// destination commit.
func (r *Repo) CommitFromFile(messagePath, author, email string, when time.Time) (string, error) {
	f, err := r.wt.Filesystem.Open(messagePath)
	if err != nil {
		return "", fmt.Errorf("read message %s: %w", messagePath, err)
	}
	msg, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return "", fmt.Errorf("read message %s: %w", messagePath, err)
	}

	sig := &object.Signature{Name: author, Email: email, When: when}
	hash, err := r.wt.Commit(string(msg), &gogit.CommitOptions{
		Author:            sig,
		Committer:         sig,
		AllowEmptyCommits: true,
	})
	if err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return hash.String(), nil
}
