// Package tfs talks to the source TFVC repository through the tf
// command-line client. All parsing of tf's text output lives here, so
// the rest of the tool never sees raw tool output.
package tfs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// Client is the read side of the source repository. Implementations
// mutate the working directory as a side effect of Get.
type Client interface {
	// History returns the raw history listing for the repository path.
	History(ctx context.Context, repoPath string) (string, error)
	// Get materializes the working directory at the given changeset.
	// force discards any local modifications instead of merging them.
	Get(ctx context.Context, changeset int, force bool) error
	// ChangesetDetails returns the parsed metadata for one changeset.
	ChangesetDetails(ctx context.Context, changeset int) (*Changeset, error)
}

// ExecClient implements Client by shelling out to the tf executable
// inside the working directory. Calls block for as long as the tool
// runs; cancellation only happens through ctx.
type ExecClient struct {
	Exe      string // path to the tf binary
	WorkDir  string // local directory mapped to the workspace
	RepoPath string // server path being migrated, e.g. $/Project
}

// NewExecClient returns a client driving the tf binary at exe with
// workDir as its current directory.
func NewExecClient(exe, workDir, repoPath string) *ExecClient {
	return &ExecClient{Exe: exe, WorkDir: workDir, RepoPath: repoPath}
}

func (c *ExecClient) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.Exe, args...)
	cmd.Dir = c.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tf %s: %w: %s", args[0], err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.String(), nil
}

// History lists every changeset recorded for repoPath, newest first.
// The caller feeds the result through ParseHistory.
func (c *ExecClient) History(ctx context.Context, repoPath string) (string, error) {
	return c.run(ctx, "history", repoPath, "/recursive", "/noprompt", "/format:brief")
}

// Get syncs the working directory to the state of the given changeset.
// Retrieval is always recursive; force additionally overwrites local
// content so the tree exactly mirrors the server state.
func (c *ExecClient) Get(ctx context.Context, changeset int, force bool) error {
	args := []string{"get", c.RepoPath, "/version:C" + strconv.Itoa(changeset), "/recursive", "/noprompt"}
	if force {
		args = append(args, "/force")
	}
	_, err := c.run(ctx, args...)
	return err
}

// ChangesetDetails fetches and parses the metadata for one changeset.
func (c *ExecClient) ChangesetDetails(ctx context.Context, changeset int) (*Changeset, error) {
	out, err := c.run(ctx, "changeset", strconv.Itoa(changeset), "/noprompt")
	if err != nil {
		return nil, err
	}
	cs, err := ParseChangeset(out)
	if err != nil {
		return nil, fmt.Errorf("changeset %d: %w", changeset, err)
	}
	return cs, nil
}

// EnsureWorkspace creates the named workspace mapping RepoPath to the
// working directory. Creating a workspace that already exists is an
// error from tf, which the caller may choose to tolerate.
func (c *ExecClient) EnsureWorkspace(ctx context.Context, name string) error {
	_, err := c.run(ctx, "workspace", "/new", name, "/noprompt")
	return err
}

// DeleteWorkspace removes the named workspace. The working directory
// contents are left in place.
func (c *ExecClient) DeleteWorkspace(ctx context.Context, name string) error {
	_, err := c.run(ctx, "workspace", "/delete", name, "/noprompt")
	return err
}
