package replay

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/util"

	"github.com/kurobon/tf2git/internal/gitdest"
	"github.com/kurobon/tf2git/internal/tfs"
)

// MessageFileName is the transient commit-message artifact rendered
// into the working tree. The commit step reads it as the message
// source; it is unstaged on every iteration so it never becomes a
// tracked file. Staging runs before the unstage on purpose: the file
// survives on disk between iterations and would otherwise be swept up
// by the next stage-all.
const MessageFileName = ".tf2git-message.txt"

// CommitRecord ties one created git commit back to its source
// changeset. Used for the run report and diagnostics only.
type CommitRecord struct {
	Changeset int
	Hash      string
	Files     int
	Renames   int
	Elapsed   time.Duration
}

// Composer turns the materialized working tree into a git commit
// carrying the source changeset's metadata.
type Composer struct {
	Dest  *gitdest.Repo
	Users UserMap
	Root  string // server path root; file counts cover only items under it
	Log   *slog.Logger
}

// Compose stages the working tree and commits it as the given
// changeset: stage everything, render the message artifact, unstage the
// artifact, resolve the author, commit. A changeset with no staged
// delta still produces a commit.
func (c *Composer) Compose(cs *tfs.Changeset) (CommitRecord, error) {
	if err := c.Dest.StageAll(); err != nil {
		return CommitRecord{}, fmt.Errorf("changeset %d: %w", cs.ID, err)
	}

	msg := RenderMessage(cs)
	if err := util.WriteFile(c.Dest.Filesystem(), MessageFileName, []byte(msg), 0o644); err != nil {
		return CommitRecord{}, fmt.Errorf("changeset %d: write message: %w", cs.ID, err)
	}
	if err := c.Dest.Unstage(MessageFileName); err != nil {
		return CommitRecord{}, fmt.Errorf("changeset %d: %w", cs.ID, err)
	}

	name, email := c.Users.Resolve(cs.User)
	when := cs.Date
	if when.IsZero() {
		when = time.Now()
	}

	hash, err := c.Dest.CommitFromFile(MessageFileName, name, email, when)
	if err != nil {
		return CommitRecord{}, fmt.Errorf("changeset %d: %w", cs.ID, err)
	}

	c.Log.Debug("committed", "changeset", cs.ID, "hash", hash, "author", name)
	return CommitRecord{Changeset: cs.ID, Hash: hash, Files: len(cs.RelativeItems(c.Root))}, nil
}

// RenderMessage formats the commit message for a changeset: the
// original comment first, then a trailer tying the commit back to its
// source changeset.
func RenderMessage(cs *tfs.Changeset) string {
	comment := cs.Comment
	if comment == "" {
		comment = fmt.Sprintf("Changeset %d", cs.ID)
	}

	var b strings.Builder
	b.WriteString(comment)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Migrated-From: changeset %d by %s on %s\n", cs.ID, cs.User, cs.RawDate)
	return b.String()
}
