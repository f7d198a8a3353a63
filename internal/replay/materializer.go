package replay

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kurobon/tf2git/internal/tfs"
)

// RetrievalError marks a fatal failure pulling a changeset out of the
// source repository. There is no partial-changeset resume: the operator
// restarts with a narrowed range.
type RetrievalError struct {
	Changeset int
	Err       error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieve changeset %d: %v", e.Changeset, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// Materializer syncs the working tree to successive changeset states.
// The first retrieval is forced so the tree exactly mirrors the server,
// discarding whatever was on disk; later retrievals are incremental and
// trust the source to report what changed.
type Materializer struct {
	Source tfs.Client
	Log    *slog.Logger
}

// Materialize brings the working tree to the state of the given
// changeset. first must be true exactly once per run, on the first
// replayed changeset.
func (m *Materializer) Materialize(ctx context.Context, id int, first bool) error {
	m.Log.Debug("materializing", "changeset", id, "full", first)
	if err := m.Source.Get(ctx, id, first); err != nil {
		return &RetrievalError{Changeset: id, Err: err}
	}
	return nil
}
