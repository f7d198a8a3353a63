package replay

import (
	"context"
	"log/slog"
	"time"

	"github.com/kurobon/tf2git/internal/tfs"
)

// Orchestrator drives the per-changeset loop. The run is strictly
// sequential: each changeset depends on the cumulative working-tree
// state its predecessor left behind, and the destination repository
// forbids concurrent commit creation.
type Orchestrator struct {
	Source tfs.Client
	Mat    *Materializer
	Rec    *Reconciler
	Comp   *Composer
	Log    *slog.Logger

	// Progress, when set, is called after every successful commit.
	Progress func(CommitRecord)
}

// Run replays the given changeset IDs in order, producing one commit
// per ID. A fatal error halts the loop immediately; commits already
// created remain valid, and the returned report covers them so the
// operator can resume with a narrowed range.
func (o *Orchestrator) Run(ctx context.Context, ids []int) (*Report, error) {
	report := NewReport()

	for i, id := range ids {
		start := time.Now()
		o.Log.Debug("replaying", "changeset", id, "position", i+1, "total", len(ids))

		if err := o.Mat.Materialize(ctx, id, i == 0); err != nil {
			return report, err
		}

		cs, err := o.Source.ChangesetDetails(ctx, id)
		if err != nil {
			return report, &RetrievalError{Changeset: id, Err: err}
		}

		// The composer must see corrected tracked names before it
		// stages, so reconciliation always runs in between.
		renames := o.Rec.Reconcile(cs)

		rec, err := o.Comp.Compose(cs)
		if err != nil {
			return report, err
		}
		rec.Renames = len(renames)
		rec.Elapsed = time.Since(start)

		report.Add(rec)
		if o.Progress != nil {
			o.Progress(rec)
		}
	}

	return report, nil
}
