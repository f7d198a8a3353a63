package replay

import (
	"log/slog"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/kurobon/tf2git/internal/gitdest"
	"github.com/kurobon/tf2git/internal/tfs"
)

// Rename records one case correction issued against the destination
// repository.
type Rename struct {
	From string
	To   string
}

// Reconciler repairs tracked paths whose casing went stale. The source
// system never distinguished case, so a case-only rename there leaves
// the destination tracking the old spelling while the disk holds the
// new one; staging the full tree would then track both at once.
//
// Reconciliation is opt-in: when the operator declares the source
// history case-sensitive throughout, the scan is skipped, since it has
// a real cost and can false-positive on paths that do not exist yet.
// It is also best-effort: it trusts a point-in-time filesystem answer,
// so renames racing outside the tool can still leave a mismatch for a
// later changeset to repair.
type Reconciler struct {
	Dest    *gitdest.Repo
	Root    string // server path root the working tree is mapped to
	Enabled bool
	Log     *slog.Logger
}

// Reconcile inspects every file the changeset metadata reports and
// renames entries whose tracked casing no longer matches the disk.
// Individual failures are logged and skipped, never fatal.
func (r *Reconciler) Reconcile(cs *tfs.Changeset) []Rename {
	if !r.Enabled {
		return nil
	}

	var done []Rename
	for _, rel := range cs.RelativeItems(r.Root) {
		tracked, err := r.Dest.Tracked(rel)
		if err != nil {
			r.Log.Warn("index query failed", "changeset", cs.ID, "path", rel, "error", err)
			continue
		}
		if tracked {
			continue
		}

		real, ok := diskCase(r.Dest.Filesystem(), rel)
		if !ok {
			// Not on disk under any casing: deleted, or not
			// materialized yet. Nothing to repair.
			continue
		}

		from := rel
		if stale, ok, err := r.Dest.TrackedFold(rel); err == nil && ok {
			from = stale
		}
		if from == real {
			continue
		}

		if err := r.Dest.Move(from, real); err != nil {
			r.Log.Warn("case rename failed", "changeset", cs.ID, "from", from, "to", real, "error", err)
			continue
		}
		r.Log.Debug("case rename", "changeset", cs.ID, "from", from, "to", real)
		done = append(done, Rename{From: from, To: real})
	}
	return done
}

// diskCase resolves the true on-disk casing of rel by matching each
// path segment case-insensitively against its directory listing.
func diskCase(fs billy.Filesystem, rel string) (string, bool) {
	segs := strings.Split(path.Clean(strings.ReplaceAll(rel, "\\", "/")), "/")

	cur := "."
	out := make([]string, 0, len(segs))
	for _, seg := range segs {
		entries, err := fs.ReadDir(cur)
		if err != nil {
			return "", false
		}
		found := ""
		for _, e := range entries {
			if e.Name() == seg {
				found = e.Name()
				break
			}
			if found == "" && strings.EqualFold(e.Name(), seg) {
				found = e.Name()
			}
		}
		if found == "" {
			return "", false
		}
		out = append(out, found)
		cur = path.Join(cur, found)
	}
	return path.Join(out...), true
}
