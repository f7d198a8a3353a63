// Package replay implements the changeset replay loop: materialize each
// source changeset into the working tree, reconcile case-only renames,
// and record one git commit per changeset, in strict changeset order.
package replay

import "errors"

// ErrNoChangesetsInRange is returned when a range filter removes every
// changeset from the history. Doing nothing silently would hide a typo
// in the requested bounds.
var ErrNoChangesetsInRange = errors.New("no changesets within the requested range")

// Range bounds the replayed changesets, inclusive on both ends. A zero
// bound is open.
type Range struct {
	From int
	To   int
}

// Contains reports whether id falls inside the range.
func (r Range) Contains(id int) bool {
	if r.From > 0 && id < r.From {
		return false
	}
	if r.To > 0 && id > r.To {
		return false
	}
	return true
}

// Sequence filters already-parsed history IDs down to the requested
// range. IDs arrive deduplicated and sorted ascending from
// tfs.ParseHistory; order is preserved.
func Sequence(ids []int, rng Range) ([]int, error) {
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if rng.Contains(id) {
			out = append(out, id)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoChangesetsInRange
	}
	return out, nil
}
