package tfs

import (
	"bufio"
	"errors"
	"sort"
	"strconv"
	"strings"
)

// ErrEmptyHistory is returned when a history listing contains no
// parseable changeset lines at all.
var ErrEmptyHistory = errors.New("history listing contains no changesets")

// ParseHistory extracts changeset IDs from a tf history listing.
// Every data line starts with a decimal changeset number; header,
// separator and otherwise malformed lines are skipped without error.
// The result is deduplicated and sorted ascending.
func ParseHistory(raw string) ([]int, error) {
	seen := make(map[int]struct{})

	sc := bufio.NewScanner(strings.NewReader(raw))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil || id <= 0 {
			continue
		}
		seen[id] = struct{}{}
	}

	if len(seen) == 0 {
		return nil, ErrEmptyHistory
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}
