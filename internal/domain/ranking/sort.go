package ranking

import (
	"sort"

	"github.com/okian/ladder/internal/domain/model"
)

// Sort returns a sorted copy of entries; the input is never modified.
//
// Unsorted specs keep input order. Otherwise entries with a value are
// compared numerically in the requested direction, and entries without one
// (newly listed, for the daily delta) follow all of them regardless of
// direction. The sort is stable, so ties keep input order.
func Sort(entries []model.ProfileEntry, spec Spec) []model.ProfileEntry {
	out := make([]model.ProfileEntry, len(entries))
	copy(out, entries)

	get, ok := metrics[spec.Metric]
	if !spec.Sorted() || !ok {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		vi, oki := get(out[i])
		vj, okj := get(out[j])
		if oki != okj {
			return oki
		}
		if !oki {
			return false
		}
		if spec.Direction == Asc {
			return vi < vj
		}
		return vi > vj
	})
	return out
}
