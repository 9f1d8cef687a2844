// Package snapshot isolates the most recent daily batch from a mixed backlog.
package snapshot

import (
	"sort"

	"github.com/okian/ladder/internal/domain/model"
)

// Dates returns the distinct non-empty snapshot dates, newest first.
// Dates are fixed-width ISO-like strings, so lexicographic order is
// chronological order.
func Dates(entries []model.ProfileEntry) []string {
	seen := make(map[string]struct{})
	dates := make([]string, 0)
	for _, e := range entries {
		if e.SnapshotDate == "" {
			continue
		}
		if _, ok := seen[e.SnapshotDate]; ok {
			continue
		}
		seen[e.SnapshotDate] = struct{}{}
		dates = append(dates, e.SnapshotDate)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// LatestDate returns the date SelectLatest would pick, or "" when the batch
// carries no dates at all.
func LatestDate(entries []model.ProfileEntry) string {
	dates := Dates(entries)
	if len(dates) == 0 {
		return ""
	}
	return dates[0]
}

// SelectLatest returns the entries of the newest snapshot date, in batch order.
// When no entry carries a date the batch is returned unfiltered.
func SelectLatest(entries []model.ProfileEntry) []model.ProfileEntry {
	for _, date := range Dates(entries) {
		out := make([]model.ProfileEntry, 0)
		for _, e := range entries {
			if e.SnapshotDate == date {
				out = append(out, e)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	out := make([]model.ProfileEntry, len(entries))
	copy(out, entries)
	return out
}
