package probe

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/ladder/internal/domain/ranking"
	"github.com/okian/ladder/internal/domain/types"
	"github.com/okian/ladder/pkg/logger"
)

// Check names.
const (
	CheckSnapshotDate    = "single_snapshot_date"
	CheckDefaultCap      = "default_cap"
	CheckDefaultTabOnly  = "default_tab_only"
	CheckTabIsolation    = "tab_isolation"
	CheckJobFilter       = "job_filter"
	CheckSortOrder       = "sort_order"
	CheckNewlyListedLast = "newly_listed_last"
	CheckToggleCycle     = "toggle_cycle"
)

// Kind tags what a fetched view is for.
const (
	kindDefault = "default"
	kindTab     = "tab"
	kindJob     = "job"
	kindSort    = "sort"
)

// verifyViews runs every check over the fetched views.
func verifyViews(ctx context.Context, config *Config, views []Fetched, stats *Stats) []Violation {
	logger.Get().Info(ctx, "verifying views", logger.Int("views", len(views)))

	var out []Violation
	add := func(vs ...Violation) {
		stats.ChecksRun++
		out = append(out, vs...)
	}

	add(checkSnapshotDate(views, stats.SnapshotDate)...)
	for _, f := range views {
		switch kindOf(f) {
		case kindDefault:
			add(checkDefaultCap(f, config.Limit)...)
			add(checkDefaultTabOnly(f)...)
		case kindTab:
			add(checkTabIsolation(f)...)
		case kindJob:
			add(checkTabIsolation(f)...)
			add(checkJobFilter(f)...)
		case kindSort:
			add(checkDefaultCap(f, config.Limit)...)
			add(checkDefaultTabOnly(f)...)
			add(checkSortOrder(f)...)
			add(checkNewlyListedLast(f)...)
		}
	}

	stats.Violations = len(out)
	for _, v := range out {
		logger.Get().Warn(ctx, "check failed",
			logger.String("check", v.Check),
			logger.String("view", v.View),
			logger.String("detail", v.Detail))
	}
	return out
}

// kindOf classifies a fetched view by its selection.
func kindOf(f Fetched) string {
	switch {
	case f.View.Selection.Sort != "" && f.View.Selection.Sort != "none":
		return kindSort
	case f.Job != "":
		return kindJob
	case f.Tab != 0:
		return kindTab
	default:
		return kindDefault
	}
}

// checkSnapshotDate asserts every view was rendered from the same snapshot.
func checkSnapshotDate(views []Fetched, want string) []Violation {
	var out []Violation
	for _, f := range views {
		if f.View.SnapshotDate != want {
			out = append(out, Violation{
				Check:  CheckSnapshotDate,
				View:   f.Name,
				Detail: fmt.Sprintf("snapshot date %q, service reports %q", f.View.SnapshotDate, want),
			})
		}
	}
	return out
}

// checkDefaultCap asserts the default view holds at most limit rows and is
// full whenever more rows matched.
func checkDefaultCap(f Fetched, limit int) []Violation {
	rows := len(f.View.Rows)
	switch {
	case rows > limit:
		return []Violation{{Check: CheckDefaultCap, View: f.Name, Detail: fmt.Sprintf("%d rows exceed cap %d", rows, limit)}}
	case f.View.Total > limit && rows != limit:
		return []Violation{{Check: CheckDefaultCap, View: f.Name, Detail: fmt.Sprintf("%d rows of %d matches, want %d", rows, f.View.Total, limit)}}
	}
	return nil
}

// checkDefaultTabOnly asserts the default view shows only tab-0 entries.
func checkDefaultTabOnly(f Fetched) []Violation {
	for _, r := range f.View.Rows {
		if r.CategoryTab != 0 {
			return []Violation{{Check: CheckDefaultTabOnly, View: f.Name, Detail: fmt.Sprintf("row %d (%s) is on tab %d", r.Rank, r.Nickname, r.CategoryTab)}}
		}
	}
	return nil
}

// checkTabIsolation asserts a tab view shows only that tab and is uncapped.
func checkTabIsolation(f Fetched) []Violation {
	var out []Violation
	for _, r := range f.View.Rows {
		if r.CategoryTab != f.Tab {
			out = append(out, Violation{Check: CheckTabIsolation, View: f.Name, Detail: fmt.Sprintf("row %d (%s) is on tab %d", r.Rank, r.Nickname, r.CategoryTab)})
			break
		}
	}
	if len(f.View.Rows) != f.View.Total {
		out = append(out, Violation{Check: CheckTabIsolation, View: f.Name, Detail: fmt.Sprintf("%d rows of %d matches; tab views are not capped", len(f.View.Rows), f.View.Total)})
	}
	return out
}

// checkJobFilter asserts a job view shows only that job.
func checkJobFilter(f Fetched) []Violation {
	for _, r := range f.View.Rows {
		if r.Job != f.Job {
			return []Violation{{Check: CheckJobFilter, View: f.Name, Detail: fmt.Sprintf("row %d (%s) has job %q", r.Rank, r.Nickname, r.Job)}}
		}
	}
	return nil
}

// parseSort splits "metric:dir".
func parseSort(s string) (metric, dir string) {
	metric, dir, _ = strings.Cut(s, ":")
	return metric, dir
}

// checkSortOrder asserts rows with a value are monotonic in the direction.
func checkSortOrder(f Fetched) []Violation {
	metric, dir := parseSort(f.View.Sort)
	var prev int64
	seen := false
	for _, r := range f.View.Rows {
		v, ok := ranking.Value(metric, r.Entry())
		if !ok {
			continue
		}
		if seen && ((dir == "desc" && v > prev) || (dir == "asc" && v < prev)) {
			return []Violation{{Check: CheckSortOrder, View: f.Name, Detail: fmt.Sprintf("row %d (%s) breaks %s order: %d after %d", r.Rank, r.Nickname, dir, v, prev)}}
		}
		prev, seen = v, true
	}
	return nil
}

// checkNewlyListedLast asserts no row with a value follows one without.
func checkNewlyListedLast(f Fetched) []Violation {
	metric, _ := parseSort(f.View.Sort)
	absent := false
	for _, r := range f.View.Rows {
		_, ok := ranking.Value(metric, r.Entry())
		if !ok {
			absent = true
			continue
		}
		if absent {
			return []Violation{{Check: CheckNewlyListedLast, View: f.Name, Detail: fmt.Sprintf("row %d (%s) follows a newly listed row", r.Rank, r.Nickname)}}
		}
	}
	return nil
}

// checkToggleCycle asserts that following next_sort ToggleCycle times from
// an unsorted view lands on an unsorted view with the original order.
func checkToggleCycle(start Fetched, steps []Fetched) []Violation {
	if len(steps) != ToggleCycle {
		return []Violation{{Check: CheckToggleCycle, View: start.Name, Detail: fmt.Sprintf("%d toggle steps fetched, want %d", len(steps), ToggleCycle)}}
	}
	last := steps[len(steps)-1].View
	if last.Sort != "none" {
		return []Violation{{Check: CheckToggleCycle, View: start.Name, Detail: fmt.Sprintf("sort after %d toggles is %q", ToggleCycle, last.Sort)}}
	}
	if !sameOrder(start.View.Rows, last.Rows) {
		return []Violation{{Check: CheckToggleCycle, View: start.Name, Detail: "row order differs from the unsorted view"}}
	}
	return nil
}

func sameOrder(a, b []types.Row) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ProfileID != b[i].ProfileID || a[i].Nickname != b[i].Nickname {
			return false
		}
	}
	return true
}
