// Package filter narrows a snapshot to the entries matching a name query,
// a category tab and a job sub-group.
package filter

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/okian/ladder/internal/domain/model"
)

// Criteria is the conjunction of the three predicates. The zero value
// matches every default-tab entry.
type Criteria struct {
	Query    string // case-insensitive nickname substring; empty matches all
	Tab      int    // 0 selects the default tab
	SubGroup string // exact job; empty matches all jobs
}

// Apply returns the entries matching all of query, tab and subGroup, keeping
// input order. It never fails; an empty result is a valid answer.
func Apply(entries []model.ProfileEntry, query string, tab int, subGroup string) []model.ProfileEntry {
	return Criteria{Query: query, Tab: tab, SubGroup: subGroup}.Apply(entries)
}

// Apply filters entries by c.
func (c Criteria) Apply(entries []model.ProfileEntry) []model.ProfileEntry {
	m := newMatcher(c)
	out := make([]model.ProfileEntry, 0, len(entries))
	for _, e := range entries {
		if m.match(e) {
			out = append(out, e)
		}
	}
	return out
}

type matcher struct {
	criteria Criteria
	folder   cases.Caser
	needle   string
}

// newMatcher prepares c for repeated matching. A Caser holds state, so each
// matcher gets its own.
func newMatcher(c Criteria) *matcher {
	m := &matcher{criteria: c, folder: cases.Fold()}
	m.needle = m.fold(c.Query)
	return m
}

// fold maps s to a case- and width-insensitive form so that e.g. "ＫＡＰ"
// and "kap" compare equal.
func (m *matcher) fold(s string) string {
	return m.folder.String(norm.NFKC.String(s))
}

func (m *matcher) match(e model.ProfileEntry) bool {
	if e.CategoryTab != m.criteria.Tab {
		return false
	}
	if m.criteria.SubGroup != "" && e.Job != m.criteria.SubGroup {
		return false
	}
	if m.needle == "" {
		return true
	}
	return strings.Contains(m.fold(e.Nickname), m.needle)
}
