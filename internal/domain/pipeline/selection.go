package pipeline

import (
	"github.com/okian/ladder/internal/domain/category"
	"github.com/okian/ladder/internal/domain/ranking"
	"github.com/okian/ladder/internal/domain/types"
)

// Selection is the immutable UI selection a view is rendered for.
// The zero value is the default view: all tabs, no query, unsorted.
type Selection struct {
	Query    string
	Tab      int
	SubGroup string
	Sort     ranking.Spec
}

// TabSelected reports whether a category tab other than the default is active.
func (s Selection) TabSelected() bool {
	return s.Tab != category.DefaultTab
}

// Narrowed reports whether a query, tab or job restricts the view.
func (s Selection) Narrowed() bool {
	return s.Query != "" || s.TabSelected() || s.SubGroup != ""
}

// WithTab selects tab and clears the query and sub-group.
func (s Selection) WithTab(tab int) Selection {
	s.Tab = tab
	s.Query = ""
	s.SubGroup = ""
	return s
}

// WithSubGroup selects a job inside the current tab and clears the query.
func (s Selection) WithSubGroup(job string) Selection {
	s.SubGroup = job
	s.Query = ""
	return s
}

// WithQuery replaces the search text.
func (s Selection) WithQuery(q string) Selection {
	s.Query = q
	return s
}

// Toggle advances the sort state machine for metric m.
func (s Selection) Toggle(m ranking.Metric) Selection {
	s.Sort = s.Sort.Toggle(m)
	return s
}

// Echo returns the wire form of s.
func (s Selection) Echo() types.Selection {
	return types.Selection{
		Query:    s.Query,
		Tab:      s.Tab,
		SubGroup: s.SubGroup,
		Sort:     s.Sort.String(),
	}
}
