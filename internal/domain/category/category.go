// Package category derives category tabs and their ordered job sub-groups
// from a snapshot.
package category

import (
	"fmt"
	"sort"

	"github.com/okian/ladder/internal/domain/model"
	"github.com/okian/ladder/internal/domain/types"
)

// DefaultTab is the implicit "all" tab. It is always listed.
const DefaultTab = 0

// unknownLabelFormat labels tabs missing from the catalog.
const unknownLabelFormat = "未知分類 (%d)"

// Index answers tab and sub-group questions against a fixed catalog.
type Index struct {
	catalog    Catalog
	subgrouped map[int]struct{}
}

// New builds an Index over a copy of c.
func New(c Catalog) *Index {
	ix := &Index{catalog: c.clone()}
	if len(ix.catalog.SubGroupTabs) > 0 {
		ix.subgrouped = make(map[int]struct{}, len(ix.catalog.SubGroupTabs))
		for _, tab := range ix.catalog.SubGroupTabs {
			ix.subgrouped[tab] = struct{}{}
		}
	}
	return ix
}

// Label returns the display label of tab.
func (ix *Index) Label(tab int) string {
	if l, ok := ix.catalog.Labels[tab]; ok && l != "" {
		return l
	}
	return fmt.Sprintf(unknownLabelFormat, tab)
}

// ListTabs returns the distinct tabs present in entries in ascending order.
// DefaultTab is always included.
func (ix *Index) ListTabs(entries []model.ProfileEntry) []int {
	seen := map[int]struct{}{DefaultTab: {}}
	tabs := []int{DefaultTab}
	for _, e := range entries {
		if _, ok := seen[e.CategoryTab]; ok {
			continue
		}
		seen[e.CategoryTab] = struct{}{}
		tabs = append(tabs, e.CategoryTab)
	}
	sort.Ints(tabs)
	return tabs
}

// Tabs returns ListTabs paired with display labels.
func (ix *Index) Tabs(entries []model.ProfileEntry) []types.Tab {
	ids := ix.ListTabs(entries)
	out := make([]types.Tab, len(ids))
	for i, id := range ids {
		out[i] = types.Tab{ID: id, Label: ix.Label(id)}
	}
	return out
}

// HasSubGroups reports whether tab is split into job sub-groups at all.
func (ix *Index) HasSubGroups(tab int) bool {
	if tab == DefaultTab {
		return ix.catalog.TopLevelSubGroups
	}
	if ix.subgrouped == nil {
		return true
	}
	_, ok := ix.subgrouped[tab]
	return ok
}

// ListSubGroups returns the jobs of tab that have at least one entry.
// Canonical jobs come first in catalog order, the rest follow sorted.
// On the default tab jobs are listed only when top-level sub-grouping is on,
// and then purely sorted.
func (ix *Index) ListSubGroups(entries []model.ProfileEntry, tab int) []string {
	if !ix.HasSubGroups(tab) {
		return []string{}
	}

	present := make(map[string]struct{})
	for _, e := range entries {
		if e.CategoryTab != tab || e.Job == "" {
			continue
		}
		present[e.Job] = struct{}{}
	}

	out := make([]string, 0, len(present))
	if tab != DefaultTab {
		for _, job := range ix.catalog.Orders[tab] {
			if _, ok := present[job]; ok {
				out = append(out, job)
				delete(present, job)
			}
		}
	}

	rest := make([]string, 0, len(present))
	for job := range present {
		rest = append(rest, job)
	}
	sort.Strings(rest)
	return append(out, rest...)
}
