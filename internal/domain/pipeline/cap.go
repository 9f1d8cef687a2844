package pipeline

import "github.com/okian/ladder/internal/domain/model"

// DefaultLimit bounds the default, all-tabs view.
const DefaultLimit = 100

// Cap truncates entries to limit when no tab is selected. Category views are
// returned in full. A non-positive limit means DefaultLimit.
func Cap(entries []model.ProfileEntry, tabSelected bool, limit int) []model.ProfileEntry {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if tabSelected || len(entries) <= limit {
		return entries
	}
	return entries[:limit]
}
