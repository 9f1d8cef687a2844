// Package pipeline composes the leaderboard stages into a pure
// (snapshot, selection) -> view transformation.
package pipeline

import (
	"github.com/okian/ladder/internal/domain/category"
	"github.com/okian/ladder/internal/domain/filter"
	"github.com/okian/ladder/internal/domain/model"
	"github.com/okian/ladder/internal/domain/normalize"
	"github.com/okian/ladder/internal/domain/ranking"
	"github.com/okian/ladder/internal/domain/snapshot"
	"github.com/okian/ladder/internal/domain/types"
)

// Snapshot is a normalized batch reduced to its latest date.
type Snapshot struct {
	Date    string // "" when the batch carried no dates
	Entries []model.ProfileEntry
}

// Empty reports whether the snapshot has no entries.
func (s Snapshot) Empty() bool {
	return len(s.Entries) == 0
}

// NewlyListed counts entries without a daily delta.
func (s Snapshot) NewlyListed() int {
	n := 0
	for _, e := range s.Entries {
		if e.NewlyListed {
			n++
		}
	}
	return n
}

// Prepare normalizes raws and keeps only the latest snapshot.
func Prepare(raws []model.RawRecord) (Snapshot, normalize.Report) {
	entries, rep := normalize.Batch(raws)
	return Snapshot{
		Date:    snapshot.LatestDate(entries),
		Entries: snapshot.SelectLatest(entries),
	}, rep
}

// Renderer renders views against a fixed category index and row limit.
type Renderer struct {
	index *category.Index
	limit int
}

// NewRenderer returns a Renderer. A nil index uses the default catalog.
func NewRenderer(ix *category.Index, limit int) *Renderer {
	if ix == nil {
		ix = category.New(category.DefaultCatalog())
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Renderer{index: ix, limit: limit}
}

// Index returns the renderer's category index.
func (r *Renderer) Index() *category.Index {
	return r.index
}

// Render derives the view of snap for sel.
func (r *Renderer) Render(snap Snapshot, sel Selection) types.View {
	filtered := filter.Apply(snap.Entries, sel.Query, sel.Tab, sel.SubGroup)
	sorted := ranking.Sort(filtered, sel.Sort)
	capped := Cap(sorted, sel.TabSelected(), r.limit)

	rows := make([]types.Row, len(capped))
	for i, e := range capped {
		rows[i] = types.NewRow(i+1, e)
	}

	empty := len(filtered) == 0
	return types.View{
		Tabs:         r.index.Tabs(snap.Entries),
		SubGroups:    r.index.ListSubGroups(snap.Entries, sel.Tab),
		Rows:         rows,
		SnapshotDate: snap.Date,
		NoData:       snap.Empty() || (empty && !sel.Narrowed()),
		NoMatches:    !snap.Empty() && empty && sel.Narrowed(),
		Total:        len(filtered),
		Sort:         sel.Sort.String(),
		NextSort:     sel.Sort.Toggle(sel.Sort.ActiveMetric()).String(),
		Selection:    sel.Echo(),
	}
}

// Build runs the whole pipeline from raw records.
func (r *Renderer) Build(raws []model.RawRecord, sel Selection) types.View {
	snap, _ := Prepare(raws)
	return r.Render(snap, sel)
}
