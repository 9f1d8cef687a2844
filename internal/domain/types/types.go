// Package types contains the wire shapes shared by the pipeline and the HTTP API.
package types

import (
	"time"

	"github.com/okian/ladder/internal/domain/model"
)

// Tab is a category tab with its display label.
type Tab struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// Row is one rendered leaderboard line.
type Row struct {
	Rank                int      `json:"rank"` // 1-based position in the rendered list
	ProfileID           string   `json:"profile_id"`
	Nickname            string   `json:"nickname"`
	Level               int64    `json:"level"`
	Experience          int64    `json:"exp"`
	ExperienceToLevelUp int64    `json:"levelup_exp"`
	Progress            *float64 `json:"progress"` // null when undefined
	Job                 string   `json:"job"`
	JobCode             int64    `json:"job_code"`
	CategoryTab         int      `json:"job_tab"`
	AvatarURL           string   `json:"profile_image_url,omitempty"`
	Popularity          int64    `json:"popular"`
	DailyExpDelta       *int64   `json:"daily_exp_diff"` // null for newly listed entries
	WeeklyExpDelta      int64    `json:"weekly_exp_diff"`
	JobRanking          int64    `json:"job_ranking"`
	SpecificJobRanking  int64    `json:"specific_job_ranking"`
	NewlyListed         bool     `json:"newly_listed"`
}

// NewRow renders entry at the given 1-based rank.
func NewRow(rank int, e model.ProfileEntry) Row {
	r := Row{
		Rank:                rank,
		ProfileID:           e.ProfileID,
		Nickname:            e.Nickname,
		Level:               e.Level,
		Experience:          e.Experience,
		ExperienceToLevelUp: e.ExperienceToLevelUp,
		Job:                 e.Job,
		JobCode:             e.JobCode,
		CategoryTab:         e.CategoryTab,
		AvatarURL:           e.AvatarURL,
		Popularity:          e.Popularity,
		WeeklyExpDelta:      e.WeeklyExpDelta,
		JobRanking:          e.JobRanking,
		SpecificJobRanking:  e.SpecificJobRanking,
		NewlyListed:         e.NewlyListed,
	}
	if p, ok := e.Progress(); ok {
		r.Progress = &p
	}
	if d, ok := e.DailyDelta(); ok {
		r.DailyExpDelta = &d
	}
	return r
}

// Entry recovers the entry fields a row carries.
func (r Row) Entry() model.ProfileEntry {
	return model.ProfileEntry{
		ProfileID:           r.ProfileID,
		Nickname:            r.Nickname,
		Level:               r.Level,
		Experience:          r.Experience,
		ExperienceToLevelUp: r.ExperienceToLevelUp,
		Job:                 r.Job,
		JobCode:             r.JobCode,
		CategoryTab:         r.CategoryTab,
		AvatarURL:           r.AvatarURL,
		Popularity:          r.Popularity,
		DailyExpDelta:       r.DailyExpDelta,
		WeeklyExpDelta:      r.WeeklyExpDelta,
		JobRanking:          r.JobRanking,
		SpecificJobRanking:  r.SpecificJobRanking,
		NewlyListed:         r.NewlyListed,
	}
}

// Selection echoes the UI selection a view was rendered for.
type Selection struct {
	Query    string `json:"q"`
	Tab      int    `json:"tab"`
	SubGroup string `json:"job"`
	Sort     string `json:"sort"`
}

// View is the read-only result handed to the presentation layer.
type View struct {
	Tabs         []Tab     `json:"tabs"`
	SubGroups    []string  `json:"subgroups"`
	Rows         []Row     `json:"rows"`
	SnapshotDate string    `json:"snapshot_date"`
	Loading      bool      `json:"loading"`
	NoData       bool      `json:"no_data"`    // nothing to show and nothing narrows the view
	NoMatches    bool      `json:"no_matches"` // data exists but the query, tab or job matched nothing
	Total        int       `json:"total"`      // matching rows before capping
	Sort         string    `json:"sort"`
	NextSort     string    `json:"next_sort"` // sort state after one more toggle of the active metric
	Selection    Selection `json:"selection"`
}

// Health summarizes the snapshot being served.
type Health struct {
	Status       string    `json:"status"` // "ok" or "degraded"
	Loading      bool      `json:"loading"`
	Generation   uint64    `json:"generation"`
	SnapshotDate string    `json:"snapshot_date"`
	Entries      int       `json:"entries"`
	LoadedAt     time.Time `json:"loaded_at,omitzero"`
	LastError    string    `json:"last_error,omitempty"`
}
