// Package model contains domain models passed between layers.
package model

// RawRecord is one untyped row as delivered by the external sheet source.
// Any key may be missing or hold nil, a string, a number or a bool.
type RawRecord = map[string]any

// ProfileEntry is a normalized leaderboard row for one character on one day.
type ProfileEntry struct {
	SnapshotDate        string // date-stamp of the daily batch, e.g. "2024-01-02"
	Nickname            string
	Level               int64
	Experience          int64
	ExperienceToLevelUp int64 // 0 means progress is undefined
	Job                 string
	JobCode             int64
	CategoryTab         int // 0 is the default (uncategorized) tab
	ProfileID           string
	AvatarURL           string
	Popularity          int64
	DailyExpDelta       *int64 // nil when the entry has no prior-day baseline
	WeeklyExpDelta      int64
	JobRanking          int64
	SpecificJobRanking  int64
	NewlyListed         bool // true iff DailyExpDelta is nil
}

// Progress returns the fraction of the current level completed, clamped to
// [0, 1]. The second result is false when ExperienceToLevelUp is not positive.
func (p ProfileEntry) Progress() (float64, bool) {
	if p.ExperienceToLevelUp <= 0 {
		return 0, false
	}
	ratio := float64(p.Experience) / float64(p.ExperienceToLevelUp)
	switch {
	case ratio < 0:
		ratio = 0
	case ratio > 1:
		ratio = 1
	}
	return ratio, true
}

// DailyDelta returns the daily experience change and whether it is present.
func (p ProfileEntry) DailyDelta() (int64, bool) {
	if p.DailyExpDelta == nil {
		return 0, false
	}
	return *p.DailyExpDelta, true
}
