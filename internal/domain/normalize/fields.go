package normalize

import "github.com/okian/ladder/internal/domain/model"

// Kind is the target type of a normalized field.
type Kind int

// Field kinds.
const (
	KindText        Kind = iota // trimmed string, "" when absent
	KindInt                     // integer, 0 when absent or unparseable
	KindOptionalInt             // integer or absent; absence is preserved
)

// value carries one coerced field value to its setter.
type value struct {
	text    string
	num     int64
	present bool
}

// Field declares how one ProfileEntry field is read from a raw record.
type Field struct {
	Name        string   // ProfileEntry field name
	Keys        []string // raw keys in lookup order; the first non-nil one wins
	Kind        Kind
	NonNegative bool // clamp negative numbers to zero
	assign      func(*model.ProfileEntry, value)
}

// Fields is the field table consumed by Entry. Keys follow the sheet's column
// names; aliases cover older exports.
var Fields = []Field{
	{Name: "SnapshotDate", Keys: []string{"date", "snapshot_date"}, Kind: KindText,
		assign: func(e *model.ProfileEntry, v value) { e.SnapshotDate = v.text }},
	{Name: "Nickname", Keys: []string{"nickname"}, Kind: KindText,
		assign: func(e *model.ProfileEntry, v value) { e.Nickname = v.text }},
	{Name: "Level", Keys: []string{"level"}, Kind: KindInt, NonNegative: true,
		assign: func(e *model.ProfileEntry, v value) { e.Level = v.num }},
	{Name: "Experience", Keys: []string{"exp"}, Kind: KindInt, NonNegative: true,
		assign: func(e *model.ProfileEntry, v value) { e.Experience = v.num }},
	{Name: "ExperienceToLevelUp", Keys: []string{"levelup_exp"}, Kind: KindInt, NonNegative: true,
		assign: func(e *model.ProfileEntry, v value) { e.ExperienceToLevelUp = v.num }},
	{Name: "Job", Keys: []string{"job"}, Kind: KindText,
		assign: func(e *model.ProfileEntry, v value) { e.Job = v.text }},
	{Name: "JobCode", Keys: []string{"job_code"}, Kind: KindInt,
		assign: func(e *model.ProfileEntry, v value) { e.JobCode = v.num }},
	{Name: "CategoryTab", Keys: []string{"jobTab", "job_tab"}, Kind: KindInt,
		assign: func(e *model.ProfileEntry, v value) { e.CategoryTab = int(v.num) }},
	{Name: "ProfileID", Keys: []string{"profile_code"}, Kind: KindText,
		assign: func(e *model.ProfileEntry, v value) { e.ProfileID = v.text }},
	{Name: "AvatarURL", Keys: []string{"profile_image_url"}, Kind: KindText,
		assign: func(e *model.ProfileEntry, v value) { e.AvatarURL = v.text }},
	{Name: "Popularity", Keys: []string{"popular"}, Kind: KindInt,
		assign: func(e *model.ProfileEntry, v value) { e.Popularity = v.num }},
	{Name: "DailyExpDelta", Keys: []string{"daily_exp_diff"}, Kind: KindOptionalInt,
		assign: func(e *model.ProfileEntry, v value) {
			if !v.present {
				e.DailyExpDelta = nil
				e.NewlyListed = true
				return
			}
			n := v.num
			e.DailyExpDelta = &n
			e.NewlyListed = false
		}},
	{Name: "WeeklyExpDelta", Keys: []string{"weekly_exp_diff"}, Kind: KindInt,
		assign: func(e *model.ProfileEntry, v value) { e.WeeklyExpDelta = v.num }},
	{Name: "JobRanking", Keys: []string{"job_ranking"}, Kind: KindInt,
		assign: func(e *model.ProfileEntry, v value) { e.JobRanking = v.num }},
	{Name: "SpecificJobRanking", Keys: []string{"specific_job_ranking"}, Kind: KindInt,
		assign: func(e *model.ProfileEntry, v value) { e.SpecificJobRanking = v.num }},
}
