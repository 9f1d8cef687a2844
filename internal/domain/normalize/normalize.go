// Package normalize coerces raw sheet records into typed profile entries.
//
// Normalization is total: malformed fields fall back to their defaults and a
// record is never rejected. The only absence that survives is the daily
// experience delta, which marks an entry as newly listed.
package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/ladder/internal/domain/model"
)

// numericPrefix matches the longest leading decimal number of a string, the
// same prefix a spreadsheet's number parser would accept.
var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// outcome classifies how a single field was obtained.
type outcome int

const (
	outcomeNative    outcome = iota // value already had the target type
	outcomeCoerced                  // value was converted, e.g. string -> number
	outcomeDefaulted                // value was absent or unusable
)

// Report summarizes what normalization had to repair in a batch.
type Report struct {
	Records     int // records normalized
	Coerced     int // fields converted from another type
	Defaulted   int // fields absent or unparseable, replaced by the default
	NewlyListed int // entries without a daily delta
}

// Entry normalizes a single raw record.
func Entry(raw model.RawRecord) model.ProfileEntry {
	e, _ := entry(raw)
	return e
}

// Batch normalizes every record and reports the repairs made.
func Batch(raws []model.RawRecord) ([]model.ProfileEntry, Report) {
	out := make([]model.ProfileEntry, 0, len(raws))
	var rep Report
	for _, raw := range raws {
		e, r := entry(raw)
		out = append(out, e)
		rep.Coerced += r.Coerced
		rep.Defaulted += r.Defaulted
		if e.NewlyListed {
			rep.NewlyListed++
		}
	}
	rep.Records = len(out)
	return out, rep
}

func entry(raw model.RawRecord) (model.ProfileEntry, Report) {
	var e model.ProfileEntry
	var rep Report
	for i := range Fields {
		f := &Fields[i]
		v, oc := f.read(raw)
		switch oc {
		case outcomeCoerced:
			rep.Coerced++
		case outcomeDefaulted:
			// an absent daily delta is meaningful, not a repair
			if f.Kind != KindOptionalInt || v.present {
				rep.Defaulted++
			}
		}
		f.assign(&e, v)
	}
	return e, rep
}

// lookup returns the first non-nil value among the field's keys.
func (f *Field) lookup(raw model.RawRecord) (any, bool) {
	for _, k := range f.Keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (f *Field) read(raw model.RawRecord) (value, outcome) {
	v, ok := f.lookup(raw)
	switch f.Kind {
	case KindText:
		if !ok {
			return value{}, outcomeDefaulted
		}
		s, oc := toText(v)
		return value{text: s, present: true}, oc
	case KindOptionalInt:
		if !ok {
			return value{}, outcomeDefaulted
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			return value{}, outcomeDefaulted
		}
		n, oc := toInt(v)
		return value{num: f.clamp(n), present: true}, oc
	default:
		if !ok {
			return value{}, outcomeDefaulted
		}
		n, oc := toInt(v)
		return value{num: f.clamp(n), present: oc != outcomeDefaulted}, oc
	}
}

func (f *Field) clamp(n int64) int64 {
	if f.NonNegative && n < 0 {
		return 0
	}
	return n
}

func toText(v any) (string, outcome) {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), outcomeNative
	case json.Number:
		return t.String(), outcomeCoerced
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", outcomeDefaulted
		}
		return strconv.FormatFloat(t, 'f', -1, 64), outcomeCoerced
	case float32:
		return toText(float64(t))
	case int:
		return strconv.Itoa(t), outcomeCoerced
	case int64:
		return strconv.FormatInt(t, 10), outcomeCoerced
	case int32:
		return strconv.FormatInt(int64(t), 10), outcomeCoerced
	case bool:
		return strconv.FormatBool(t), outcomeCoerced
	default:
		return "", outcomeDefaulted
	}
}

func toInt(v any) (int64, outcome) {
	switch t := v.(type) {
	case int64:
		return t, outcomeNative
	case int:
		return int64(t), outcomeNative
	case int32:
		return int64(t), outcomeNative
	case float64:
		return fromFloat(t, outcomeNative)
	case float32:
		return fromFloat(float64(t), outcomeNative)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, outcomeNative
		}
		return parseNumber(t.String())
	case string:
		return parseNumber(t)
	default:
		return 0, outcomeDefaulted
	}
}

// parseNumber parses the leading number of s; thousands separators are ignored.
func parseNumber(s string) (int64, outcome) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	m := numericPrefix.FindString(s)
	if m == "" {
		return 0, outcomeDefaulted
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, outcomeDefaulted
	}
	return fromFloat(f, outcomeCoerced)
}

func fromFloat(f float64, oc outcome) (int64, outcome) {
	switch {
	case math.IsNaN(f), math.IsInf(f, 0):
		return 0, outcomeDefaulted
	case f >= math.MaxInt64:
		return math.MaxInt64, oc
	case f <= math.MinInt64:
		return math.MinInt64, oc
	}
	return int64(math.Trunc(f)), oc
}

// ToRaw renders e back into a raw record using each field's primary key.
// Entry(ToRaw(e)) == e for any normalized entry.
func ToRaw(e model.ProfileEntry) model.RawRecord {
	raw := model.RawRecord{
		"date":                 e.SnapshotDate,
		"nickname":             e.Nickname,
		"level":                e.Level,
		"exp":                  e.Experience,
		"levelup_exp":          e.ExperienceToLevelUp,
		"job":                  e.Job,
		"job_code":             e.JobCode,
		"jobTab":               int64(e.CategoryTab),
		"profile_code":         e.ProfileID,
		"profile_image_url":    e.AvatarURL,
		"popular":              e.Popularity,
		"weekly_exp_diff":      e.WeeklyExpDelta,
		"job_ranking":          e.JobRanking,
		"specific_job_ranking": e.SpecificJobRanking,
		"daily_exp_diff":       nil,
	}
	if d, ok := e.DailyDelta(); ok {
		raw["daily_exp_diff"] = d
	}
	return raw
}
