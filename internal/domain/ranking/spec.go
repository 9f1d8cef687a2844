// Package ranking orders leaderboard entries by a toggleable metric.
package ranking

import (
	"fmt"
	"strings"

	"github.com/okian/ladder/internal/domain/model"
)

// Direction is the state of the tri-state sort toggle.
type Direction int

// Sort directions.
const (
	None Direction = iota // keep filter order
	Desc
	Asc
)

func (d Direction) String() string {
	switch d {
	case Desc:
		return "desc"
	case Asc:
		return "asc"
	default:
		return "none"
	}
}

// Metric names an orderable entry value.
type Metric string

// Supported metrics.
const (
	DailyExp   Metric = "daily_exp"
	WeeklyExp  Metric = "weekly_exp"
	Level      Metric = "level"
	Popularity Metric = "popularity"
)

// DefaultMetric is the metric the leaderboard toggle acts on.
const DefaultMetric = DailyExp

// value extracts a metric from an entry. The bool is false when the entry
// has no value, which places it in the trailing bucket.
type value func(model.ProfileEntry) (int64, bool)

var metrics = map[Metric]value{
	DailyExp:   func(e model.ProfileEntry) (int64, bool) { return e.DailyDelta() },
	WeeklyExp:  func(e model.ProfileEntry) (int64, bool) { return e.WeeklyExpDelta, true },
	Level:      func(e model.ProfileEntry) (int64, bool) { return e.Level, true },
	Popularity: func(e model.ProfileEntry) (int64, bool) { return e.Popularity, true },
}

// Metrics lists the supported metrics in display order.
func Metrics() []Metric {
	return []Metric{DailyExp, WeeklyExp, Level, Popularity}
}

// Value reads the metric named name off e. The bool is false when e has no
// value for it or the name is unknown.
func Value(name string, e model.ProfileEntry) (int64, bool) {
	v, ok := metrics[Metric(name)]
	if !ok {
		return 0, false
	}
	return v(e)
}

// Valid reports whether m is a known metric.
func (m Metric) Valid() bool {
	_, ok := metrics[m]
	return ok
}

// Spec is an immutable sort state. The zero value is unsorted.
type Spec struct {
	Metric    Metric
	Direction Direction
}

// Unsorted is the spec that keeps filter order.
var Unsorted = Spec{}

// Sorted reports whether s orders entries at all.
func (s Spec) Sorted() bool {
	return s.Direction != None
}

// Toggle returns the state after toggling metric m. Repeated toggles on the
// same metric cycle unsorted -> desc -> asc -> unsorted; toggling a different
// metric starts again at desc.
func (s Spec) Toggle(m Metric) Spec {
	if !s.Sorted() || s.Metric != m {
		return Spec{Metric: m, Direction: Desc}
	}
	if s.Direction == Desc {
		return Spec{Metric: m, Direction: Asc}
	}
	return Unsorted
}

// ActiveMetric is the metric a toggle control currently refers to.
func (s Spec) ActiveMetric() Metric {
	if s.Sorted() {
		return s.Metric
	}
	return DefaultMetric
}

// String renders s as "none" or "<metric>:<direction>".
func (s Spec) String() string {
	if !s.Sorted() {
		return None.String()
	}
	return string(s.Metric) + ":" + s.Direction.String()
}

// ParseSpec parses the String form. "" and "none" mean unsorted; a bare
// metric name means descending.
func ParseSpec(in string) (Spec, error) {
	in = strings.ToLower(strings.TrimSpace(in))
	if in == "" || in == "none" {
		return Unsorted, nil
	}
	name, dir, hasDir := strings.Cut(in, ":")
	m := Metric(name)
	if !m.Valid() {
		return Unsorted, fmt.Errorf("unknown metric %q: %w", name, ErrInvalidSpec)
	}
	if !hasDir {
		return Spec{Metric: m, Direction: Desc}, nil
	}
	switch dir {
	case "desc":
		return Spec{Metric: m, Direction: Desc}, nil
	case "asc":
		return Spec{Metric: m, Direction: Asc}, nil
	case "none":
		return Unsorted, nil
	default:
		return Unsorted, fmt.Errorf("unknown direction %q: %w", dir, ErrInvalidSpec)
	}
}
