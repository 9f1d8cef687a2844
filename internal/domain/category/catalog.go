package category

import "maps"

// Catalog is the static, hand-authored category configuration.
type Catalog struct {
	// Labels maps a tab id to its display label.
	Labels map[int]string
	// Orders lists canonical job names per tab in display priority.
	Orders map[int][]string
	// SubGroupTabs lists the tabs that are split into jobs. Empty means every
	// non-zero tab is.
	SubGroupTabs []int
	// TopLevelSubGroups enables job sub-groups on the default (0) tab.
	TopLevelSubGroups bool
}

// DefaultCatalog returns the catalog used by the TW ranking sheet.
func DefaultCatalog() Catalog {
	return Catalog{
		Labels: map[int]string{
			0: "全部",
			1: "劍士",
			2: "弓箭手",
			3: "法師",
			4: "盜賊",
			5: "海盜",
			6: "人氣",
			7: "公會",
		},
		Orders: map[int][]string{
			1: {"狂戰士", "見習騎士", "槍騎兵"},
			2: {"獵人", "弩弓手"},
			3: {"僧侶", "冰雷巫師", "火毒巫師"},
			4: {"刺客", "俠盜"},
			5: {"槍手", "打手"},
		},
		SubGroupTabs: []int{1, 2, 3, 4, 5},
	}
}

// clone returns a deep copy so an Index never shares maps with its caller.
func (c Catalog) clone() Catalog {
	out := Catalog{
		Labels:            maps.Clone(c.Labels),
		Orders:            make(map[int][]string, len(c.Orders)),
		SubGroupTabs:      append([]int(nil), c.SubGroupTabs...),
		TopLevelSubGroups: c.TopLevelSubGroups,
	}
	for tab, order := range c.Orders {
		out.Orders[tab] = append([]string(nil), order...)
	}
	if out.Labels == nil {
		out.Labels = map[int]string{}
	}
	return out
}
