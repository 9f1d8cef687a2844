package category_test

import (
	"testing"

	"github.com/okian/ladder/internal/domain/category"
	"github.com/okian/ladder/internal/domain/model"
	"github.com/okian/ladder/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func entry(tab int, job string) model.ProfileEntry {
	return model.ProfileEntry{CategoryTab: tab, Job: job}
}

func TestListTabs(t *testing.T) {
	Convey("Given a snapshot without any default-tab entries", t, func() {
		ix := category.New(category.DefaultCatalog())
		entries := []model.ProfileEntry{entry(3, ""), entry(1, ""), entry(3, ""), entry(7, "")}

		Convey("When listing tabs", func() {
			tabs := ix.ListTabs(entries)

			Convey("Then tabs are distinct, ascending and include the default tab", func() {
				So(tabs, ShouldResemble, []int{0, 1, 3, 7})
			})
		})

		Convey("When listing labeled tabs", func() {
			tabs := ix.Tabs(entries)

			Convey("Then labels come from the catalog", func() {
				So(tabs[0], ShouldResemble, types.Tab{ID: 0, Label: "全部"})
				So(tabs[1], ShouldResemble, types.Tab{ID: 1, Label: "劍士"})
				So(tabs[3], ShouldResemble, types.Tab{ID: 7, Label: "公會"})
			})
		})
	})

	Convey("Given an empty snapshot", t, func() {
		ix := category.New(category.DefaultCatalog())

		Convey("Then only the default tab is listed", func() {
			So(ix.ListTabs(nil), ShouldResemble, []int{0})
		})
	})

	Convey("Given a tab missing from the catalog", t, func() {
		ix := category.New(category.DefaultCatalog())

		Convey("Then it gets a placeholder label", func() {
			So(ix.Label(42), ShouldEqual, "未知分類 (42)")
		})
	})
}

func TestListSubGroups(t *testing.T) {
	Convey("Given tab 1 with a canonical and an unlisted job", t, func() {
		ix := category.New(category.DefaultCatalog())
		entries := []model.ProfileEntry{
			entry(1, "俠盜"),
			entry(1, "狂戰士"),
			entry(1, "俠盜"),
		}

		Convey("When listing its sub-groups", func() {
			got := ix.ListSubGroups(entries, 1)

			Convey("Then canonical jobs come first and unlisted ones follow", func() {
				So(got, ShouldResemble, []string{"狂戰士", "俠盜"})
			})
		})
	})

	Convey("Given a tab with several unlisted jobs and empty job names", t, func() {
		ix := category.New(category.DefaultCatalog())
		entries := []model.ProfileEntry{
			entry(2, "zeta"),
			entry(2, ""),
			entry(2, "弩弓手"),
			entry(2, "alpha"),
			entry(2, "獵人"),
			entry(3, "僧侶"),
		}

		Convey("Then the order is canonical, then lexicographic, without blanks or other tabs", func() {
			So(ix.ListSubGroups(entries, 2), ShouldResemble, []string{"獵人", "弩弓手", "alpha", "zeta"})
		})
	})

	Convey("Given canonical jobs without entries", t, func() {
		ix := category.New(category.DefaultCatalog())
		entries := []model.ProfileEntry{entry(3, "火毒巫師")}

		Convey("Then they are omitted", func() {
			So(ix.ListSubGroups(entries, 3), ShouldResemble, []string{"火毒巫師"})
		})
	})

	Convey("Given the default tab", t, func() {
		entries := []model.ProfileEntry{entry(0, "b"), entry(0, "a"), entry(1, "c")}

		Convey("When top-level sub-grouping is off", func() {
			ix := category.New(category.DefaultCatalog())

			Convey("Then there are no sub-groups", func() {
				So(ix.ListSubGroups(entries, 0), ShouldBeEmpty)
				So(ix.HasSubGroups(0), ShouldBeFalse)
			})
		})

		Convey("When top-level sub-grouping is on", func() {
			c := category.DefaultCatalog()
			c.TopLevelSubGroups = true
			ix := category.New(c)

			Convey("Then the default tab's jobs are sorted lexicographically", func() {
				So(ix.ListSubGroups(entries, 0), ShouldResemble, []string{"a", "b"})
			})
		})
	})

	Convey("Given tabs outside the sub-grouped set", t, func() {
		ix := category.New(category.DefaultCatalog())
		entries := []model.ProfileEntry{entry(6, "狂戰士")}

		Convey("Then they have no sub-groups", func() {
			So(ix.HasSubGroups(6), ShouldBeFalse)
			So(ix.ListSubGroups(entries, 6), ShouldBeEmpty)
		})

		Convey("Unless the catalog sub-groups every tab", func() {
			c := category.DefaultCatalog()
			c.SubGroupTabs = nil
			ix := category.New(c)
			So(ix.ListSubGroups(entries, 6), ShouldResemble, []string{"狂戰士"})
		})
	})

	Convey("Given a catalog whose canonical order repeats a job", t, func() {
		c := category.DefaultCatalog()
		c.Orders[1] = []string{"狂戰士", "狂戰士", "槍騎兵"}
		ix := category.New(c)
		entries := []model.ProfileEntry{entry(1, "槍騎兵"), entry(1, "狂戰士")}

		Convey("Then no job appears twice", func() {
			So(ix.ListSubGroups(entries, 1), ShouldResemble, []string{"狂戰士", "槍騎兵"})
		})
	})

	Convey("Given a catalog that is changed after building the index", t, func() {
		c := category.DefaultCatalog()
		ix := category.New(c)
		c.Labels[1] = "changed"

		Convey("Then the index keeps its own copy", func() {
			So(ix.Label(1), ShouldEqual, "劍士")
		})
	})
}
