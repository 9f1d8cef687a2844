package snapshot_test

import (
	"testing"

	"github.com/okian/ladder/internal/domain/model"
	"github.com/okian/ladder/internal/domain/snapshot"
	"github.com/smartystreets/goconvey/convey"
)

func dated(date, nick string) model.ProfileEntry {
	return model.ProfileEntry{SnapshotDate: date, Nickname: nick}
}

func TestSelectLatest(t *testing.T) {
	convey.Convey("Given a batch spanning two dates", t, func() {
		batch := []model.ProfileEntry{
			dated("2024-01-01", "a"),
			dated("2024-01-02", "b"),
			dated("2024-01-01", "c"),
			dated("2024-01-02", "d"),
			dated("2024-01-01", "e"),
		}

		convey.Convey("When selecting the latest snapshot", func() {
			got := snapshot.SelectLatest(batch)

			convey.Convey("Then exactly the newest date's entries are returned in order", func() {
				convey.So(len(got), convey.ShouldEqual, 2)
				convey.So(got[0].Nickname, convey.ShouldEqual, "b")
				convey.So(got[1].Nickname, convey.ShouldEqual, "d")
				for _, e := range got {
					convey.So(e.SnapshotDate, convey.ShouldEqual, "2024-01-02")
				}
			})

			convey.Convey("And the input batch is not modified", func() {
				convey.So(len(batch), convey.ShouldEqual, 5)
				convey.So(batch[0].Nickname, convey.ShouldEqual, "a")
			})
		})

		convey.Convey("When asking for the latest date", func() {
			convey.So(snapshot.LatestDate(batch), convey.ShouldEqual, "2024-01-02")
		})
	})

	convey.Convey("Given a batch where some entries have no date", t, func() {
		batch := []model.ProfileEntry{
			dated("", "legacy"),
			dated("2023-12-31", "old"),
			dated("2024-02-01", "new"),
		}

		convey.Convey("Then undated entries never join the selected snapshot", func() {
			got := snapshot.SelectLatest(batch)
			convey.So(len(got), convey.ShouldEqual, 1)
			convey.So(got[0].Nickname, convey.ShouldEqual, "new")
		})
	})

	convey.Convey("Given a legacy batch without any dates", t, func() {
		batch := []model.ProfileEntry{dated("", "x"), dated("", "y")}

		convey.Convey("Then the batch is returned unfiltered", func() {
			got := snapshot.SelectLatest(batch)
			convey.So(len(got), convey.ShouldEqual, 2)
			convey.So(snapshot.LatestDate(batch), convey.ShouldEqual, "")
		})
	})

	convey.Convey("Given an empty batch", t, func() {
		convey.Convey("Then the result is empty", func() {
			convey.So(len(snapshot.SelectLatest(nil)), convey.ShouldEqual, 0)
			convey.So(snapshot.Dates(nil), convey.ShouldBeEmpty)
		})
	})
}

func TestDates(t *testing.T) {
	convey.Convey("Given entries over several days", t, func() {
		batch := []model.ProfileEntry{
			dated("2024-01-03", "a"),
			dated("2024-01-01", "b"),
			dated("2024-01-10", "c"),
			dated("2024-01-03", "d"),
		}

		convey.Convey("Then distinct dates are listed newest first", func() {
			convey.So(snapshot.Dates(batch), convey.ShouldResemble, []string{"2024-01-10", "2024-01-03", "2024-01-01"})
		})
	})
}
