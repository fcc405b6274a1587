package derive_test

import (
	"testing"

	"github.com/okian/clanstats/internal/domain/derive"
	"github.com/okian/clanstats/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCoverage(t *testing.T) {
	Convey("Given two players where only one has a unit at 95%", t, func() {
		profiles := []model.Profile{
			player("#A", "a", unit("Dragon", 19, 20)),
			player("#B", "b"),
		}

		Convey("When computing coverage", func() {
			rows := derive.Coverage(profiles, model.Troops)

			Convey("Then coverage90 is 1 and the rate is 0.5", func() {
				So(len(rows), ShouldEqual, 1)
				So(rows[0].Unit, ShouldEqual, "Dragon")
				So(rows[0].Coverage90, ShouldEqual, 1)
				So(float64(rows[0].CoverageRate), ShouldEqual, 0.5)
				So(rows[0].Players, ShouldEqual, 1)
			})
		})
	})

	Convey("Given several units", t, func() {
		profiles := []model.Profile{
			player("#A", "a", unit("Hog", 10, 10), unit("Bowler", 9, 10), unit("Lava", 5, 10)),
			player("#B", "b", unit("Hog", 9, 10), unit("Bowler", 10, 10), unit("Lava", 6, 10)),
			player("#C", "c", unit("Hog", 5, 10)),
		}

		rows := derive.Coverage(profiles, model.Troops)

		Convey("Then rows are sorted by coverage90 then avgPct descending", func() {
			So(rows[0].Unit, ShouldEqual, "Bowler")
			So(rows[1].Unit, ShouldEqual, "Hog")
			So(rows[2].Unit, ShouldEqual, "Lava")
			So(rows[2].Coverage90, ShouldEqual, 0)
		})
	})

	Convey("Given no profiles", t, func() {
		So(derive.Coverage(nil, model.Troops), ShouldBeEmpty)
		So(derive.TopUnitsByCategory(nil, model.Troops), ShouldBeEmpty)
	})
}

func TestTopUnitsByCategory(t *testing.T) {
	Convey("Given a widespread mid unit and a rare maxed one", t, func() {
		profiles := []model.Profile{
			player("#A", "a", unit("Giant", 6, 10), unit("Titan", 10, 10)),
			player("#B", "b", unit("Giant", 8, 10)),
			player("#C", "c", unit("Giant", 7, 10)),
			player("#D", "d"),
		}

		rows := derive.TopUnitsByCategory(profiles, model.Troops)

		Convey("Then strength combines average and availability", func() {
			So(len(rows), ShouldEqual, 2)
			So(rows[0].Unit, ShouldEqual, "Giant")
			So(float64(rows[0].AvgPct), ShouldAlmostEqual, 0.7, 1e-9)
			So(float64(rows[0].Availability), ShouldEqual, 0.75)
			So(float64(rows[0].Strength), ShouldAlmostEqual, 0.525, 1e-9)
			So(rows[1].Unit, ShouldEqual, "Titan")
			So(float64(rows[1].Strength), ShouldEqual, 0.25)
		})
	})
}

func TestCoverageGaps(t *testing.T) {
	Convey("Given coverage rows", t, func() {
		rows := []derive.CoverageRow{
			{Unit: "A", CoverageRate: 0.5, AvgPct: 0.9},
			{Unit: "B", CoverageRate: 0.1, AvgPct: 0.7},
			{Unit: "C", CoverageRate: 0.1, AvgPct: 0.4},
			{Unit: "D", CoverageRate: 0.2, AvgPct: 0.3},
			{Unit: "E", CoverageRate: 0, AvgPct: 0.8},
		}

		Convey("When selecting gaps with the defaults", func() {
			gaps := derive.DefaultCoverageGaps(rows)

			Convey("Then well covered units are excluded and the worst come first", func() {
				So(len(gaps), ShouldEqual, 4)
				So(gaps[0].Unit, ShouldEqual, "E")
				So(gaps[1].Unit, ShouldEqual, "C")
				So(gaps[2].Unit, ShouldEqual, "B")
				So(gaps[3].Unit, ShouldEqual, "D")
			})
		})

		Convey("When limiting the result", func() {
			So(len(derive.CoverageGaps(rows, 0.2, 2)), ShouldEqual, 2)
		})
	})
}

func TestTopDonors(t *testing.T) {
	Convey("Given several players holding the same spell", t, func() {
		spells := func(tag, name string, level, maxLevel int) model.Profile {
			return model.Profile{Tag: tag, Name: name, Categories: model.Categories{
				Spells: []model.Unit{unit("Freeze", level, maxLevel)},
			}}
		}
		profiles := []model.Profile{
			spells("#A", "ann", 5, 7),
			spells("#B", "bob", 7, 7),
			spells("#C", "cid", 6, 7),
			spells("#D", "dee", 7, 7),
		}

		rows := derive.DefaultTopDonors(profiles, model.Spells)

		Convey("Then the best three donors are listed", func() {
			So(len(rows), ShouldEqual, 1)
			So(rows[0].Unit, ShouldEqual, "Freeze")
			So(len(rows[0].Donors), ShouldEqual, 3)
			So(rows[0].Donors[0].Name, ShouldEqual, "bob")
			So(rows[0].Donors[1].Name, ShouldEqual, "dee")
			So(rows[0].Donors[2].Name, ShouldEqual, "cid")
			So(rows[0].Donors[2].Level, ShouldEqual, 6)
		})
	})
}

func TestTownHall(t *testing.T) {
	Convey("Given profiles with and without town hall levels", t, func() {
		profiles := []model.Profile{
			{Tag: "#A", TH: ptr(15)},
			{Tag: "#B", TH: ptr(14)},
			{Tag: "#C", TH: ptr(15)},
			{Tag: "#D"},
		}

		So(derive.THAverage(profiles), ShouldAlmostEqual, 44.0/3.0, 1e-9)
		So(derive.THDistribution(profiles), ShouldResemble, []derive.THBucket{
			{TH: 15, Count: 2},
			{TH: 14, Count: 1},
		})
		So(derive.THAverage(nil), ShouldEqual, 0)
	})
}

func TestBuildCoverageMap(t *testing.T) {
	Convey("Given coverage rows per category", t, func() {
		m := derive.BuildCoverageMap(map[model.Category][]derive.CoverageRow{
			model.Troops: {{Unit: "Hog", CoverageRate: 0.25}},
		})

		So(m[model.Troops]["Hog"], ShouldEqual, 0.25)
		_, ok := m[model.Spells]
		So(ok, ShouldBeFalse)
	})
}
