package derive_test

import (
	"testing"

	"github.com/okian/clanstats/internal/domain/derive"
	"github.com/okian/clanstats/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCompareTeams(t *testing.T) {
	Convey("Given a clan and an opponent", t, func() {
		clan := []model.Profile{
			player("#A", "a", unit("Hog", 10, 10), unit("Golem", 5, 10)),
			player("#B", "b", unit("Hog", 8, 10)),
		}
		opponent := []model.Profile{
			player("#X", "x", unit("Hog", 5, 10), unit("Golem", 10, 10), unit("Yeti", 2, 10)),
		}

		Convey("When comparing troops", func() {
			gaps := derive.DefaultCompareTeams(clan, opponent, model.Troops)

			Convey("Then gaps are sorted by absolute value", func() {
				So(len(gaps), ShouldEqual, 3)
				So(gaps[0].Unit, ShouldEqual, "Golem")
				So(float64(gaps[0].GapPct), ShouldAlmostEqual, -0.5, 1e-9)
				So(gaps[1].Unit, ShouldEqual, "Hog")
				So(float64(gaps[1].GapPct), ShouldAlmostEqual, 0.4, 1e-9)
				So(gaps[2].Unit, ShouldEqual, "Yeti")
				So(float64(gaps[2].GapPct), ShouldAlmostEqual, -0.2, 1e-9)
			})
		})

		Convey("When limiting", func() {
			So(len(derive.CompareTeams(clan, opponent, model.Troops, 1)), ShouldEqual, 1)
		})

		Convey("When building threats", func() {
			threats := derive.Threats(opponent)
			So(len(threats), ShouldEqual, 4)
			So(threats[model.Troops][0].Unit, ShouldEqual, "Golem")
			So(threats[model.Spells], ShouldBeEmpty)
		})
	})
}
