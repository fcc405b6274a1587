package model_test

import (
	"testing"

	"github.com/okian/clanstats/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ptr(v int) *int { return &v }

func TestPercentage(t *testing.T) {
	Convey("Given level and maxLevel pairs", t, func() {
		Convey("When either value is absent or zero", func() {
			cases := [][2]*int{
				{nil, ptr(10)},
				{ptr(5), nil},
				{nil, nil},
				{ptr(0), ptr(10)},
				{ptr(5), ptr(0)},
			}

			Convey("Then no percentage is produced", func() {
				for _, c := range cases {
					_, ok := model.Percentage(c[0], c[1])
					So(ok, ShouldBeFalse)
				}
			})
		})

		Convey("When level equals maxLevel", func() {
			pct, ok := model.Percentage(ptr(7), ptr(7))

			Convey("Then the percentage is exactly 1", func() {
				So(ok, ShouldBeTrue)
				So(pct, ShouldEqual, 1.0)
			})
		})

		Convey("When level is below maxLevel", func() {
			pct, ok := model.Unit{Name: "Pekka", Level: ptr(9), MaxLevel: ptr(10)}.Percentage()
			So(ok, ShouldBeTrue)
			So(pct, ShouldEqual, 0.9)
		})
	})
}

func TestCategories(t *testing.T) {
	Convey("Given a profile with rosters", t, func() {
		p := model.Profile{Categories: model.Categories{
			Troops: []model.Unit{{Name: "Giant"}},
			Pets:   []model.Unit{{Name: "Unicorn"}},
		}}

		So(len(p.Units(model.Troops)), ShouldEqual, 1)
		So(p.Units(model.Pets)[0].Name, ShouldEqual, "Unicorn")
		So(p.Units(model.Spells), ShouldBeEmpty)
		So(p.Units(model.Category("builder")), ShouldBeNil)
		So(model.Unit{}.LevelOrZero(), ShouldEqual, 0)
	})
}

func TestParse(t *testing.T) {
	Convey("Given raw payloads", t, func() {
		Convey("When parsing a player with nulls", func() {
			p, err := model.ParsePlayer([]byte(`{"tag":"#P1","name":"Ann","townHallLevel":null,"troops":[{"name":"Giant","level":3,"maxLevel":11,"village":"home"}]}`))
			So(err, ShouldBeNil)
			So(p.Tag, ShouldEqual, "#P1")
			So(p.TownHallLevel, ShouldBeNil)
			So(len(p.Troops), ShouldEqual, 1)
			So(p.Clan, ShouldBeNil)
		})

		Convey("When parsing members", func() {
			items, err := model.ParseMembers([]byte(`{"items":[{"tag":"#A","name":"a"},{"tag":"#B","name":"b"}]}`))
			So(err, ShouldBeNil)
			So(len(items), ShouldEqual, 2)
		})

		Convey("When parsing invalid JSON", func() {
			_, err := model.ParseWar([]byte(`{`))
			So(err, ShouldNotBeNil)
			_, err = model.ParseClan([]byte(`[`))
			So(err, ShouldNotBeNil)
		})
	})
}
