package types_test

import (
	"encoding/json"
	"math"
	"testing"

	types "github.com/okian/clanstats/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRatio(t *testing.T) {
	Convey("Given a ratio with more than four decimals", t, func() {
		r := types.Ratio(2.0 / 3.0)

		Convey("When encoded as JSON", func() {
			b, err := json.Marshal(r)

			Convey("Then it is rounded to four places", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, "0.6667")
			})
		})

		Convey("Then the in-memory value keeps full precision", func() {
			So(float64(r), ShouldEqual, 2.0/3.0)
		})
	})

	Convey("Given whole and non-finite values", t, func() {
		b, _ := json.Marshal(types.Ratio(1))
		So(string(b), ShouldEqual, "1")
		b, _ = json.Marshal(types.Ratio(math.NaN()))
		So(string(b), ShouldEqual, "null")
	})
}

func TestScoreAndAverage(t *testing.T) {
	Convey("Given scores and averages inside a struct", t, func() {
		doc := struct {
			S types.Score   `json:"s"`
			A types.Average `json:"a"`
		}{S: 3.14159, A: 2.0 / 3.0}

		b, err := json.Marshal(doc)
		So(err, ShouldBeNil)
		So(string(b), ShouldEqual, `{"s":3.142,"a":0.67}`)
	})

	Convey("Round handles halves away from zero", t, func() {
		So(types.Round(0.125, 2), ShouldEqual, 0.13)
		So(types.Round(-1.5, 0), ShouldEqual, -2)
	})
}
