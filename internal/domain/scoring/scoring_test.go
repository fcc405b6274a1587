package scoring_test

import (
	"testing"

	"github.com/okian/clanstats/internal/domain/model"
	scoring "github.com/okian/clanstats/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func ip(v int) *int         { return &v }
func fp(v float64) *float64 { return &v }

func attack(defender string, stars int, destruction float64, order *int) model.Attack {
	return model.Attack{DefenderTag: defender, Stars: ip(stars), DestructionPercentage: fp(destruction), Order: order}
}

func TestScoreAttack(t *testing.T) {
	Convey("Given the default attack weights", t, func() {
		Convey("When the attacker hits a weaker base", func() {
			score := scoring.ScoreAttack(2, 80, 3-5)

			Convey("Then the negative delta adds nothing", func() {
				So(score, ShouldAlmostEqual, 2.8, 1e-9)
			})
		})

		Convey("When the attacker hits a stronger base", func() {
			score := scoring.ScoreAttack(3, 100, 2)

			Convey("Then each position of delta adds 0.15", func() {
				So(score, ShouldAlmostEqual, 4.3, 1e-9)
			})
		})

		Convey("When custom weights are supplied", func() {
			s := scoring.NewScorer(scoring.WithWeights(2, 0, 1))

			Convey("Then they replace the defaults", func() {
				So(s.Score(3, 100, 2), ShouldAlmostEqual, 8, 1e-9)
			})
		})

		Convey("When negative weights are supplied", func() {
			s := scoring.NewScorer(scoring.WithWeights(-1, 0, 0))

			Convey("Then the defaults are kept", func() {
				So(s.Score(2, 80, -2), ShouldAlmostEqual, 2.8, 1e-9)
			})
		})
	})
}

func TestStatus(t *testing.T) {
	Convey("Given fetched war payloads", t, func() {
		Convey("A failed fetch is unknown", func() {
			status, state := scoring.Status(nil)
			So(status, ShouldEqual, scoring.StatusUnknown)
			So(state, ShouldEqual, "unknown")
			So(status.String(), ShouldEqual, "unknown")
		})

		Convey("notInWar and a missing state mean no war", func() {
			status, state := scoring.Status(&model.War{State: "notInWar"})
			So(status, ShouldEqual, scoring.StatusNoWar)
			So(state, ShouldEqual, "notInWar")

			status, state = scoring.Status(&model.War{})
			So(status, ShouldEqual, scoring.StatusNoWar)
			So(state, ShouldEqual, "unknown")
		})

		Convey("Any other state is an active war with the raw label", func() {
			status, state := scoring.Status(&model.War{State: "preparation"})
			So(status, ShouldEqual, scoring.StatusInWar)
			So(state, ShouldEqual, "preparation")
			So(status.String(), ShouldEqual, "inWar")
		})
	})
}

func TestBuildExecution(t *testing.T) {
	Convey("Given a war between two clans", t, func() {
		opponent := model.WarClan{Members: []model.WarMember{
			{Tag: "#O1", Name: "Top", MapPosition: ip(1)},
			{Tag: "#O3", Name: "Mid", MapPosition: ip(3)},
			{Tag: "#O5", Name: "Low", MapPosition: ip(5)},
		}}
		clan := model.WarClan{Members: []model.WarMember{
			{Tag: "#A", Name: "Ann", MapPosition: ip(1), Attacks: []model.Attack{
				attack("#O3", 3, 100, ip(2)),
				attack("#O1", 1, 50, nil),
			}},
			{Tag: "#B", Name: "Bob", MapPosition: ip(3), Attacks: []model.Attack{
				attack("#O5", 2, 80, ip(1)),
			}},
			{Tag: "#C", Name: "Cid", MapPosition: ip(2)},
		}}

		players, attacks := scoring.BuildExecution(clan, opponent)

		Convey("Then every clan member gets a summary", func() {
			So(players, ShouldHaveLength, 3)

			ann := players[0]
			So(ann.AttacksUsed, ShouldEqual, 2)
			So(ann.TotalStars, ShouldEqual, 4)
			So(ann.TotalDestruction, ShouldAlmostEqual, 150, 1e-9)
			So(ann.TotalDelta, ShouldEqual, -2)
			So(float64(ann.MVPScore), ShouldAlmostEqual, 5.5, 1e-9)
			So(float64(ann.AvgStars), ShouldAlmostEqual, 2, 1e-9)
			So(float64(ann.AvgDestruction), ShouldAlmostEqual, 75, 1e-9)
			So(float64(ann.AvgDelta), ShouldAlmostEqual, -1, 1e-9)

			So(float64(players[1].MVPScore), ShouldAlmostEqual, 2.8, 1e-9)
		})

		Convey("Then members without attacks have zero averages", func() {
			cid := players[2]
			So(cid.AttacksUsed, ShouldEqual, 0)
			So(float64(cid.AvgStars), ShouldEqual, 0)
			So(float64(cid.AvgDestruction), ShouldEqual, 0)
			So(float64(cid.MVPScore), ShouldEqual, 0)
		})

		Convey("Then attacks are ordered with unordered attacks last", func() {
			So(attacks, ShouldHaveLength, 3)
			So(*attacks[0].Order, ShouldEqual, 1)
			So(attacks[0].AttackerTag, ShouldEqual, "#B")
			So(*attacks[1].Order, ShouldEqual, 2)
			So(attacks[2].Order, ShouldBeNil)
			So(attacks[2].DefenderTag, ShouldEqual, "#O1")
			So(*attacks[2].DefenderName, ShouldEqual, "Top")
		})
	})

	Convey("Given an attack on a defender missing from the opponent roster", t, func() {
		clan := model.WarClan{Members: []model.WarMember{
			{Tag: "#A", Name: "Ann", MapPosition: ip(4), Attacks: []model.Attack{attack("#GHOST", 1, 40, ip(1))}},
		}}

		_, attacks := scoring.BuildExecution(clan, model.WarClan{})

		Convey("Then the defender position counts as zero and has no name", func() {
			So(attacks[0].Delta, ShouldEqual, 4)
			So(attacks[0].DefenderName, ShouldBeNil)
		})
	})
}

func TestLeaderboard(t *testing.T) {
	Convey("Given player summaries", t, func() {
		players := []scoring.PlayerSummary{
			{Tag: "#C", Name: "Cid", MVPScore: 1, TotalStars: 3, AttacksUsed: 2},
			{Tag: "#A", Name: "Ann", MVPScore: 5.5, TotalStars: 3, AttacksUsed: 2},
			{Tag: "#B", Name: "Bob", MVPScore: 2.8, TotalStars: 2, AttacksUsed: 1, AvgDestruction: 80},
		}

		Convey("When ranking by mvp score with a limit", func() {
			board := scoring.Leaderboard(players, scoring.ByMVPScore, 2)

			Convey("Then the best two are returned in order", func() {
				So(board, ShouldHaveLength, 2)
				So(board[0].Tag, ShouldEqual, "#A")
				So(board[1].Tag, ShouldEqual, "#B")
			})
		})

		Convey("When ranking by a tied metric", func() {
			board := scoring.Leaderboard(players, scoring.ByTotalStars, 10)

			Convey("Then ties are broken by name", func() {
				So(board[0].Name, ShouldEqual, "Ann")
				So(board[1].Name, ShouldEqual, "Cid")
				So(board[2].Name, ShouldEqual, "Bob")
			})
		})

		Convey("When ranking by average destruction", func() {
			board := scoring.Leaderboard(players, scoring.ByAvgDestruction, 1)
			So(board[0].Tag, ShouldEqual, "#B")
		})

		Convey("Then the input slice is left untouched", func() {
			_ = scoring.Leaderboard(players, scoring.ByAttacksUsed, 10)
			So(players[0].Tag, ShouldEqual, "#C")
		})
	})
}

func TestScatter(t *testing.T) {
	Convey("Given player summaries", t, func() {
		points := scoring.Scatter([]scoring.PlayerSummary{
			{Tag: "#A", Name: "Ann", AvgDelta: -1, AvgStars: 2, AttacksUsed: 2},
		})

		Convey("Then each becomes one point", func() {
			So(points, ShouldHaveLength, 1)
			So(float64(points[0].AvgDelta), ShouldEqual, -1)
			So(points[0].AttacksUsed, ShouldEqual, 2)
		})
	})

	Convey("Given no players", t, func() {
		So(scoring.Scatter(nil), ShouldBeEmpty)
	})
}
