package scoring

import (
	"cmp"
	"slices"

	"github.com/okian/clanstats/internal/domain/model"
	"github.com/okian/clanstats/internal/domain/types"
)

// AttackRow is one clan attack with its score.
type AttackRow struct {
	Order        *int        `json:"order"`
	AttackerTag  string      `json:"attackerTag"`
	AttackerName string      `json:"attackerName"`
	DefenderTag  string      `json:"defenderTag"`
	DefenderName *string     `json:"defenderName"`
	Stars        int         `json:"stars"`
	Destruction  float64     `json:"destruction"`
	Delta        int         `json:"delta"`
	MVPScore     types.Score `json:"mvpScore"`
}

// PlayerSummary accumulates a player's attacks.
type PlayerSummary struct {
	Tag              string        `json:"tag"`
	Name             string        `json:"name"`
	MapPosition      *int          `json:"mapPosition"`
	AttacksUsed      int           `json:"attacksUsed"`
	TotalStars       int           `json:"totalStars"`
	TotalDestruction float64       `json:"totalDestruction"`
	TotalDelta       int           `json:"totalDelta"`
	MVPScore         types.Score   `json:"mvpScore"`
	AvgDestruction   types.Average `json:"avgDestruction"`
	AvgDelta         types.Average `json:"avgDelta"`
	AvgStars         types.Average `json:"avgStars"`
}

// ScatterPoint is the delta/stars pair plotted per player.
type ScatterPoint struct {
	Tag         string        `json:"tag"`
	Name        string        `json:"name"`
	AvgDelta    types.Average `json:"avgDelta"`
	AvgStars    types.Average `json:"avgStars"`
	AttacksUsed int           `json:"attacksUsed"`
}

// BuildExecution scores every clan attack against the opponent's map and
// summarizes each clan member. Attacks come back ordered by order
// ascending, with attacks lacking an order last.
func (s *Scorer) BuildExecution(clan, opponent model.WarClan) ([]PlayerSummary, []AttackRow) {
	positions := make(map[string]int, len(opponent.Members))
	names := make(map[string]string, len(opponent.Members))
	for _, m := range opponent.Members {
		if m.MapPosition != nil {
			positions[m.Tag] = *m.MapPosition
		}
		names[m.Tag] = m.Name
	}

	players := make([]PlayerSummary, 0, len(clan.Members))
	attacks := make([]AttackRow, 0)
	for _, m := range clan.Members {
		sum := PlayerSummary{Tag: m.Tag, Name: m.Name, MapPosition: m.MapPosition}
		attackerPos := 0
		if m.MapPosition != nil {
			attackerPos = *m.MapPosition
		}
		var mvp float64
		for _, a := range m.Attacks {
			delta := attackerPos - positions[a.DefenderTag]
			stars := 0
			if a.Stars != nil {
				stars = *a.Stars
			}
			destruction := 0.0
			if a.DestructionPercentage != nil {
				destruction = *a.DestructionPercentage
			}
			score := s.Score(stars, destruction, delta)

			row := AttackRow{
				Order:        a.Order,
				AttackerTag:  m.Tag,
				AttackerName: m.Name,
				DefenderTag:  a.DefenderTag,
				Stars:        stars,
				Destruction:  destruction,
				Delta:        delta,
				MVPScore:     types.Score(score),
			}
			if name, ok := names[a.DefenderTag]; ok {
				row.DefenderName = &name
			}
			attacks = append(attacks, row)

			sum.AttacksUsed++
			sum.TotalStars += stars
			sum.TotalDestruction += destruction
			sum.TotalDelta += delta
			mvp += score
		}
		sum.MVPScore = types.Score(mvp)
		if sum.AttacksUsed > 0 {
			n := float64(sum.AttacksUsed)
			sum.AvgDestruction = types.Average(sum.TotalDestruction / n)
			sum.AvgDelta = types.Average(float64(sum.TotalDelta) / n)
			sum.AvgStars = types.Average(float64(sum.TotalStars) / n)
		}
		players = append(players, sum)
	}

	SortAttacks(attacks)
	return players, attacks
}

// BuildExecution uses the default weights.
func BuildExecution(clan, opponent model.WarClan) ([]PlayerSummary, []AttackRow) {
	return defaultScorer.BuildExecution(clan, opponent)
}

// SortAttacks orders attacks by order ascending; attacks without an order
// sort after every ordered attack. Ties go by attacker tag.
func SortAttacks(attacks []AttackRow) {
	slices.SortStableFunc(attacks, func(a, b AttackRow) int {
		switch {
		case a.Order == nil && b.Order != nil:
			return 1
		case a.Order != nil && b.Order == nil:
			return -1
		case a.Order != nil && b.Order != nil:
			if c := cmp.Compare(*a.Order, *b.Order); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.AttackerTag, b.AttackerTag)
	})
}

// LeaderboardKey selects the metric a leaderboard ranks by.
type LeaderboardKey string

// Leaderboard keys.
const (
	ByMVPScore       LeaderboardKey = "mvpScore"
	ByTotalStars     LeaderboardKey = "totalStars"
	ByAvgDestruction LeaderboardKey = "avgDestruction"
	ByAttacksUsed    LeaderboardKey = "attacksUsed"
)

func (k LeaderboardKey) value(p PlayerSummary) float64 {
	switch k {
	case ByMVPScore:
		return float64(p.MVPScore)
	case ByTotalStars:
		return float64(p.TotalStars)
	case ByAvgDestruction:
		return float64(p.AvgDestruction)
	case ByAttacksUsed:
		return float64(p.AttacksUsed)
	}
	return 0
}

// Leaderboard returns up to limit players ranked by key descending, ties
// by name then tag.
func Leaderboard(players []PlayerSummary, key LeaderboardKey, limit int) []PlayerSummary {
	out := slices.Clone(players)
	slices.SortStableFunc(out, func(a, b PlayerSummary) int {
		if c := cmp.Compare(key.value(b), key.value(a)); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Tag, b.Tag)
	})
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Scatter projects players onto delta/stars points.
func Scatter(players []PlayerSummary) []ScatterPoint {
	out := make([]ScatterPoint, 0, len(players))
	for _, p := range players {
		out = append(out, ScatterPoint{
			Tag:         p.Tag,
			Name:        p.Name,
			AvgDelta:    p.AvgDelta,
			AvgStars:    p.AvgStars,
			AttacksUsed: p.AttacksUsed,
		})
	}
	return out
}
