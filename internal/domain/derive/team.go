package derive

import (
	"cmp"
	"math"
	"slices"

	"github.com/okian/clanstats/internal/domain/model"
	"github.com/okian/clanstats/internal/domain/types"
)

// GapRow is the difference in average percentage between two teams.
// Positive values favour the clan.
type GapRow struct {
	Unit   string      `json:"unit"`
	GapPct types.Ratio `json:"gapPct"`
}

// AverageUnits maps unit name to its mean percentage across profiles.
func AverageUnits(profiles []model.Profile, cat model.Category) map[string]float64 {
	stats := collect(profiles, cat)
	out := make(map[string]float64, len(stats))
	for _, s := range stats {
		out[s.name] = mean(s.values)
	}
	return out
}

// CompareTeams returns the largest per-unit gaps between clan and opponent,
// by absolute gap descending. A unit missing on one side counts as 0 there.
func CompareTeams(clan, opponent []model.Profile, cat model.Category, limit int) []GapRow {
	clanAvg := AverageUnits(clan, cat)
	oppAvg := AverageUnits(opponent, cat)

	units := make(map[string]struct{}, len(clanAvg)+len(oppAvg))
	for u := range clanAvg {
		units[u] = struct{}{}
	}
	for u := range oppAvg {
		units[u] = struct{}{}
	}

	out := make([]GapRow, 0, len(units))
	for u := range units {
		out = append(out, GapRow{Unit: u, GapPct: types.Ratio(clanAvg[u] - oppAvg[u])})
	}
	slices.SortFunc(out, func(a, b GapRow) int {
		if c := cmp.Compare(math.Abs(float64(b.GapPct)), math.Abs(float64(a.GapPct))); c != 0 {
			return c
		}
		return cmp.Compare(a.Unit, b.Unit)
	})
	return truncate(out, limit)
}

// DefaultCompareTeams keeps the ten largest gaps.
func DefaultCompareTeams(clan, opponent []model.Profile, cat model.Category) []GapRow {
	return CompareTeams(clan, opponent, cat, defaultTeamGapLimit)
}

// Threats ranks unit strength per core category for one team.
func Threats(profiles []model.Profile) map[model.Category][]StrengthRow {
	out := make(map[model.Category][]StrengthRow, len(model.CoreCategories))
	for _, cat := range model.CoreCategories {
		out[cat] = TopUnitsByCategory(profiles, cat)
	}
	return out
}
