package derive

import (
	"cmp"
	"slices"

	"github.com/okian/clanstats/internal/domain/model"
	"github.com/okian/clanstats/internal/domain/types"
)

// StrengthRow ranks a unit by how developed and how widespread it is.
type StrengthRow struct {
	Unit         string      `json:"unit"`
	Strength     types.Ratio `json:"strength"`
	AvgPct       types.Ratio `json:"avgPct"`
	Availability types.Ratio `json:"availability"`
}

// CoverageRow counts how many players have a unit at 90% or more.
type CoverageRow struct {
	Unit         string      `json:"unit"`
	Coverage90   int         `json:"coverage90"`
	CoverageRate types.Ratio `json:"coverageRate"`
	AvgPct       types.Ratio `json:"avgPct"`
	Players      int         `json:"players"`
}

// Donor is a player who can donate a unit.
type Donor struct {
	Tag   string      `json:"tag"`
	Name  string      `json:"name"`
	Level int         `json:"level"`
	Pct   types.Ratio `json:"pct"`
}

// DonorRow lists the best donors for a unit.
type DonorRow struct {
	Unit   string  `json:"unit"`
	Donors []Donor `json:"donors"`
}

// THBucket is one entry of the town hall distribution.
type THBucket struct {
	TH    int `json:"th"`
	Count int `json:"count"`
}

// CoverageMap is category -> unit -> coverage rate.
type CoverageMap map[model.Category]map[string]float64

// unitStat holds every defined percentage of one unit across players.
type unitStat struct {
	name    string
	values  []float64
	holders []holder
}

type holder struct {
	tag   string
	name  string
	level int
	pct   float64
}

// collect groups percentages by unit name across profiles. The result is
// ordered by unit name so iteration never depends on map order.
func collect(profiles []model.Profile, cat model.Category) []*unitStat {
	byName := make(map[string]*unitStat)
	for _, p := range profiles {
		for _, u := range p.Units(cat) {
			pct, ok := u.Percentage()
			if !ok {
				continue
			}
			s, found := byName[u.Name]
			if !found {
				s = &unitStat{name: u.Name}
				byName[u.Name] = s
			}
			s.values = append(s.values, pct)
			s.holders = append(s.holders, holder{tag: p.Tag, name: p.Name, level: u.LevelOrZero(), pct: pct})
		}
	}
	out := make([]*unitStat, 0, len(byName))
	for _, s := range byName {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *unitStat) int { return cmp.Compare(a.name, b.name) })
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func totalPlayers(profiles []model.Profile) float64 {
	return float64(max(len(profiles), 1))
}

// TopUnitsByCategory ranks units by strength = meanPct * availability,
// where availability is the share of players having the unit.
func TopUnitsByCategory(profiles []model.Profile, cat model.Category) []StrengthRow {
	total := totalPlayers(profiles)
	stats := collect(profiles, cat)
	out := make([]StrengthRow, 0, len(stats))
	for _, s := range stats {
		avg := mean(s.values)
		availability := float64(len(s.values)) / total
		out = append(out, StrengthRow{
			Unit:         s.name,
			Strength:     types.Ratio(avg * availability),
			AvgPct:       types.Ratio(avg),
			Availability: types.Ratio(availability),
		})
	}
	slices.SortStableFunc(out, func(a, b StrengthRow) int {
		if c := cmp.Compare(b.Strength, a.Strength); c != 0 {
			return c
		}
		return cmp.Compare(a.Unit, b.Unit)
	})
	return out
}

// Coverage counts, per unit, the players at 90% or more and the share of
// the whole roster they represent. Rows are sorted by (coverage90, avgPct)
// descending.
func Coverage(profiles []model.Profile, cat model.Category) []CoverageRow {
	total := totalPlayers(profiles)
	stats := collect(profiles, cat)
	out := make([]CoverageRow, 0, len(stats))
	for _, s := range stats {
		covered := 0
		for _, v := range s.values {
			if v >= defaultCoverageCutoff {
				covered++
			}
		}
		out = append(out, CoverageRow{
			Unit:         s.name,
			Coverage90:   covered,
			CoverageRate: types.Ratio(float64(covered) / total),
			AvgPct:       types.Ratio(mean(s.values)),
			Players:      len(s.values),
		})
	}
	slices.SortStableFunc(out, func(a, b CoverageRow) int {
		if c := cmp.Compare(b.Coverage90, a.Coverage90); c != 0 {
			return c
		}
		if c := cmp.Compare(b.AvgPct, a.AvgPct); c != 0 {
			return c
		}
		return cmp.Compare(a.Unit, b.Unit)
	})
	return out
}

// CoverageGaps returns rows whose coverage rate is at or below threshold,
// worst first: by (coverageRate, avgPct) ascending, truncated to limit.
func CoverageGaps(rows []CoverageRow, threshold float64, limit int) []CoverageRow {
	out := make([]CoverageRow, 0)
	for _, r := range rows {
		if float64(r.CoverageRate) <= threshold {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b CoverageRow) int {
		if c := cmp.Compare(a.CoverageRate, b.CoverageRate); c != 0 {
			return c
		}
		if c := cmp.Compare(a.AvgPct, b.AvgPct); c != 0 {
			return c
		}
		return cmp.Compare(a.Unit, b.Unit)
	})
	return truncate(out, limit)
}

// DefaultCoverageGaps applies the default threshold (0.2) and limit (20).
func DefaultCoverageGaps(rows []CoverageRow) []CoverageRow {
	return CoverageGaps(rows, defaultGapThreshold, defaultGapLimit)
}

// BuildCoverageMap indexes coverage rows by category and unit.
func BuildCoverageMap(rows map[model.Category][]CoverageRow) CoverageMap {
	out := make(CoverageMap, len(rows))
	for cat, rs := range rows {
		m := make(map[string]float64, len(rs))
		for _, r := range rs {
			m[r.Unit] = float64(r.CoverageRate)
		}
		out[cat] = m
	}
	return out
}

// TopDonorsByCategory lists, per unit, the n players with the highest
// (percentage, level). Units are ordered by name.
func TopDonorsByCategory(profiles []model.Profile, cat model.Category, n int) []DonorRow {
	stats := collect(profiles, cat)
	out := make([]DonorRow, 0, len(stats))
	for _, s := range stats {
		hs := slices.Clone(s.holders)
		slices.SortStableFunc(hs, func(a, b holder) int {
			if c := cmp.Compare(b.pct, a.pct); c != 0 {
				return c
			}
			if c := cmp.Compare(b.level, a.level); c != 0 {
				return c
			}
			if c := cmp.Compare(a.name, b.name); c != 0 {
				return c
			}
			return cmp.Compare(a.tag, b.tag)
		})
		hs = truncate(hs, n)
		donors := make([]Donor, 0, len(hs))
		for _, h := range hs {
			donors = append(donors, Donor{Tag: h.tag, Name: h.name, Level: h.level, Pct: types.Ratio(h.pct)})
		}
		out = append(out, DonorRow{Unit: s.name, Donors: donors})
	}
	return out
}

// DefaultTopDonors is TopDonorsByCategory with three donors per unit.
func DefaultTopDonors(profiles []model.Profile, cat model.Category) []DonorRow {
	return TopDonorsByCategory(profiles, cat, defaultDonorsPerUnit)
}

// THAverage is the mean town hall level of profiles that report one; 0 when
// none do.
func THAverage(profiles []model.Profile) float64 {
	var sum, n int
	for _, p := range profiles {
		if p.TH == nil || *p.TH == 0 {
			continue
		}
		sum += *p.TH
		n++
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// THDistribution counts players per town hall level, highest first.
func THDistribution(profiles []model.Profile) []THBucket {
	counts := make(map[int]int)
	for _, p := range profiles {
		if p.TH == nil {
			continue
		}
		counts[*p.TH]++
	}
	out := make([]THBucket, 0, len(counts))
	for th, c := range counts {
		out = append(out, THBucket{TH: th, Count: c})
	}
	slices.SortFunc(out, func(a, b THBucket) int { return cmp.Compare(b.TH, a.TH) })
	return out
}
