// Package derive computes statistics over normalized player profiles.
//
// Every function is pure: inputs are never mutated and no I/O happens.
// Units whose percentage is undefined (missing or zero level/maxLevel) are
// excluded from any computation rather than counted as zero. Ties are broken
// by name so that output is reproducible.
package derive

import (
	"cmp"
	"slices"

	"github.com/okian/clanstats/internal/domain/model"
	"github.com/okian/clanstats/internal/domain/types"
)

// Defaults of the per-player derivations.
const (
	DefaultTopK           = 10
	NearMaxThreshold      = 0.9
	ResearchThreshold     = 0.8
	MaxedThreshold        = 1.0
	defaultCoverageCutoff = 0.9
	defaultGapThreshold   = 0.2
	defaultGapLimit       = 20
	defaultDonorsPerUnit  = 3
	defaultTeamGapLimit   = 10
)

// PowerIndex is the mean percentage of the units in cat. An empty category
// (or one where no unit has a percentage) has a power index of exactly 0.
func PowerIndex(p model.Profile, cat model.Category) float64 {
	var sum float64
	var n int
	for _, u := range p.Units(cat) {
		if pct, ok := u.Percentage(); ok {
			sum += pct
			n++
		}
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}

// TopNearMax returns up to k units at or above threshold, by percentage
// descending then name ascending.
func TopNearMax(p model.Profile, cat model.Category, k int, threshold float64) []model.UnitPct {
	out := make([]model.UnitPct, 0)
	for _, u := range p.Units(cat) {
		pct, ok := u.Percentage()
		if !ok || pct < threshold {
			continue
		}
		out = append(out, model.UnitPct{Name: u.Name, Pct: types.Ratio(pct)})
	}
	slices.SortStableFunc(out, func(a, b model.UnitPct) int {
		if c := cmp.Compare(b.Pct, a.Pct); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return truncate(out, k)
}

// UnitsByThreshold returns every unit at or above threshold, sorted by
// (percentage, level) descending, then name ascending.
func UnitsByThreshold(p model.Profile, cat model.Category, threshold float64) []model.UnitLevel {
	out := make([]model.UnitLevel, 0)
	for _, u := range p.Units(cat) {
		pct, ok := u.Percentage()
		if !ok || pct < threshold {
			continue
		}
		out = append(out, model.UnitLevel{
			Name:     u.Name,
			Level:    *u.Level,
			MaxLevel: *u.MaxLevel,
			Pct:      types.Ratio(pct),
		})
	}
	slices.SortStableFunc(out, compareUnitLevel)
	return out
}

// TopUnitsByThreshold is UnitsByThreshold truncated to k entries.
func TopUnitsByThreshold(p model.Profile, cat model.Category, threshold float64, k int) []model.UnitLevel {
	return truncate(UnitsByThreshold(p, cat, threshold), k)
}

// SuperActiveTroops lists the troops flagged as active super troops.
func SuperActiveTroops(p model.Profile) []model.SuperTroop {
	out := make([]model.SuperTroop, 0)
	for _, u := range p.Units(model.Troops) {
		if u.SuperActive {
			out = append(out, model.SuperTroop{Name: u.Name, Level: u.Level})
		}
	}
	return out
}

// SuperActiveCount counts active super troops.
func SuperActiveCount(p model.Profile) int {
	n := 0
	for _, u := range p.Units(model.Troops) {
		if u.SuperActive {
			n++
		}
	}
	return n
}

// BuildDerived computes the per-player statistics tree.
func BuildDerived(p model.Profile) *model.Derived {
	d := &model.Derived{
		PowerIndex:        make(map[model.Category]types.Ratio, len(model.CoreCategories)),
		TopNearMax:        make(map[model.Category][]model.UnitPct, len(model.AllCategories)),
		TopResearchByCat:  make(map[model.Category][]model.UnitLevel, 3),
		NearMaxUnitsByCat: make(map[model.Category][]model.UnitLevel, len(model.CoreCategories)),
		MaxUnitsByCat:     make(map[model.Category][]model.UnitLevel, len(model.CoreCategories)),
	}
	for _, cat := range model.CoreCategories {
		d.PowerIndex[cat] = types.Ratio(PowerIndex(p, cat))
		d.NearMaxUnitsByCat[cat] = UnitsByThreshold(p, cat, NearMaxThreshold)
		d.MaxUnitsByCat[cat] = UnitsByThreshold(p, cat, MaxedThreshold)
	}
	for _, cat := range model.AllCategories {
		d.TopNearMax[cat] = TopNearMax(p, cat, DefaultTopK, NearMaxThreshold)
	}
	for _, cat := range []model.Category{model.Troops, model.Pets, model.Spells} {
		d.TopResearchByCat[cat] = TopUnitsByThreshold(p, cat, ResearchThreshold, DefaultTopK)
	}
	d.TopNearMaxByCat = d.TopNearMax
	d.SuperActiveTroops = SuperActiveTroops(p)
	d.SuperActiveCount = SuperActiveCount(p)
	d.SuperActiveTroopsCount = d.SuperActiveCount
	return d
}

// WithDerived returns a copy of p carrying its derived statistics.
func WithDerived(p model.Profile) model.Profile {
	p.Derived = BuildDerived(p)
	return p
}

func compareUnitLevel(a, b model.UnitLevel) int {
	if c := cmp.Compare(b.Pct, a.Pct); c != 0 {
		return c
	}
	if c := cmp.Compare(b.Level, a.Level); c != 0 {
		return c
	}
	return cmp.Compare(a.Name, b.Name)
}

func truncate[T any](s []T, k int) []T {
	if k >= 0 && len(s) > k {
		return s[:k]
	}
	return s
}
