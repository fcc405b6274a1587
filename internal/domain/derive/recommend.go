package derive

import (
	"cmp"
	"slices"

	"github.com/okian/clanstats/internal/domain/model"
	"github.com/okian/clanstats/internal/domain/types"
)

// Default recommendation parameters.
const (
	DefaultMinPct            = 0.85
	DefaultMaxPct            = 0.95
	DefaultCoverageThreshold = 0.2
	DefaultMaxPerPlayer      = 3
)

// Suggestion is one unit a player should finish upgrading.
type Suggestion struct {
	Category     model.Category `json:"category"`
	Unit         string         `json:"unit"`
	Level        int            `json:"level"`
	MaxLevel     int            `json:"maxLevel"`
	Pct          types.Ratio    `json:"pct"`
	CoverageRate types.Ratio    `json:"coverageRate"`
}

// Recommendation groups the suggestions of one player.
type Recommendation struct {
	Tag         string       `json:"tag"`
	Name        string       `json:"name"`
	Suggestions []Suggestion `json:"suggestions"`
}

// RecommendOption tunes RecommendUpgrades.
type RecommendOption func(*recommendConfig)

type recommendConfig struct {
	minPct            float64
	maxPct            float64
	coverageThreshold float64
	maxPerPlayer      int
}

// WithPctBand sets the inclusive personal percentage band worth finishing.
func WithPctBand(minPct, maxPct float64) RecommendOption {
	return func(c *recommendConfig) {
		if minPct <= maxPct {
			c.minPct = minPct
			c.maxPct = maxPct
		}
	}
}

// WithCoverageThreshold sets the clan coverage rate at or below which a
// unit counts as a clan-wide weakness.
func WithCoverageThreshold(threshold float64) RecommendOption {
	return func(c *recommendConfig) {
		c.coverageThreshold = threshold
	}
}

// WithMaxPerPlayer caps the suggestions kept per player.
func WithMaxPerPlayer(n int) RecommendOption {
	return func(c *recommendConfig) {
		if n > 0 {
			c.maxPerPlayer = n
		}
	}
}

// RecommendUpgrades suggests, for each player, units that are almost maxed
// (personal percentage within the band) while the clan as a whole is weak
// on them (coverage rate at or below the threshold). Suggestions are sorted
// by coverage rate ascending then percentage descending. Players without
// suggestions are omitted.
func RecommendUpgrades(profiles []model.Profile, coverage CoverageMap, opts ...RecommendOption) []Recommendation {
	cfg := recommendConfig{
		minPct:            DefaultMinPct,
		maxPct:            DefaultMaxPct,
		coverageThreshold: DefaultCoverageThreshold,
		maxPerPlayer:      DefaultMaxPerPlayer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	out := make([]Recommendation, 0)
	for _, p := range profiles {
		var suggestions []Suggestion
		for _, cat := range model.AllCategories {
			rates, ok := coverage[cat]
			if !ok {
				continue
			}
			for _, u := range p.Units(cat) {
				pct, ok := u.Percentage()
				if !ok || pct < cfg.minPct || pct > cfg.maxPct {
					continue
				}
				rate, known := rates[u.Name]
				if !known || rate > cfg.coverageThreshold {
					continue
				}
				suggestions = append(suggestions, Suggestion{
					Category:     cat,
					Unit:         u.Name,
					Level:        *u.Level,
					MaxLevel:     *u.MaxLevel,
					Pct:          types.Ratio(pct),
					CoverageRate: types.Ratio(rate),
				})
			}
		}
		if len(suggestions) == 0 {
			continue
		}
		slices.SortStableFunc(suggestions, func(a, b Suggestion) int {
			if c := cmp.Compare(a.CoverageRate, b.CoverageRate); c != 0 {
				return c
			}
			if c := cmp.Compare(b.Pct, a.Pct); c != 0 {
				return c
			}
			return cmp.Compare(a.Unit, b.Unit)
		})
		out = append(out, Recommendation{
			Tag:         p.Tag,
			Name:        p.Name,
			Suggestions: truncate(suggestions, cfg.maxPerPlayer),
		})
	}
	return out
}
