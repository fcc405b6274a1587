// Package scoring rates war attacks and summarizes war execution per player.
package scoring

import (
	"github.com/okian/clanstats/internal/domain/model"
)

// Default attack weights.
const (
	defaultStarWeight        = 1.0
	defaultDestructionWeight = 0.01
	defaultDeltaWeight       = 0.15
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithWeights overrides the per-star, per-destruction-percent and
// per-position-delta weights. Negative weights are ignored.
func WithWeights(stars, destruction, delta float64) Option {
	return func(s *Scorer) {
		if stars >= 0 && destruction >= 0 && delta >= 0 {
			s.starWeight = stars
			s.destructionWeight = destruction
			s.deltaWeight = delta
		}
	}
}

// Scorer computes the MVP score of single attacks.
type Scorer struct {
	starWeight        float64
	destructionWeight float64
	deltaWeight       float64
}

// NewScorer creates a scorer with the default weights.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		starWeight:        defaultStarWeight,
		destructionWeight: defaultDestructionWeight,
		deltaWeight:       defaultDeltaWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score rates one attack. delta is attacker map position minus defender map
// position; only positive deltas (hitting a stronger base) add to the score.
func (s *Scorer) Score(stars int, destruction float64, delta int) float64 {
	return float64(stars)*s.starWeight +
		destruction*s.destructionWeight +
		float64(max(0, delta))*s.deltaWeight
}

// ScoreAttack rates an attack with the default weights:
// stars + destruction*0.01 + max(0, delta)*0.15.
func ScoreAttack(stars int, destruction float64, delta int) float64 {
	return defaultScorer.Score(stars, destruction, delta)
}

var defaultScorer = NewScorer()

// WarStatus is the tri-state war status gating war reports.
type WarStatus int

// War statuses.
const (
	StatusUnknown WarStatus = iota
	StatusNoWar
	StatusInWar
)

// String implements fmt.Stringer.
func (s WarStatus) String() string {
	switch s {
	case StatusNoWar:
		return "noWar"
	case StatusInWar:
		return "inWar"
	default:
		return "unknown"
	}
}

// Status classifies a fetched war. A nil war means the fetch failed.
// It also returns the state label reported in document metadata; a war
// without a state is not in war but is labelled "unknown".
func Status(war *model.War) (WarStatus, string) {
	switch {
	case war == nil:
		return StatusUnknown, "unknown"
	case war.State == "":
		return StatusNoWar, StatusUnknown.String()
	case war.State == model.WarStateNotInWar:
		return StatusNoWar, war.State
	default:
		return StatusInWar, war.State
	}
}
