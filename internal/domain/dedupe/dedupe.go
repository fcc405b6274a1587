// Package dedupe collapses roster entries that share a unit name.
//
// The API can list the same unit more than once (base and evolved forms
// share a name). Only one entry per name survives: the one with the highest
// maxLevel. The other entries are dropped, which loses information about the
// evolved form on purpose.
package dedupe

import "github.com/okian/clanstats/internal/domain/model"

// By keeps one item per key, preferring the item for which better(candidate,
// current) reports true. Items with an empty key are dropped. The result
// keeps the order in which each key was first seen.
func By[T any](items []T, key func(T) string, better func(candidate, current T) bool) []T {
	index := make(map[string]int, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		k := key(it)
		if k == "" {
			continue
		}
		i, seen := index[k]
		if !seen {
			index[k] = len(out)
			out = append(out, it)
			continue
		}
		if better(it, out[i]) {
			out[i] = it
		}
	}
	return out
}

// UnitsByName keeps the highest-maxLevel entry per unit name. Ties keep the
// earlier entry.
func UnitsByName(units []model.RawUnit) []model.RawUnit {
	return By(units,
		func(u model.RawUnit) string { return u.Name },
		func(candidate, current model.RawUnit) bool {
			return intOrZero(candidate.MaxLevel) > intOrZero(current.MaxLevel)
		},
	)
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
