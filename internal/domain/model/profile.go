package model

import "github.com/okian/clanstats/internal/domain/types"

// Category names a unit roster of a player.
type Category string

// Unit categories.
const (
	Troops        Category = "troops"
	Spells        Category = "spells"
	Heroes        Category = "heroes"
	HeroEquipment Category = "heroEquipment"
	Pets          Category = "pets"
)

// AllCategories lists every category in output order.
var AllCategories = []Category{Troops, Spells, Heroes, HeroEquipment, Pets}

// CoreCategories are the categories most aggregates are computed for.
var CoreCategories = []Category{Troops, Spells, Heroes, HeroEquipment}

// Unit is a normalized home-village unit.
type Unit struct {
	Name        string `json:"name"`
	Level       *int   `json:"level"`
	MaxLevel    *int   `json:"maxLevel"`
	SuperActive bool   `json:"superActive"`
}

// Percentage returns level/maxLevel. ok is false when either value is
// absent or zero; callers must skip such units rather than count them as 0.
func (u Unit) Percentage() (pct float64, ok bool) {
	return Percentage(u.Level, u.MaxLevel)
}

// LevelOrZero returns the level, or 0 when unknown.
func (u Unit) LevelOrZero() int {
	if u.Level == nil {
		return 0
	}
	return *u.Level
}

// Percentage computes level/maxLevel when both are present and non-zero.
func Percentage(level, maxLevel *int) (float64, bool) {
	if level == nil || maxLevel == nil || *level == 0 || *maxLevel == 0 {
		return 0, false
	}
	return float64(*level) / float64(*maxLevel), true
}

// Categories holds the per-category rosters of a profile.
type Categories struct {
	Troops        []Unit `json:"troops"`
	Spells        []Unit `json:"spells"`
	Heroes        []Unit `json:"heroes"`
	HeroEquipment []Unit `json:"heroEquipment"`
	Pets          []Unit `json:"pets"`
}

// Get returns the roster of c; unknown categories are empty.
func (c Categories) Get(cat Category) []Unit {
	switch cat {
	case Troops:
		return c.Troops
	case Spells:
		return c.Spells
	case Heroes:
		return c.Heroes
	case HeroEquipment:
		return c.HeroEquipment
	case Pets:
		return c.Pets
	}
	return nil
}

// Profile is a normalized player.
type Profile struct {
	Tag        string     `json:"tag"`
	Name       string     `json:"name"`
	TH         *int       `json:"th"`
	ExpLevel   *int       `json:"expLevel"`
	ClanTag    *string    `json:"clanTag"`
	Categories Categories `json:"categories"`
	Derived    *Derived   `json:"derived"`
}

// Units is shorthand for p.Categories.Get(cat).
func (p Profile) Units(cat Category) []Unit {
	return p.Categories.Get(cat)
}

// UnitPct is a unit name with its percentage.
type UnitPct struct {
	Name string      `json:"name"`
	Pct  types.Ratio `json:"pct"`
}

// UnitLevel is a unit with its level details and percentage.
type UnitLevel struct {
	Name     string      `json:"name"`
	Level    int         `json:"level"`
	MaxLevel int         `json:"maxLevel"`
	Pct      types.Ratio `json:"pct"`
}

// SuperTroop is an active super troop.
type SuperTroop struct {
	Name  string `json:"name"`
	Level *int   `json:"level"`
}

// Derived is the per-player statistics tree. Legacy keys are duplicated
// so existing consumers keep working.
type Derived struct {
	PowerIndex             map[Category]types.Ratio `json:"powerIndex"`
	TopNearMax             map[Category][]UnitPct   `json:"topNearMax"`
	TopNearMaxByCat        map[Category][]UnitPct   `json:"topNearMaxByCat"`
	TopResearchByCat       map[Category][]UnitLevel `json:"topResearchByCat"`
	NearMaxUnitsByCat      map[Category][]UnitLevel `json:"nearMaxUnitsByCat"`
	MaxUnitsByCat          map[Category][]UnitLevel `json:"maxUnitsByCat"`
	SuperActiveTroops      []SuperTroop             `json:"superActiveTroops"`
	SuperActiveCount       int                      `json:"superActiveCount"`
	SuperActiveTroopsCount int                      `json:"superActiveTroopsCount"`
}
