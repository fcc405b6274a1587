// Package normalize converts raw player payloads into stable profiles.
package normalize

import (
	"github.com/okian/clanstats/internal/domain/dedupe"
	"github.com/okian/clanstats/internal/domain/model"
)

// heroPets are the hero pets, which the live API reports inside "troops".
var heroPets = map[string]struct{}{
	"L.A.S.S.I":     {},
	"Electro Owl":   {},
	"Mighty Yak":    {},
	"Unicorn":       {},
	"Frosty":        {},
	"Diggy":         {},
	"Poison Lizard": {},
	"Phoenix":       {},
	"Spirit Fox":    {},
	"Angry Jelly":   {},
	"Sneezy":        {},
}

// IsHeroPet reports whether name is a known hero pet.
func IsHeroPet(name string) bool {
	_, ok := heroPets[name]
	return ok
}

// Player builds a profile from a raw payload. It never fails: missing
// optional fields stay nil in the result.
func Player(raw model.RawPlayer) model.Profile {
	var troops, pets []model.RawUnit
	for _, u := range raw.Troops {
		if IsHeroPet(u.Name) {
			pets = append(pets, u)
			continue
		}
		troops = append(troops, u)
	}
	pets = append(pets, raw.Pets...)

	p := model.Profile{
		Tag:      raw.Tag,
		Name:     raw.Name,
		TH:       raw.TownHallLevel,
		ExpLevel: raw.ExpLevel,
		Categories: model.Categories{
			Troops:        units(troops),
			Spells:        units(raw.Spells),
			Heroes:        units(raw.Heroes),
			HeroEquipment: units(raw.HeroEquipment),
			Pets:          units(pets),
		},
	}
	if raw.Clan != nil && raw.Clan.Tag != "" {
		tag := raw.Clan.Tag
		p.ClanTag = &tag
	}
	return p
}

// PlayerJSON decodes and normalizes a raw player document.
func PlayerJSON(data []byte) (model.Profile, error) {
	raw, err := model.ParsePlayer(data)
	if err != nil {
		return model.Profile{}, err
	}
	return Player(raw), nil
}

// units keeps home-village entries, deduplicates them by name and maps them
// onto the internal unit shape. The result is never nil.
func units(raw []model.RawUnit) []model.Unit {
	home := make([]model.RawUnit, 0, len(raw))
	for _, u := range raw {
		if u.Village != model.VillageHome {
			continue
		}
		home = append(home, u)
	}

	deduped := dedupe.UnitsByName(home)
	out := make([]model.Unit, 0, len(deduped))
	for _, u := range deduped {
		out = append(out, model.Unit{
			Name:        u.Name,
			Level:       u.Level,
			MaxLevel:    u.MaxLevel,
			SuperActive: u.SuperTroopIsActive != nil && *u.SuperTroopIsActive,
		})
	}
	return out
}
