package derive_test

import "github.com/okian/clanstats/internal/domain/model"

func ptr(v int) *int { return &v }

func unit(name string, level, maxLevel int) model.Unit {
	return model.Unit{Name: name, Level: ptr(level), MaxLevel: ptr(maxLevel)}
}

func player(tag, name string, troops ...model.Unit) model.Profile {
	return model.Profile{Tag: tag, Name: name, Categories: model.Categories{Troops: troops}}
}
