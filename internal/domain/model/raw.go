// Package model contains the raw API payload shapes and the normalized
// domain models passed between layers.
package model

import (
	"encoding/json"
	"fmt"
)

// VillageHome marks units that belong to the home village.
const VillageHome = "home"

// RawUnit is one entry of a troops/spells/heroes/equipment/pets listing as
// returned by the API. Numeric fields are pointers so that absent and null
// values stay distinguishable from zero.
type RawUnit struct {
	Name               string `json:"name"`
	Level              *int   `json:"level"`
	MaxLevel           *int   `json:"maxLevel"`
	Village            string `json:"village"`
	SuperTroopIsActive *bool  `json:"superTroopIsActive"`
}

// ClanRef is the short clan reference embedded in player payloads.
type ClanRef struct {
	Tag  string `json:"tag"`
	Name string `json:"name"`
}

// RawPlayer is the subset of the player payload the exporter reads.
type RawPlayer struct {
	Tag           string    `json:"tag"`
	Name          string    `json:"name"`
	TownHallLevel *int      `json:"townHallLevel"`
	ExpLevel      *int      `json:"expLevel"`
	Clan          *ClanRef  `json:"clan"`
	Troops        []RawUnit `json:"troops"`
	Spells        []RawUnit `json:"spells"`
	Heroes        []RawUnit `json:"heroes"`
	HeroEquipment []RawUnit `json:"heroEquipment"`
	Pets          []RawUnit `json:"pets"`
}

// Clan is the subset of the clan payload copied into the snapshot.
type Clan struct {
	Tag          string `json:"tag"`
	Name         string `json:"name"`
	Members      *int   `json:"members"`
	WarWins      *int   `json:"warWins"`
	WarWinStreak *int   `json:"warWinStreak"`
	WarTies      *int   `json:"warTies"`
	WarLosses    *int   `json:"warLosses"`
}

// ClanMember is one row of the clan member listing.
type ClanMember struct {
	Tag  string `json:"tag"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

// MemberList wraps the paginated member listing.
type MemberList struct {
	Items []ClanMember `json:"items"`
}

// ParsePlayer decodes a raw player payload.
func ParsePlayer(data []byte) (RawPlayer, error) {
	var p RawPlayer
	if err := json.Unmarshal(data, &p); err != nil {
		return RawPlayer{}, fmt.Errorf("decode player: %w", err)
	}
	return p, nil
}

// ParseClan decodes a raw clan payload.
func ParseClan(data []byte) (Clan, error) {
	var c Clan
	if err := json.Unmarshal(data, &c); err != nil {
		return Clan{}, fmt.Errorf("decode clan: %w", err)
	}
	return c, nil
}

// ParseMembers decodes a member listing and returns its items.
func ParseMembers(data []byte) ([]ClanMember, error) {
	var l MemberList
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}
	return l.Items, nil
}

// ParseWar decodes a current war payload.
func ParseWar(data []byte) (War, error) {
	var w War
	if err := json.Unmarshal(data, &w); err != nil {
		return War{}, fmt.Errorf("decode war: %w", err)
	}
	return w, nil
}
