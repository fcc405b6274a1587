package model

// WarStateNotInWar is the state the API reports outside of a war.
const WarStateNotInWar = "notInWar"

// War is the current war payload.
type War struct {
	State    string  `json:"state"`
	Clan     WarClan `json:"clan"`
	Opponent WarClan `json:"opponent"`
}

// WarClan is one side of a war.
type WarClan struct {
	Tag     string      `json:"tag"`
	Name    string      `json:"name"`
	Members []WarMember `json:"members"`
}

// WarMember is a participant with the attacks they made.
type WarMember struct {
	Tag         string   `json:"tag"`
	Name        string   `json:"name"`
	MapPosition *int     `json:"mapPosition"`
	Attacks     []Attack `json:"attacks"`
}

// Attack is a single war attack.
type Attack struct {
	AttackerTag           string   `json:"attackerTag"`
	DefenderTag           string   `json:"defenderTag"`
	Stars                 *int     `json:"stars"`
	DestructionPercentage *float64 `json:"destructionPercentage"`
	Order                 *int     `json:"order"`
}
