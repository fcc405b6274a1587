package app

import (
	"encoding/json"
	"time"

	"github.com/okian/clanstats/internal/domain/derive"
	"github.com/okian/clanstats/internal/domain/model"
	"github.com/okian/clanstats/internal/domain/scoring"
	"github.com/okian/clanstats/internal/domain/types"
)

// Report names double as output file stems.
const (
	ReportClanSnapshot = "clan_snapshot"
	ReportWarActive    = "war_active"
	ReportWarExecution = "war_execution"
)

// Reports lists every report in generation order.
var Reports = []string{ReportClanSnapshot, ReportWarActive, ReportWarExecution}

// Meta heads every document.
type Meta struct {
	GeneratedAt time.Time `json:"generatedAt"`
	RunID       string    `json:"runId"`
	Source      string    `json:"source,omitempty"`
	ClanTag     string    `json:"clanTag,omitempty"`
	State       string    `json:"state,omitempty"`
	Timing      string    `json:"timing,omitempty"`
	Note        string    `json:"note,omitempty"`
}

// ClanSnapshot is the clan_snapshot document.
type ClanSnapshot struct {
	Meta       Meta            `json:"meta"`
	Clan       ClanSummary     `json:"clan"`
	Members    []model.Profile `json:"members"`
	Aggregates Aggregates      `json:"aggregates"`
}

// ClanSummary is the clan header of a snapshot.
type ClanSummary struct {
	Tag          string          `json:"tag"`
	Name         string          `json:"name"`
	Members      *int            `json:"members"`
	WarWins      *int            `json:"warWins"`
	WarWinStreak *int            `json:"warWinStreak"`
	WarTies      *int            `json:"warTies"`
	WarLosses    *int            `json:"warLosses"`
	Warlog       json.RawMessage `json:"warlog"`
}

// Aggregates are the clan-wide statistics of a snapshot.
type Aggregates struct {
	THAvg          types.Average                           `json:"thAvg"`
	THDistribution []derive.THBucket                       `json:"thDistribution"`
	TopUnitsByCat  map[model.Category][]derive.StrengthRow `json:"topUnitsByCat"`
	Coverage       map[model.Category][]derive.CoverageRow `json:"coverage"`
	Resources      Resources                               `json:"resources"`
}

// Resources groups donation and upgrade planning data.
type Resources struct {
	TopDonors       map[model.Category][]derive.DonorRow    `json:"topDonors"`
	CoverageGaps    map[model.Category][]derive.CoverageRow `json:"coverageGaps"`
	Recommendations []derive.Recommendation                 `json:"recommendations"`
	Note            string                                  `json:"note"`
}

// WarActive is the war_active document.
type WarActive struct {
	Meta    Meta       `json:"meta"`
	Teams   []Team     `json:"teams"`
	Derived WarDerived `json:"derived"`
}

// Team is one side of the active war with member profiles.
type Team struct {
	Side    string       `json:"side"`
	Tag     string       `json:"tag"`
	Name    string       `json:"name"`
	Members []TeamMember `json:"members"`
}

// TeamMember is a war participant with its normalized profile.
type TeamMember struct {
	Tag         string        `json:"tag"`
	Name        string        `json:"name"`
	MapPosition *int          `json:"mapPosition"`
	Profile     model.Profile `json:"profile"`
	WarMember   WarAttacks    `json:"warMember"`
}

// WarAttacks wraps the attacks of a war member.
type WarAttacks struct {
	Attacks []model.Attack `json:"attacks"`
}

// WarDerived holds team threats and per-unit gaps.
type WarDerived struct {
	TopThreats map[string]map[model.Category][]derive.StrengthRow `json:"topThreats"`
	Gaps       map[model.Category][]derive.GapRow                 `json:"gaps"`
}

// WarExecution is the war_execution document.
type WarExecution struct {
	Meta         Meta                    `json:"meta"`
	Players      []scoring.PlayerSummary `json:"players"`
	Attacks      []scoring.AttackRow     `json:"attacks"`
	Leaderboards Leaderboards            `json:"leaderboards"`
	Scatter      []scoring.ScatterPoint  `json:"scatter"`
}

// Leaderboards ranks war players by several metrics.
type Leaderboards struct {
	MVP         []scoring.PlayerSummary `json:"mvp"`
	Stars       []scoring.PlayerSummary `json:"stars"`
	Destruction []scoring.PlayerSummary `json:"destruction"`
	AttacksUsed []scoring.PlayerSummary `json:"attacksUsed"`
}
