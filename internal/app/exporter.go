// Package app builds the clan snapshot and war reports from fetched data
// and writes them as JSON documents.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/clanstats/internal/domain/derive"
	"github.com/okian/clanstats/internal/domain/model"
	"github.com/okian/clanstats/internal/domain/normalize"
	"github.com/okian/clanstats/internal/domain/scoring"
	"github.com/okian/clanstats/internal/domain/types"
	"github.com/okian/clanstats/pkg/logger"
	"github.com/okian/clanstats/pkg/metrics"
)

const (
	defaultOutputDir = "outputs"
	leaderboardLimit = 10

	recommendationsNote = "Heuristic suggestions based on clan coverage; no laboratory data is used."
	executionNote       = "Attack order is used as an approximation of time."
)

// Fetcher is the data source the exporter reads from.
type Fetcher interface {
	Clan(ctx context.Context, tag string) (model.Clan, error)
	Members(ctx context.Context, tag string) ([]model.ClanMember, error)
	Player(ctx context.Context, tag string) (json.RawMessage, error)
	CurrentWar(ctx context.Context, tag string) (*model.War, error)
	WarLog(ctx context.Context, tag string) (json.RawMessage, error)
}

// Exporter assembles report documents for one clan. One Exporter is one
// run: every document it produces carries the same run id.
type Exporter struct {
	fetcher       Fetcher
	clanTag       string
	outputDir     string
	includeWarlog bool
	now           func() time.Time
	runID         string
	logger        logger.Logger
}

// New creates an exporter for clanTag reading from f.
func New(f Fetcher, clanTag string, opts ...Option) (*Exporter, error) {
	if f == nil {
		return nil, ErrMissingFetcher
	}
	if clanTag == "" {
		return nil, ErrMissingClanTag
	}
	e := &Exporter{
		fetcher:   f,
		clanTag:   clanTag,
		outputDir: defaultOutputDir,
		now:       time.Now,
		runID:     uuid.NewString(),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// RunID returns the identifier stamped into every document of this run.
func (e *Exporter) RunID() string { return e.runID }

// OutputDir returns the directory reports are written to.
func (e *Exporter) OutputDir() string { return e.outputDir }

func (e *Exporter) meta() Meta {
	return Meta{GeneratedAt: e.now().UTC(), RunID: e.runID}
}

// Snapshot builds the clan snapshot. Any failure fetching the clan, its
// members or one of their profiles aborts the snapshot.
func (e *Exporter) Snapshot(ctx context.Context) (*ClanSnapshot, error) {
	clan, err := e.fetcher.Clan(ctx, e.clanTag)
	if err != nil {
		return nil, fmt.Errorf("fetch clan %s: %w", e.clanTag, err)
	}
	members, err := e.fetcher.Members(ctx, e.clanTag)
	if err != nil {
		return nil, fmt.Errorf("fetch members of %s: %w", e.clanTag, err)
	}

	profiles := make([]model.Profile, 0, len(members))
	for _, m := range members {
		p, err := e.profile(ctx, m.Tag)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	metrics.UpdateClanMembers(len(profiles))

	var warlog json.RawMessage
	if e.includeWarlog {
		if warlog, err = e.fetcher.WarLog(ctx, e.clanTag); err != nil {
			return nil, fmt.Errorf("fetch war log of %s: %w", e.clanTag, err)
		}
	}

	meta := e.meta()
	meta.Source = "api"
	meta.ClanTag = e.clanTag

	e.logger.Info(ctx, "clan snapshot built",
		logger.String("clan", e.clanTag),
		logger.Int("members", len(profiles)))

	return &ClanSnapshot{
		Meta: meta,
		Clan: ClanSummary{
			Tag:          clan.Tag,
			Name:         clan.Name,
			Members:      clan.Members,
			WarWins:      clan.WarWins,
			WarWinStreak: clan.WarWinStreak,
			WarTies:      clan.WarTies,
			WarLosses:    clan.WarLosses,
			Warlog:       warlog,
		},
		Members:    profiles,
		Aggregates: aggregate(profiles),
	}, nil
}

func aggregate(profiles []model.Profile) Aggregates {
	topUnits := make(map[model.Category][]derive.StrengthRow, len(model.CoreCategories))
	coverage := make(map[model.Category][]derive.CoverageRow, len(model.CoreCategories))
	gaps := make(map[model.Category][]derive.CoverageRow, len(model.CoreCategories))
	for _, cat := range model.CoreCategories {
		topUnits[cat] = derive.TopUnitsByCategory(profiles, cat)
		coverage[cat] = derive.Coverage(profiles, cat)
		gaps[cat] = derive.DefaultCoverageGaps(coverage[cat])
	}

	return Aggregates{
		THAvg:          types.Average(derive.THAverage(profiles)),
		THDistribution: derive.THDistribution(profiles),
		TopUnitsByCat:  topUnits,
		Coverage:       coverage,
		Resources: Resources{
			TopDonors: map[model.Category][]derive.DonorRow{
				model.Troops: derive.DefaultTopDonors(profiles, model.Troops),
				model.Spells: derive.DefaultTopDonors(profiles, model.Spells),
			},
			CoverageGaps:    gaps,
			Recommendations: derive.RecommendUpgrades(profiles, derive.BuildCoverageMap(coverage)),
			Note:            recommendationsNote,
		},
	}
}

// profile fetches, normalizes and derives one player.
func (e *Exporter) profile(ctx context.Context, tag string) (model.Profile, error) {
	data, err := e.fetcher.Player(ctx, tag)
	if err != nil {
		return model.Profile{}, fmt.Errorf("fetch player %s: %w", tag, err)
	}
	p, err := normalize.PlayerJSON(data)
	if err != nil {
		return model.Profile{}, fmt.Errorf("normalize player %s: %w", tag, err)
	}
	metrics.RecordPlayerNormalized()
	return derive.WithDerived(p), nil
}

// ActiveWar builds the active war document. Teams and derived data are
// only computed while the clan is in a war; an unavailable war yields
// state "unknown".
func (e *Exporter) ActiveWar(ctx context.Context) (*WarActive, error) {
	war, err := e.fetcher.CurrentWar(ctx, e.clanTag)
	if err != nil {
		return nil, fmt.Errorf("fetch current war of %s: %w", e.clanTag, err)
	}
	status, state := scoring.Status(war)

	doc := &WarActive{
		Meta:  e.meta(),
		Teams: []Team{},
		Derived: WarDerived{
			TopThreats: map[string]map[model.Category][]derive.StrengthRow{},
			Gaps:       map[model.Category][]derive.GapRow{},
		},
	}
	doc.Meta.State = state
	if status != scoring.StatusInWar {
		e.logger.Info(ctx, "no active war", logger.String("state", state))
		return doc, nil
	}

	clanTeam, clanProfiles, err := e.team(ctx, war.Clan, "clan")
	if err != nil {
		return nil, err
	}
	oppTeam, oppProfiles, err := e.team(ctx, war.Opponent, "opponent")
	if err != nil {
		return nil, err
	}
	doc.Teams = []Team{clanTeam, oppTeam}
	doc.Derived.TopThreats["clan"] = derive.Threats(clanProfiles)
	doc.Derived.TopThreats["opponent"] = derive.Threats(oppProfiles)
	for _, cat := range model.CoreCategories {
		doc.Derived.Gaps[cat] = derive.DefaultCompareTeams(clanProfiles, oppProfiles, cat)
	}

	e.logger.Info(ctx, "active war built",
		logger.String("state", state),
		logger.Int("clanMembers", len(clanProfiles)),
		logger.Int("opponentMembers", len(oppProfiles)))
	return doc, nil
}

func (e *Exporter) team(ctx context.Context, wc model.WarClan, side string) (Team, []model.Profile, error) {
	team := Team{Side: side, Tag: wc.Tag, Name: wc.Name, Members: make([]TeamMember, 0, len(wc.Members))}
	profiles := make([]model.Profile, 0, len(wc.Members))
	for _, m := range wc.Members {
		p, err := e.profile(ctx, m.Tag)
		if err != nil {
			return Team{}, nil, err
		}
		attacks := m.Attacks
		if attacks == nil {
			attacks = []model.Attack{}
		}
		team.Members = append(team.Members, TeamMember{
			Tag:         m.Tag,
			Name:        m.Name,
			MapPosition: m.MapPosition,
			Profile:     p,
			WarMember:   WarAttacks{Attacks: attacks},
		})
		profiles = append(profiles, p)
	}
	return team, profiles, nil
}

// WarExecution scores the clan's attacks in the current war.
func (e *Exporter) WarExecution(ctx context.Context) (*WarExecution, error) {
	war, err := e.fetcher.CurrentWar(ctx, e.clanTag)
	if err != nil {
		return nil, fmt.Errorf("fetch current war of %s: %w", e.clanTag, err)
	}
	status, state := scoring.Status(war)

	players := []scoring.PlayerSummary{}
	attacks := []scoring.AttackRow{}
	if status == scoring.StatusInWar {
		players, attacks = scoring.BuildExecution(war.Clan, war.Opponent)
	}

	meta := e.meta()
	meta.State = state
	meta.Timing = "order"
	meta.Note = executionNote

	return &WarExecution{
		Meta:    meta,
		Players: players,
		Attacks: attacks,
		Leaderboards: Leaderboards{
			MVP:         scoring.Leaderboard(players, scoring.ByMVPScore, leaderboardLimit),
			Stars:       scoring.Leaderboard(players, scoring.ByTotalStars, leaderboardLimit),
			Destruction: scoring.Leaderboard(players, scoring.ByAvgDestruction, leaderboardLimit),
			AttacksUsed: scoring.Leaderboard(players, scoring.ByAttacksUsed, leaderboardLimit),
		},
		Scatter: scoring.Scatter(players),
	}, nil
}

// Build produces the named report document.
func (e *Exporter) Build(ctx context.Context, report string) (any, error) {
	switch report {
	case ReportClanSnapshot:
		return e.Snapshot(ctx)
	case ReportWarActive:
		return e.ActiveWar(ctx)
	case ReportWarExecution:
		return e.WarExecution(ctx)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownReport, report)
}

// Export builds and writes each named report in order, stopping at the
// first failure.
func (e *Exporter) Export(ctx context.Context, reports ...string) error {
	for _, name := range reports {
		start := time.Now()
		doc, err := e.Build(ctx, name)
		elapsed := float64(time.Since(start).Milliseconds())
		if err != nil {
			metrics.RecordReportBuild(name, "error", elapsed)
			e.logger.Error(ctx, "report failed", logger.String("report", name), logger.Error(err))
			return err
		}
		metrics.RecordReportBuild(name, "ok", elapsed)

		path, err := e.Write(name, doc)
		if err != nil {
			return err
		}
		e.logger.Info(ctx, "report written",
			logger.String("report", name),
			logger.String("path", path),
			logger.String("runId", e.runID))
	}
	return nil
}
