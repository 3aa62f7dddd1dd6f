package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/prediction-league/internal/domain/competition"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/round"
	"github.com/riskibarqy/prediction-league/internal/domain/season"
	"github.com/riskibarqy/prediction-league/internal/domain/team"
	"github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// SeasonSyncer runs fixture refreshes for one season.
type SeasonSyncer interface {
	SyncSeason(ctx context.Context, seasonID string) error
	SyncActive(ctx context.Context, seasonID string) error
}

type CompetitionDeps struct {
	Competitions competition.Repository
	Seasons      season.Repository
	Rounds       round.Repository
	Matches      match.Repository
	Teams        team.Repository
	Syncer       SeasonSyncer
	IDGen        id.Generator
	Clock        clockwork.Clock
	Logger       *logging.Logger
}

type CompetitionService struct {
	competitions competition.Repository
	seasons      season.Repository
	rounds       round.Repository
	matches      match.Repository
	teams        team.Repository
	syncer       SeasonSyncer
	idGen        id.Generator
	clock        clockwork.Clock
	logger       *logging.Logger
}

type AddCompetitionInput struct {
	Name       string
	ExternalID int64
}

type AddSeasonInput struct {
	CompetitionID string
	Year          string
	Active        bool
}

// UpdateSeasonInput changes only the fields that are set.
type UpdateSeasonInput struct {
	SeasonID string
	Year     *string
	Active   *bool
}

// RoundInfo is a round with its display label.
type RoundInfo struct {
	Round       round.Round
	DisplayName string
}

// Fixture is a stored match with both teams resolved.
type Fixture struct {
	Match    match.Match
	Round    RoundInfo
	HomeTeam team.Team
	AwayTeam team.Team
}

func NewCompetitionService(deps CompetitionDeps) *CompetitionService {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &CompetitionService{
		competitions: deps.Competitions,
		seasons:      deps.Seasons,
		rounds:       deps.Rounds,
		matches:      deps.Matches,
		teams:        deps.Teams,
		syncer:       deps.Syncer,
		idGen:        deps.IDGen,
		clock:        clock,
		logger:       logger.Named("competition"),
	}
}

func (s *CompetitionService) AddCompetition(ctx context.Context, input AddCompetitionInput) (competition.Competition, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.AddCompetition")
	defer span.End()

	competitionID, err := s.idGen.NewID()
	if err != nil {
		return competition.Competition{}, fmt.Errorf("generate competition id: %w", err)
	}

	item := competition.Competition{
		ID:         competitionID,
		Name:       strings.TrimSpace(input.Name),
		ExternalID: input.ExternalID,
		CreatedAt:  s.clock.Now().UTC(),
	}
	if err := item.Validate(); err != nil {
		return competition.Competition{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.competitions.Create(ctx, item); err != nil {
		recordSpanError(span, err)
		return competition.Competition{}, fmt.Errorf("create competition: %w", err)
	}

	s.logger.InfoContext(ctx, "competition added", "competition_id", item.ID, "external_id", item.ExternalID)
	return item, nil
}

func (s *CompetitionService) GetCompetition(ctx context.Context, competitionID string) (competition.Competition, error) {
	item, ok, err := s.competitions.GetByID(ctx, competitionID)
	if err != nil {
		return competition.Competition{}, fmt.Errorf("get competition: %w", err)
	}
	if !ok {
		return competition.Competition{}, fmt.Errorf("%w: competition=%s", ErrNotFound, competitionID)
	}
	return item, nil
}

func (s *CompetitionService) ListCompetitions(ctx context.Context) ([]competition.Competition, error) {
	items, err := s.competitions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}
	return items, nil
}

// AddSeason stores a season and runs its first full fixture refresh. A failed
// refresh is logged; the season stays and the scheduler retries later.
func (s *CompetitionService) AddSeason(ctx context.Context, input AddSeasonInput) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.AddSeason")
	defer span.End()

	if _, err := s.GetCompetition(ctx, input.CompetitionID); err != nil {
		return season.Season{}, err
	}
	if input.Active {
		if err := s.ensureNoOtherActive(ctx, input.CompetitionID, ""); err != nil {
			return season.Season{}, err
		}
	}

	seasonID, err := s.idGen.NewID()
	if err != nil {
		return season.Season{}, fmt.Errorf("generate season id: %w", err)
	}
	now := s.clock.Now().UTC()
	item := season.Season{
		ID:            seasonID,
		CompetitionID: input.CompetitionID,
		Year:          strings.TrimSpace(input.Year),
		Active:        input.Active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := item.Validate(); err != nil {
		return season.Season{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.seasons.Create(ctx, item); err != nil {
		recordSpanError(span, err)
		if errors.Is(err, season.ErrActiveSeasonExists) {
			return season.Season{}, fmt.Errorf("%w: %w", ErrRequestValidation, err)
		}
		return season.Season{}, fmt.Errorf("create season: %w", err)
	}

	if s.syncer != nil {
		if err := s.syncer.SyncSeason(ctx, item.ID); err != nil {
			s.logger.WarnContext(ctx, "initial season refresh failed", "season_id", item.ID, "error", err)
		}
	}

	return item, nil
}

func (s *CompetitionService) UpdateSeason(ctx context.Context, input UpdateSeasonInput) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.UpdateSeason")
	defer span.End()

	item, ok, err := s.seasons.GetByID(ctx, input.SeasonID)
	if err != nil {
		return season.Season{}, fmt.Errorf("get season: %w", err)
	}
	if !ok {
		return season.Season{}, fmt.Errorf("%w: season=%s", ErrNotFound, input.SeasonID)
	}

	if input.Year != nil {
		item.Year = strings.TrimSpace(*input.Year)
	}
	if input.Active != nil {
		if *input.Active && !item.Active {
			if err := s.ensureNoOtherActive(ctx, item.CompetitionID, item.ID); err != nil {
				return season.Season{}, err
			}
		}
		item.Active = *input.Active
	}
	if err := item.Validate(); err != nil {
		return season.Season{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.seasons.Update(ctx, item); err != nil {
		recordSpanError(span, err)
		if errors.Is(err, season.ErrActiveSeasonExists) {
			return season.Season{}, fmt.Errorf("%w: %w", ErrRequestValidation, err)
		}
		return season.Season{}, fmt.Errorf("update season: %w", err)
	}
	return item, nil
}

func (s *CompetitionService) ensureNoOtherActive(ctx context.Context, competitionID, excludeID string) error {
	count, err := s.seasons.CountActive(ctx, competitionID, excludeID)
	if err != nil {
		return fmt.Errorf("count active seasons: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: competition %s already has an active season", ErrRequestValidation, competitionID)
	}
	return nil
}

func (s *CompetitionService) ListSeasons(ctx context.Context, competitionID string) ([]season.Season, error) {
	if _, err := s.GetCompetition(ctx, competitionID); err != nil {
		return nil, err
	}
	items, err := s.seasons.ListByCompetition(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	return items, nil
}

func (s *CompetitionService) GetSeason(ctx context.Context, seasonID string) (season.Season, error) {
	item, ok, err := s.seasons.GetByID(ctx, seasonID)
	if err != nil {
		return season.Season{}, fmt.Errorf("get season: %w", err)
	}
	if !ok {
		return season.Season{}, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}
	return item, nil
}

func (s *CompetitionService) GetActiveSeason(ctx context.Context, competitionID string) (season.Season, error) {
	items, err := s.ListSeasons(ctx, competitionID)
	if err != nil {
		return season.Season{}, err
	}
	for _, item := range items {
		if item.Active {
			return item, nil
		}
	}
	return season.Season{}, fmt.Errorf("%w: no active season for competition=%s", ErrNotFound, competitionID)
}

// UpcomingRound returns the round of the earliest match starting after now
// in the competition's active season.
func (s *CompetitionService) UpcomingRound(ctx context.Context, competitionID string) (RoundInfo, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.UpcomingRound")
	defer span.End()

	active, err := s.GetActiveSeason(ctx, competitionID)
	if err != nil {
		return RoundInfo{}, err
	}
	matches, err := s.matches.ListBySeason(ctx, active.ID)
	if err != nil {
		return RoundInfo{}, fmt.Errorf("list matches: %w", err)
	}

	now := s.clock.Now()
	var next *match.Match
	for i := range matches {
		m := &matches[i]
		if m.StartTime == nil || !m.StartTime.After(now) {
			continue
		}
		if next == nil || m.StartTime.Before(*next.StartTime) {
			next = m
		}
	}
	if next == nil {
		return RoundInfo{}, fmt.Errorf("%w: no upcoming matches for season=%s", ErrNotFound, active.ID)
	}

	rounds, err := s.roundsByID(ctx, active.ID)
	if err != nil {
		return RoundInfo{}, err
	}
	rd, ok := rounds[next.RoundID]
	if !ok {
		return RoundInfo{}, fmt.Errorf("%w: round=%s", ErrNotFound, next.RoundID)
	}
	return RoundInfo{Round: rd, DisplayName: rd.DisplayName()}, nil
}

// RoundFixtures lists the matches of a round unit of the active season
// ordered by start time. Both legs of a tie share one round unit.
func (s *CompetitionService) RoundFixtures(ctx context.Context, competitionID string, orderNumber int) ([]Fixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CompetitionService.RoundFixtures")
	defer span.End()

	active, err := s.GetActiveSeason(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	matches, err := s.matches.ListByRoundUnit(ctx, active.ID, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("list round matches: %w", err)
	}
	if len(matches) == 0 {
		return []Fixture{}, nil
	}

	rounds, err := s.roundsByID(ctx, active.ID)
	if err != nil {
		return nil, err
	}

	teamIDs := make([]string, 0, len(matches)*2)
	for _, m := range matches {
		teamIDs = append(teamIDs, m.HomeTeamID, m.AwayTeamID)
	}
	teams, err := s.teams.ListByIDs(ctx, uniqueStrings(teamIDs))
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	teamByID := make(map[string]team.Team, len(teams))
	for _, t := range teams {
		teamByID[t.ID] = t
	}

	out := make([]Fixture, 0, len(matches))
	for _, m := range matches {
		rd := rounds[m.RoundID]
		out = append(out, Fixture{
			Match:    m,
			Round:    RoundInfo{Round: rd, DisplayName: rd.DisplayName()},
			HomeTeam: teamByID[m.HomeTeamID],
			AwayTeam: teamByID[m.AwayTeamID],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Match.StartTime, out[j].Match.StartTime
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return a.Before(*b)
	})
	return out, nil
}

// RefreshSeason runs a user-triggered refresh; errors propagate.
func (s *CompetitionService) RefreshSeason(ctx context.Context, seasonID string, activeOnly bool) error {
	if _, err := s.GetSeason(ctx, seasonID); err != nil {
		return err
	}
	if s.syncer == nil {
		return fmt.Errorf("%w: fixture sync is not configured", ErrDependencyUnavailable)
	}
	if activeOnly {
		return s.syncer.SyncActive(ctx, seasonID)
	}
	return s.syncer.SyncSeason(ctx, seasonID)
}

func (s *CompetitionService) roundsByID(ctx context.Context, seasonID string) (map[string]round.Round, error) {
	rounds, err := s.rounds.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}
	out := make(map[string]round.Round, len(rounds))
	for _, rd := range rounds {
		out[rd.ID] = rd
	}
	return out, nil
}

func uniqueStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
