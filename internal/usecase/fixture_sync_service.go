package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/prediction-league/internal/domain/competition"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/round"
	"github.com/riskibarqy/prediction-league/internal/domain/season"
	"github.com/riskibarqy/prediction-league/internal/domain/team"
	"github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

const defaultSyncWorkers = 4

type FixtureSyncDeps struct {
	Competitions competition.Repository
	Seasons      season.Repository
	Rounds       round.Repository
	Matches      match.Repository
	Teams        team.Repository
	Gateway      FixtureGateway
	IDGen        id.Generator
	Clock        clockwork.Clock
	Logger       *logging.Logger
	Workers      int

	// ChunkInterval is the gateway's minimum interval between multi-id
	// lookups; consecutive chunks wait it out.
	ChunkInterval time.Duration
}

// FixtureSyncService reconciles provider fixtures with stored rounds, teams
// and matches.
type FixtureSyncService struct {
	competitions competition.Repository
	seasons      season.Repository
	rounds       round.Repository
	matches      match.Repository
	teams        team.Repository
	gateway      FixtureGateway
	idGen        id.Generator
	clock        clockwork.Clock
	logger       *logging.Logger
	workers      int

	// chunkInterval is waited between consecutive id lookups.
	chunkInterval time.Duration

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// SyncSummary reports a fan-out refresh over all active seasons.
type SyncSummary struct {
	SeasonCount  int `json:"season_count"`
	SuccessCount int `json:"success_count"`
	FailedCount  int `json:"failed_count"`
}

func NewFixtureSyncService(deps FixtureSyncDeps) *FixtureSyncService {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}
	workers := deps.Workers
	if workers <= 0 {
		workers = defaultSyncWorkers
	}

	return &FixtureSyncService{
		competitions: deps.Competitions,
		seasons:      deps.Seasons,
		rounds:       deps.Rounds,
		matches:      deps.Matches,
		teams:        deps.Teams,
		gateway:      deps.Gateway,
		idGen:        deps.IDGen,
		clock:        clock,
		logger:       logger.Named("fixture_sync"),
		workers:      workers,
		locks:        make(map[string]*sync.Mutex),

		chunkInterval: deps.ChunkInterval,
	}
}

func (s *FixtureSyncService) seasonLock(seasonID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[seasonID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[seasonID] = lock
	}
	return lock
}

// SyncSeason runs a full refresh of every fixture of the season.
func (s *FixtureSyncService) SyncSeason(ctx context.Context, seasonID string) (err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureSyncService.SyncSeason")
	defer span.End()
	defer func() { recordSpanError(span, err) }()

	lock := s.seasonLock(seasonID)
	lock.Lock()
	defer lock.Unlock()

	target, err := s.loadTarget(ctx, seasonID)
	if err != nil {
		return err
	}

	fixtures, err := s.gateway.SeasonFixtures(ctx, target.competition.ExternalID, target.season.Year)
	if err != nil {
		return fmt.Errorf("fetch season fixtures: %w", err)
	}

	return s.apply(ctx, target, fixtures)
}

// SyncActive refreshes matches of one season that should be live now. When a
// chunk fails the fixtures fetched so far are still applied.
func (s *FixtureSyncService) SyncActive(ctx context.Context, seasonID string) (err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureSyncService.SyncActive")
	defer span.End()
	defer func() { recordSpanError(span, err) }()

	lock := s.seasonLock(seasonID)
	lock.Lock()
	defer lock.Unlock()

	target, err := s.loadTarget(ctx, seasonID)
	if err != nil {
		return err
	}

	active, err := s.matches.ListActive(ctx, seasonID, s.clock.Now())
	if err != nil {
		return fmt.Errorf("list active matches: %w", err)
	}
	if len(active) == 0 {
		return nil
	}

	externalIDs := make([]int64, 0, len(active))
	for _, m := range active {
		externalIDs = append(externalIDs, m.ExternalID)
	}

	fixtures, _, fetchErr := s.fetchByIDs(ctx, externalIDs)
	if err := s.apply(ctx, target, fixtures); err != nil {
		return errors.Join(fetchErr, err)
	}
	return fetchErr
}

// fetchByIDs looks fixtures up in serial chunks and waits out the gateway's
// minimum interval between chunks. It returns the fixtures fetched so far and
// how many of the ids were requested successfully.
func (s *FixtureSyncService) fetchByIDs(ctx context.Context, externalIDs []int64) ([]ExternalFixture, int, error) {
	fixtures := make([]ExternalFixture, 0, len(externalIDs))
	for start := 0; start < len(externalIDs); start += MaxFixtureIDsPerRequest {
		if start > 0 && s.chunkInterval > 0 {
			// The gateway rejects a call made exactly at the minimum interval.
			select {
			case <-ctx.Done():
				return fixtures, start, ctx.Err()
			case <-s.clock.After(s.chunkInterval + time.Second):
			}
		}

		end := min(start+MaxFixtureIDsPerRequest, len(externalIDs))
		chunk, err := s.gateway.FixturesByIDs(ctx, externalIDs[start:end])
		if err != nil {
			return fixtures, start, fmt.Errorf("fetch active fixtures: %w", err)
		}
		fixtures = append(fixtures, chunk...)
	}
	return fixtures, len(externalIDs), nil
}

// SyncAllSeasons runs a full refresh for every active season. A failing
// season is logged and does not stop the others.
func (s *FixtureSyncService) SyncAllSeasons(ctx context.Context) (SyncSummary, error) {
	seasons, err := s.seasons.ListActive(ctx)
	if err != nil {
		return SyncSummary{}, fmt.Errorf("list active seasons: %w", err)
	}

	seasonIDs := make([]string, 0, len(seasons))
	for _, item := range seasons {
		seasonIDs = append(seasonIDs, item.ID)
	}
	return s.fanOut(ctx, "full", seasonIDs, s.SyncSeason)
}

// SyncAllActive refreshes live matches of every active season with one
// id lookup shared by all seasons, then applies each season's fixtures under
// its season lock. A season whose ids could not be fetched is reported as
// failed together with the fetch error.
func (s *FixtureSyncService) SyncAllActive(ctx context.Context) (summary SyncSummary, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FixtureSyncService.SyncAllActive")
	defer span.End()
	defer func() { recordSpanError(span, err) }()

	seasons, err := s.seasons.ListActive(ctx)
	if err != nil {
		return SyncSummary{}, fmt.Errorf("list active seasons: %w", err)
	}

	now := s.clock.Now()
	seasonIDs := make([]string, 0, len(seasons))
	targets := make(map[string]syncTarget, len(seasons))
	failures := make(map[string]error)
	owners := make(map[int64]string)
	var externalIDs []int64

	for _, item := range seasons {
		seasonIDs = append(seasonIDs, item.ID)

		target, err := s.loadTarget(ctx, item.ID)
		if err != nil {
			failures[item.ID] = err
			continue
		}
		active, err := s.matches.ListActive(ctx, item.ID, now)
		if err != nil {
			failures[item.ID] = fmt.Errorf("list active matches: %w", err)
			continue
		}
		targets[item.ID] = target
		for _, m := range active {
			owners[m.ExternalID] = item.ID
			externalIDs = append(externalIDs, m.ExternalID)
		}
	}

	fixtures, requested, fetchErr := s.fetchByIDs(ctx, externalIDs)
	if fetchErr != nil {
		for _, externalID := range externalIDs[requested:] {
			failures[owners[externalID]] = fetchErr
		}
	}

	grouped := make(map[string][]ExternalFixture, len(targets))
	for _, fixture := range fixtures {
		seasonID, ok := owners[fixture.ExternalID]
		if !ok {
			s.logger.WarnContext(ctx, "provider returned an unrequested fixture", "external_id", fixture.ExternalID)
			continue
		}
		grouped[seasonID] = append(grouped[seasonID], fixture)
	}

	summary, err = s.fanOut(ctx, "active", seasonIDs, func(ctx context.Context, seasonID string) error {
		lock := s.seasonLock(seasonID)
		lock.Lock()
		defer lock.Unlock()

		if err := s.apply(ctx, targets[seasonID], grouped[seasonID]); err != nil {
			return errors.Join(failures[seasonID], err)
		}
		return failures[seasonID]
	})
	if err != nil {
		return summary, err
	}
	return summary, fetchErr
}

func (s *FixtureSyncService) fanOut(ctx context.Context, mode string, seasonIDs []string, run func(context.Context, string) error) (SyncSummary, error) {
	summary := SyncSummary{SeasonCount: len(seasonIDs)}
	if len(seasonIDs) == 0 {
		return summary, nil
	}

	pool, err := ants.NewPool(min(s.workers, len(seasonIDs)))
	if err != nil {
		return summary, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var successCount atomic.Int32
	var failedCount atomic.Int32

	var workers sync.WaitGroup
	for _, seasonID := range seasonIDs {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			if err := run(ctx, seasonID); err != nil {
				failedCount.Add(1)
				s.logger.WarnContext(ctx, "season fixture refresh failed",
					"mode", mode,
					"season_id", seasonID,
					"error", err,
				)
				return
			}
			successCount.Add(1)
		}); err != nil {
			workers.Done()
			workers.Wait()
			return summary, fmt.Errorf("submit season refresh to worker pool: %w", err)
		}
	}
	workers.Wait()

	summary.SuccessCount = int(successCount.Load())
	summary.FailedCount = int(failedCount.Load())
	s.logger.InfoContext(ctx, "fixture refresh finished",
		"mode", mode,
		"seasons", summary.SeasonCount,
		"failed", summary.FailedCount,
	)
	return summary, nil
}

type syncTarget struct {
	competition competition.Competition
	season      season.Season
}

func (s *FixtureSyncService) loadTarget(ctx context.Context, seasonID string) (syncTarget, error) {
	item, ok, err := s.seasons.GetByID(ctx, seasonID)
	if err != nil {
		return syncTarget{}, fmt.Errorf("get season: %w", err)
	}
	if !ok {
		return syncTarget{}, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}

	comp, ok, err := s.competitions.GetByID(ctx, item.CompetitionID)
	if err != nil {
		return syncTarget{}, fmt.Errorf("get competition: %w", err)
	}
	if !ok {
		return syncTarget{}, fmt.Errorf("%w: competition=%s", ErrNotFound, item.CompetitionID)
	}

	return syncTarget{competition: comp, season: item}, nil
}

// syncPass holds the state of one apply call.
type syncPass struct {
	target          syncTarget
	state           *seasonState
	teams           map[int64]team.Team
	roundsRefreshed bool
	now             time.Time
}

func (s *FixtureSyncService) apply(ctx context.Context, target syncTarget, fixtures []ExternalFixture) error {
	if len(fixtures) == 0 {
		return nil
	}

	rounds, err := s.rounds.ListBySeason(ctx, target.season.ID)
	if err != nil {
		return fmt.Errorf("list rounds: %w", err)
	}
	matches, err := s.matches.ListBySeason(ctx, target.season.ID)
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}

	pass := &syncPass{
		target: target,
		state:  newSeasonState(target.season.ID, rounds, matches),
		teams:  make(map[int64]team.Team),
		now:    s.clock.Now(),
	}

	for _, fixture := range fixtures {
		if err := s.applyFixture(ctx, pass, fixture); err != nil {
			return err
		}
	}

	batch := pass.state.batch()
	if batch.Empty() {
		return nil
	}
	if err := s.matches.SaveSync(ctx, batch); err != nil {
		return fmt.Errorf("save fixture sync: %w", err)
	}

	s.logger.InfoContext(ctx, "fixtures synchronized",
		"season_id", target.season.ID,
		"fixtures", len(fixtures),
		"new_rounds", len(batch.NewRounds),
		"changed_matches", len(batch.Matches),
	)
	return nil
}

func (s *FixtureSyncService) applyFixture(ctx context.Context, pass *syncPass, fixture ExternalFixture) error {
	home, err := s.upsertTeam(ctx, pass, fixture.Home)
	if err != nil {
		return err
	}
	away, err := s.upsertTeam(ctx, pass, fixture.Away)
	if err != nil {
		return err
	}

	candidates := pass.state.roundsByAlias(fixture.RoundName)
	if len(candidates) == 0 && !pass.roundsRefreshed {
		if err := s.refreshRounds(ctx, pass); err != nil {
			return err
		}
		candidates = pass.state.roundsByAlias(fixture.RoundName)
	}
	if len(candidates) == 0 {
		return fmt.Errorf("%w: round %q could not be found for match between %s and %s",
			ErrSynchronization, fixture.RoundName, fixture.Home.Name, fixture.Away.Name)
	}

	target, err := round.PickLeg(candidates, func(firstLeg round.Round) bool {
		return pass.state.hasFixture(firstLeg.ID, away.ID, home.ID)
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSynchronization, err)
	}

	m, exists := pass.state.match(fixture.ExternalID)
	var before match.Match
	if exists {
		before = *m
	} else {
		matchID, err := s.idGen.NewID()
		if err != nil {
			return fmt.Errorf("generate match id: %w", err)
		}
		m = &match.Match{
			ID:         matchID,
			ExternalID: fixture.ExternalID,
			CreatedAt:  pass.now,
		}
		pass.state.add(m)
	}

	m.HomeTeamID = home.ID
	m.AwayTeamID = away.ID
	pass.state.move(m, target.ID)
	applyFixtureState(m, fixture)

	if !exists || !sameMatchState(before, *m) {
		m.UpdatedAt = pass.now
		pass.state.markDirty(m)
	}
	return nil
}

// refreshRounds plans rounds for provider aliases not stored yet. It runs at
// most once per pass.
func (s *FixtureSyncService) refreshRounds(ctx context.Context, pass *syncPass) error {
	pass.roundsRefreshed = true

	aliases, err := s.gateway.Rounds(ctx, pass.target.competition.ExternalID, pass.target.season.Year)
	if err != nil {
		return fmt.Errorf("fetch rounds: %w", err)
	}

	planned, err := round.Plan(pass.target.season.ID, pass.state.rounds, aliases, s.idGen.NewID)
	switch {
	case errors.Is(err, round.ErrUnknownAlias):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, round.ErrAmbiguousAlias):
		return fmt.Errorf("%w: %w", ErrSynchronization, err)
	case err != nil:
		return fmt.Errorf("plan rounds: %w", err)
	}

	for i := range planned {
		planned[i].CreatedAt = pass.now
	}
	pass.state.addRounds(planned)
	return nil
}

func (s *FixtureSyncService) upsertTeam(ctx context.Context, pass *syncPass, ext ExternalTeam) (team.Team, error) {
	if cached, ok := pass.teams[ext.ExternalID]; ok {
		return cached, nil
	}

	existing, ok, err := s.teams.GetByExternalID(ctx, ext.ExternalID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team by external id: %w", err)
	}

	switch {
	case !ok:
		teamID, err := s.idGen.NewID()
		if err != nil {
			return team.Team{}, fmt.Errorf("generate team id: %w", err)
		}
		existing = team.Team{
			ID:         teamID,
			Name:       ext.Name,
			LogoURL:    ext.LogoURL,
			ExternalID: ext.ExternalID,
			UpdatedAt:  pass.now,
		}
		if err := s.teams.Create(ctx, existing); err != nil {
			return team.Team{}, fmt.Errorf("create team: %w", err)
		}
	case !existing.SameDetails(ext.Name, ext.LogoURL):
		existing.Name = ext.Name
		existing.LogoURL = ext.LogoURL
		existing.UpdatedAt = pass.now
		if err := s.teams.Update(ctx, existing); err != nil {
			return team.Team{}, fmt.Errorf("update team: %w", err)
		}
	}

	pass.teams[ext.ExternalID] = existing
	return existing, nil
}

// applyFixtureState copies status, score and start time from the provider.
func applyFixtureState(m *match.Match, fixture ExternalFixture) {
	m.Status = match.StatusFromProvider(fixture.StatusShort)

	score := fixture.Goals
	if fixture.FullTime.Home != nil {
		score = fixture.FullTime
	}
	m.HomeScore = copyInt(score.Home)
	m.AwayScore = copyInt(score.Away)

	if m.Status == match.StatusNotDefined || fixture.StartAt == nil {
		m.StartTime = nil
		return
	}
	start := fixture.StartAt.UTC()
	m.StartTime = &start
}

func sameMatchState(a, b match.Match) bool {
	return a.RoundID == b.RoundID &&
		a.HomeTeamID == b.HomeTeamID &&
		a.AwayTeamID == b.AwayTeamID &&
		a.Status == b.Status &&
		equalIntPtr(a.HomeScore, b.HomeScore) &&
		equalIntPtr(a.AwayScore, b.AwayScore) &&
		equalTimePtr(a.StartTime, b.StartTime)
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
