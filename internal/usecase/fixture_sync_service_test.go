package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/prediction-league/internal/domain/competition"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/round"
	"github.com/riskibarqy/prediction-league/internal/domain/season"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	mu         sync.Mutex
	rounds     map[string][]string
	season     map[string][]ExternalFixture
	byID       map[int64]ExternalFixture
	failByIDs  int
	roundCalls int
	idBatches  [][]int64
}

func newStubGateway() *stubGateway {
	return &stubGateway{
		rounds: make(map[string][]string),
		season: make(map[string][]ExternalFixture),
		byID:   make(map[int64]ExternalFixture),
	}
}

func (g *stubGateway) Rounds(_ context.Context, _ int64, year string) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.roundCalls++
	return append([]string(nil), g.rounds[year]...), nil
}

func (g *stubGateway) SeasonFixtures(_ context.Context, _ int64, year string) ([]ExternalFixture, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	items, ok := g.season[year]
	if !ok {
		return nil, ErrRequestFailed
	}
	return append([]ExternalFixture(nil), items...), nil
}

func (g *stubGateway) FixturesByIDs(_ context.Context, ids []int64) ([]ExternalFixture, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.idBatches = append(g.idBatches, append([]int64(nil), ids...))
	if g.failByIDs > 0 && len(g.idBatches) == g.failByIDs {
		return nil, ErrTooOftenRequests
	}
	out := make([]ExternalFixture, 0, len(ids))
	for _, id := range ids {
		if f, ok := g.byID[id]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

type syncFixture struct {
	clock        *clockwork.FakeClock
	gateway      *stubGateway
	competitions *memory.CompetitionRepository
	seasons      *memory.SeasonRepository
	store        *memory.FixtureStore
	teams        *memory.TeamRepository
	service      *FixtureSyncService
}

var syncNow = time.Date(2024, 9, 10, 18, 0, 0, 0, time.UTC)

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	f := &syncFixture{
		clock:   clockwork.NewFakeClockAt(syncNow),
		gateway: newStubGateway(),
		competitions: memory.NewCompetitionRepository(competition.Competition{
			ID: "comp-1", Name: "Champions League", ExternalID: 2,
		}),
		seasons: memory.NewSeasonRepository(season.Season{
			ID: "season-1", CompetitionID: "comp-1", Year: "2024", Active: true,
		}),
		store: memory.NewFixtureStore(),
		teams: memory.NewTeamRepository(),
	}
	f.service = NewFixtureSyncService(FixtureSyncDeps{
		Competitions: f.competitions,
		Seasons:      f.seasons,
		Rounds:       f.store.Rounds(),
		Matches:      f.store.Matches(),
		Teams:        f.teams,
		Gateway:      f.gateway,
		IDGen:        &sequenceIDs{},
		Clock:        f.clock,
	})
	return f
}

func intPtr(v int) *int { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func extFixture(externalID int64, roundName string, home, away int64, status string, start *time.Time) ExternalFixture {
	return ExternalFixture{
		ExternalID:  externalID,
		RoundName:   roundName,
		StartAt:     start,
		StatusShort: status,
		Home:        ExternalTeam{ExternalID: home, Name: teamName(home), LogoURL: "logo"},
		Away:        ExternalTeam{ExternalID: away, Name: teamName(away), LogoURL: "logo"},
	}
}

func teamName(externalID int64) string {
	return "team-" + string(rune('A'+externalID-1))
}

func roundOf(t *testing.T, f *syncFixture, roundID string) round.Round {
	t.Helper()
	rounds, err := f.store.Rounds().ListBySeason(context.Background(), "season-1")
	require.NoError(t, err)
	for _, r := range rounds {
		if r.ID == roundID {
			return r
		}
	}
	t.Fatalf("round %s not found", roundID)
	return round.Round{}
}

func matchByExternal(t *testing.T, f *syncFixture, externalID int64) match.Match {
	t.Helper()
	matches, err := f.store.Matches().ListBySeason(context.Background(), "season-1")
	require.NoError(t, err)
	for _, m := range matches {
		if m.ExternalID == externalID {
			return m
		}
	}
	t.Fatalf("match with external id %d not found", externalID)
	return match.Match{}
}

func TestFixtureSyncService_SyncSeasonCreatesRoundsAndLegs(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t)
	kickoff := syncNow.Add(48 * time.Hour)
	f.gateway.rounds["2024"] = []string{"League Stage - 1", "Round of 16", "Final"}
	f.gateway.season["2024"] = []ExternalFixture{
		extFixture(101, "Round of 16", 1, 2, "NS", timePtr(kickoff)),
		extFixture(102, "Round of 16", 2, 1, "NS", timePtr(kickoff.Add(7*24*time.Hour))),
		extFixture(103, "Final", 3, 4, "TBD", timePtr(kickoff)),
	}

	err := f.service.SyncSeason(context.Background(), "season-1")
	require.Error(t, err)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("unexpected error for unknown alias: got=%v want=%v", err, ErrNotFound)
	}

	f.gateway.rounds["2024"] = []string{"Round of 16", "Final"}
	require.NoError(t, f.service.SyncSeason(context.Background(), "season-1"))

	first := matchByExternal(t, f, 101)
	second := matchByExternal(t, f, 102)
	if got := roundOf(t, f, first.RoundID).Type; got != round.TypeRoundOf16 {
		t.Fatalf("unexpected first leg round: got=%s want=%s", got, round.TypeRoundOf16)
	}
	if got := roundOf(t, f, second.RoundID).Type; got != round.TypeRoundOf16Return {
		t.Fatalf("unexpected return leg round: got=%s want=%s", got, round.TypeRoundOf16Return)
	}
	if first.Status != match.StatusPlanned || first.StartTime == nil {
		t.Fatalf("unexpected planned match state: %+v", first)
	}

	final := matchByExternal(t, f, 103)
	if final.Status != match.StatusNotDefined || final.StartTime != nil {
		t.Fatalf("not defined match must drop start time: %+v", final)
	}

	rounds, err := f.store.Rounds().ListBySeason(context.Background(), "season-1")
	require.NoError(t, err)
	if len(rounds) != 3 {
		t.Fatalf("unexpected round count: got=%d want=3", len(rounds))
	}
}

func TestFixtureSyncService_SyncSeasonIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t)
	kickoff := syncNow.Add(-2 * time.Hour)
	f.gateway.rounds["2024"] = []string{"Group A - 1"}
	item := extFixture(201, "Group A - 1", 1, 2, "FT", timePtr(kickoff))
	item.Goals = ExternalScore{Home: intPtr(1), Away: intPtr(1)}
	item.FullTime = ExternalScore{Home: intPtr(2), Away: intPtr(1)}
	f.gateway.season["2024"] = []ExternalFixture{item}

	require.NoError(t, f.service.SyncSeason(context.Background(), "season-1"))
	firstPass := matchByExternal(t, f, 201)

	require.NoError(t, f.service.SyncSeason(context.Background(), "season-1"))
	secondPass := matchByExternal(t, f, 201)

	if firstPass.ID != secondPass.ID || firstPass.RoundID != secondPass.RoundID {
		t.Fatalf("match identity changed between passes: first=%+v second=%+v", firstPass, secondPass)
	}
	if *secondPass.HomeScore != 2 || *secondPass.AwayScore != 1 {
		t.Fatalf("full time score must win over goals: got=%d-%d want=2-1", *secondPass.HomeScore, *secondPass.AwayScore)
	}
	if secondPass.Status != match.StatusFinished {
		t.Fatalf("unexpected status: got=%s want=%s", secondPass.Status, match.StatusFinished)
	}

	rounds, err := f.store.Rounds().ListBySeason(context.Background(), "season-1")
	require.NoError(t, err)
	if len(rounds) != 1 || rounds[0].OrderNumber != 1 {
		t.Fatalf("unexpected rounds after two passes: %+v", rounds)
	}
	if f.gateway.roundCalls != 1 {
		t.Fatalf("rounds must be refreshed only for unseen aliases: got=%d want=1", f.gateway.roundCalls)
	}
}

func TestFixtureSyncService_MissingRoundAfterRefresh(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t)
	f.gateway.rounds["2024"] = []string{"Final"}
	f.gateway.season["2024"] = []ExternalFixture{
		extFixture(301, "Semi-finals", 1, 2, "NS", nil),
		extFixture(302, "Semi-finals", 3, 4, "NS", nil),
	}

	err := f.service.SyncSeason(context.Background(), "season-1")
	if !errors.Is(err, ErrSynchronization) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrSynchronization)
	}
	if f.gateway.roundCalls != 1 {
		t.Fatalf("unexpected rounds refresh count: got=%d want=1", f.gateway.roundCalls)
	}

	matches, err := f.store.Matches().ListBySeason(context.Background(), "season-1")
	require.NoError(t, err)
	if len(matches) != 0 {
		t.Fatalf("failed pass must not persist matches: got=%d", len(matches))
	}
}

func TestFixtureSyncService_UpdatesChangedTeam(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t)
	f.gateway.rounds["2024"] = []string{"Final"}
	item := extFixture(401, "Final", 1, 2, "NS", nil)
	f.gateway.season["2024"] = []ExternalFixture{item}
	require.NoError(t, f.service.SyncSeason(context.Background(), "season-1"))

	item.Home.Name = "Renamed"
	f.gateway.season["2024"] = []ExternalFixture{item}
	require.NoError(t, f.service.SyncSeason(context.Background(), "season-1"))

	stored, ok, err := f.teams.GetByExternalID(context.Background(), 1)
	require.NoError(t, err)
	if !ok || stored.Name != "Renamed" {
		t.Fatalf("unexpected team after rename: ok=%v team=%+v", ok, stored)
	}
}

func TestFixtureSyncService_SyncActiveKeepsPartialProgressOnChunkFailure(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t)
	kickoff := syncNow.Add(-30 * time.Minute)
	f.gateway.rounds["2024"] = []string{"Regular Season - 1"}

	fixtures := make([]ExternalFixture, 0, 25)
	for i := int64(1); i <= 25; i++ {
		fixtures = append(fixtures, extFixture(1000+i, "Regular Season - 1", 1, 2, "1H", timePtr(kickoff)))
	}
	f.gateway.season["2024"] = fixtures
	require.NoError(t, f.service.SyncSeason(context.Background(), "season-1"))

	for _, item := range fixtures {
		item.StatusShort = "FT"
		item.FullTime = ExternalScore{Home: intPtr(3), Away: intPtr(0)}
		f.gateway.byID[item.ExternalID] = item
	}
	f.gateway.failByIDs = 2

	err := f.service.SyncActive(context.Background(), "season-1")
	if !errors.Is(err, ErrTooOftenRequests) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrTooOftenRequests)
	}
	if len(f.gateway.idBatches) != 2 || len(f.gateway.idBatches[0]) != 20 || len(f.gateway.idBatches[1]) != 5 {
		t.Fatalf("unexpected id batches: %v", f.gateway.idBatches)
	}

	active, err := f.store.Matches().ListActive(context.Background(), "season-1", f.clock.Now())
	require.NoError(t, err)
	if len(active) != 5 {
		t.Fatalf("first chunk must be applied despite the failure: got=%d active want=5", len(active))
	}

	f.gateway.failByIDs = 0
	require.NoError(t, f.service.SyncActive(context.Background(), "season-1"))
	active, err = f.store.Matches().ListActive(context.Background(), "season-1", f.clock.Now())
	require.NoError(t, err)
	if len(active) != 0 {
		t.Fatalf("unexpected active matches after retry: got=%d want=0", len(active))
	}
}

func TestFixtureSyncService_SyncAllSeasonsSwallowsSeasonFailure(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t)
	require.NoError(t, f.competitions.Create(context.Background(), competition.Competition{
		ID: "comp-2", Name: "Europa League", ExternalID: 3,
	}))
	require.NoError(t, f.seasons.Create(context.Background(), season.Season{
		ID: "season-2", CompetitionID: "comp-2", Year: "2023", Active: true,
	}))
	f.gateway.rounds["2024"] = []string{"Final"}
	f.gateway.season["2024"] = []ExternalFixture{extFixture(501, "Final", 1, 2, "NS", nil)}

	summary, err := f.service.SyncAllSeasons(context.Background())
	require.NoError(t, err)
	if summary.SeasonCount != 2 || summary.SuccessCount != 1 || summary.FailedCount != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	_ = matchByExternal(t, f, 501)
}
