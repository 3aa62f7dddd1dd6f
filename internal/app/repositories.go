package app

import (
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/audit"
	"github.com/riskibarqy/prediction-league/internal/domain/competition"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/round"
	"github.com/riskibarqy/prediction-league/internal/domain/season"
	"github.com/riskibarqy/prediction-league/internal/domain/team"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	cacherepo "github.com/riskibarqy/prediction-league/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/prediction-league/internal/platform/cache"
)

type repositories struct {
	competitions competition.Repository
	seasons      season.Repository
	rounds       round.Repository
	matches      match.Repository
	teams        team.Repository
	users        user.Repository
	predictions  prediction.Repository
	audits       audit.Repository
}

func newPostgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		competitions: postgres.NewCompetitionRepository(db),
		seasons:      postgres.NewSeasonRepository(db),
		rounds:       postgres.NewRoundRepository(db),
		matches:      postgres.NewMatchRepository(db),
		teams:        postgres.NewTeamRepository(db),
		users:        postgres.NewUserRepository(db),
		predictions:  postgres.NewPredictionRepository(db),
		audits:       postgres.NewAuditRepository(db),
	}
}

func newMemoryRepositories() repositories {
	store := memory.NewFixtureStore()
	return repositories{
		competitions: memory.NewCompetitionRepository(),
		seasons:      memory.NewSeasonRepository(),
		rounds:       store.Rounds(),
		matches:      store.Matches(),
		teams:        memory.NewTeamRepository(),
		users:        memory.NewUserRepository(),
		predictions:  memory.NewPredictionRepository(),
		audits:       memory.NewAuditRepository(),
	}
}

// withReadCache wraps the rarely written lookups with the in-process cache.
func (r repositories) withReadCache(store *basecache.Store) repositories {
	r.competitions = cacherepo.NewCompetitionRepository(r.competitions, store)
	r.seasons = cacherepo.NewSeasonRepository(r.seasons, store)
	r.teams = cacherepo.NewTeamRepository(r.teams, store)
	return r
}
