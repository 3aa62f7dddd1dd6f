package cache

import (
	"context"
	"strconv"

	"github.com/riskibarqy/prediction-league/internal/domain/competition"
	"github.com/riskibarqy/prediction-league/internal/domain/season"
	"github.com/riskibarqy/prediction-league/internal/domain/team"
	basecache "github.com/riskibarqy/prediction-league/internal/platform/cache"
)

type CompetitionRepository struct {
	next  competition.Repository
	cache *basecache.Store
}

func NewCompetitionRepository(next competition.Repository, cache *basecache.Store) *CompetitionRepository {
	return &CompetitionRepository{next: next, cache: cache}
}

func (r *CompetitionRepository) List(ctx context.Context) ([]competition.Competition, error) {
	v, err := r.cache.GetOrLoad(ctx, competitionListKey, func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]competition.Competition(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]competition.Competition)
	return append([]competition.Competition(nil), items...), nil
}

func (r *CompetitionRepository) GetByID(ctx context.Context, competitionID string) (competition.Competition, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, competitionByIDKey(competitionID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, competitionID)
		if err != nil {
			return nil, err
		}
		return cachedCompetitionByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return competition.Competition{}, false, err
	}

	cached, _ := v.(cachedCompetitionByID)
	return cached.value, cached.exists, nil
}

func (r *CompetitionRepository) Create(ctx context.Context, c competition.Competition) error {
	if err := r.next.Create(ctx, c); err != nil {
		return err
	}

	r.cache.Delete(ctx, competitionListKey)
	r.cache.Delete(ctx, competitionByIDKey(c.ID))
	return nil
}

type cachedCompetitionByID struct {
	value  competition.Competition
	exists bool
}

// SeasonRepository caches season lookups by id. Writes drop the whole season
// namespace because active flags affect several list keys.
type SeasonRepository struct {
	next  season.Repository
	cache *basecache.Store
}

func NewSeasonRepository(next season.Repository, cache *basecache.Store) *SeasonRepository {
	return &SeasonRepository{next: next, cache: cache}
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, seasonPrefix+"id:"+seasonID, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, seasonID)
		if err != nil {
			return nil, err
		}
		return cachedSeasonByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return season.Season{}, false, err
	}

	cached, _ := v.(cachedSeasonByID)
	return cached.value, cached.exists, nil
}

func (r *SeasonRepository) ListByCompetition(ctx context.Context, competitionID string) ([]season.Season, error) {
	v, err := r.cache.GetOrLoad(ctx, seasonPrefix+"list:competition:"+competitionID, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByCompetition(ctx, competitionID)
		if err != nil {
			return nil, err
		}
		return append([]season.Season(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]season.Season)
	return append([]season.Season(nil), items...), nil
}

func (r *SeasonRepository) ListActive(ctx context.Context) ([]season.Season, error) {
	return r.next.ListActive(ctx)
}

func (r *SeasonRepository) CountActive(ctx context.Context, competitionID, excludeID string) (int, error) {
	return r.next.CountActive(ctx, competitionID, excludeID)
}

func (r *SeasonRepository) Create(ctx context.Context, s season.Season) error {
	if err := r.next.Create(ctx, s); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, seasonPrefix)
	return nil
}

func (r *SeasonRepository) Update(ctx context.Context, s season.Season) error {
	if err := r.next.Update(ctx, s); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, seasonPrefix)
	return nil
}

type cachedSeasonByID struct {
	value  season.Season
	exists bool
}

// TeamRepository caches the external id lookup the fixture sync runs for
// every fixture.
type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) GetByExternalID(ctx context.Context, externalID int64) (team.Team, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, teamByExternalIDKey(externalID), func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByExternalID(ctx, externalID)
		if err != nil {
			return nil, err
		}
		return cachedTeamByExternalID{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeamByExternalID)
	return cached.value, cached.exists, nil
}

func (r *TeamRepository) ListByIDs(ctx context.Context, teamIDs []string) ([]team.Team, error) {
	return r.next.ListByIDs(ctx, teamIDs)
}

func (r *TeamRepository) Create(ctx context.Context, t team.Team) error {
	if err := r.next.Create(ctx, t); err != nil {
		return err
	}
	r.cache.Delete(ctx, teamByExternalIDKey(t.ExternalID))
	return nil
}

func (r *TeamRepository) Update(ctx context.Context, t team.Team) error {
	if err := r.next.Update(ctx, t); err != nil {
		return err
	}
	r.cache.Delete(ctx, teamByExternalIDKey(t.ExternalID))
	return nil
}

type cachedTeamByExternalID struct {
	value  team.Team
	exists bool
}

const (
	competitionListKey = "competition:list"
	seasonPrefix       = "season:"
)

func competitionByIDKey(competitionID string) string {
	return "competition:id:" + competitionID
}

func teamByExternalIDKey(externalID int64) string {
	return "team:external:" + strconv.FormatInt(externalID, 10)
}
