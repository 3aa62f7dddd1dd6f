package cache

import (
	"context"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

// ByteStore is a TTL byte cache, backed by memory or redis.
type ByteStore interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, value []byte) error
}

// FixtureGateway serves repeated multi-id lookups from cache so that an
// active refresh inside the provider's minimum interval reuses the last
// answers instead of failing. Cache errors fall through to the gateway.
type FixtureGateway struct {
	next   usecase.FixtureGateway
	cache  ByteStore
	logger *logging.Logger
}

func NewFixtureGateway(next usecase.FixtureGateway, store ByteStore, logger *logging.Logger) *FixtureGateway {
	if logger == nil {
		logger = logging.Default()
	}
	return &FixtureGateway{next: next, cache: store, logger: logger.Named("fixture_cache")}
}

func (g *FixtureGateway) Rounds(ctx context.Context, competitionExternalID int64, season string) ([]string, error) {
	return g.next.Rounds(ctx, competitionExternalID, season)
}

func (g *FixtureGateway) SeasonFixtures(ctx context.Context, competitionExternalID int64, season string) ([]usecase.ExternalFixture, error) {
	return g.next.SeasonFixtures(ctx, competitionExternalID, season)
}

// FixturesByIDs caches fixtures one by one, so any subset of a recent lookup
// is answered without an upstream call and only missing ids are fetched.
func (g *FixtureGateway) FixturesByIDs(ctx context.Context, externalIDs []int64) ([]usecase.ExternalFixture, error) {
	cached := make(map[int64]usecase.ExternalFixture, len(externalIDs))
	missing := make([]int64, 0, len(externalIDs))
	for _, externalID := range externalIDs {
		if item, ok := g.load(ctx, externalID); ok {
			cached[externalID] = item
			continue
		}
		missing = append(missing, externalID)
	}

	if len(missing) > 0 {
		items, err := g.next.FixturesByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			cached[item.ExternalID] = item
			g.store(ctx, item)
		}
	}

	out := make([]usecase.ExternalFixture, 0, len(externalIDs))
	for _, externalID := range externalIDs {
		if item, ok := cached[externalID]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (g *FixtureGateway) load(ctx context.Context, externalID int64) (usecase.ExternalFixture, bool) {
	key := fixtureKey(externalID)
	raw, ok, err := g.cache.GetBytes(ctx, key)
	if err != nil {
		g.logger.WarnContext(ctx, "fixture cache read failed", "key", key, "error", err)
		return usecase.ExternalFixture{}, false
	}
	if !ok {
		return usecase.ExternalFixture{}, false
	}

	var item usecase.ExternalFixture
	if err := sonic.Unmarshal(raw, &item); err != nil {
		g.logger.WarnContext(ctx, "fixture cache entry is corrupt", "key", key)
		return usecase.ExternalFixture{}, false
	}
	return item, true
}

func (g *FixtureGateway) store(ctx context.Context, item usecase.ExternalFixture) {
	key := fixtureKey(item.ExternalID)
	encoded, err := sonic.Marshal(item)
	if err != nil {
		g.logger.WarnContext(ctx, "fixture cache encode failed", "key", key, "error", err)
		return
	}
	if err := g.cache.SetBytes(ctx, key, encoded); err != nil {
		g.logger.WarnContext(ctx, "fixture cache write failed", "key", key, "error", err)
	}
}

func fixtureKey(externalID int64) string {
	return "fixtures:id:" + strconv.FormatInt(externalID, 10)
}
