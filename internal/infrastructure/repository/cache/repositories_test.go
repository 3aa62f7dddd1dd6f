package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/prediction-league/internal/domain/competition"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/prediction-league/internal/platform/cache"
	"github.com/riskibarqy/prediction-league/internal/usecase"
	"github.com/stretchr/testify/require"
)

type countingGateway struct {
	calls atomic.Int32
	err   error

	mu        sync.Mutex
	requested [][]int64
}

func (g *countingGateway) Rounds(context.Context, int64, string) ([]string, error) {
	return nil, nil
}

func (g *countingGateway) SeasonFixtures(context.Context, int64, string) ([]usecase.ExternalFixture, error) {
	return nil, nil
}

func (g *countingGateway) FixturesByIDs(_ context.Context, ids []int64) ([]usecase.ExternalFixture, error) {
	g.calls.Add(1)
	g.mu.Lock()
	g.requested = append(g.requested, append([]int64(nil), ids...))
	g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	home := 2
	out := make([]usecase.ExternalFixture, 0, len(ids))
	for _, id := range ids {
		out = append(out, usecase.ExternalFixture{
			ExternalID:  id,
			RoundName:   "Final",
			StatusShort: "1H",
			Goals:       usecase.ExternalScore{Home: &home},
		})
	}
	return out, nil
}

func TestFixtureGateway_CachesWithinTTL(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	next := &countingGateway{}
	gateway := NewFixtureGateway(next, basecache.NewStoreWithClock(time.Minute, clock), nil)
	ctx := context.Background()

	first, err := gateway.FixturesByIDs(ctx, []int64{3, 1, 2})
	require.NoError(t, err)
	second, err := gateway.FixturesByIDs(ctx, []int64{1, 2, 3})
	require.NoError(t, err)

	if got := next.calls.Load(); got != 1 {
		t.Fatalf("unexpected upstream calls: got=%d want=1", got)
	}
	require.Len(t, second, len(first))
	if second[0].Goals.Home == nil || *second[0].Goals.Home != 2 {
		t.Fatalf("cached fixture lost its score: %+v", second[0])
	}

	clock.Advance(time.Minute)
	_, err = gateway.FixturesByIDs(ctx, []int64{1, 2, 3})
	require.NoError(t, err)
	if got := next.calls.Load(); got != 2 {
		t.Fatalf("expired entry must reload: got=%d want=2", got)
	}
}

func TestFixtureGateway_ServesSubsetsAndFetchesOnlyMissing(t *testing.T) {
	t.Parallel()

	next := &countingGateway{}
	gateway := NewFixtureGateway(next, basecache.NewStore(time.Minute), nil)
	ctx := context.Background()

	_, err := gateway.FixturesByIDs(ctx, []int64{10, 11, 20, 21})
	require.NoError(t, err)

	subset, err := gateway.FixturesByIDs(ctx, []int64{21, 20})
	require.NoError(t, err)
	if got := next.calls.Load(); got != 1 {
		t.Fatalf("subset of a cached lookup must not reach upstream: got=%d calls want=1", got)
	}
	require.Len(t, subset, 2)
	if subset[0].ExternalID != 21 || subset[1].ExternalID != 20 {
		t.Fatalf("unexpected order: got=%d,%d want=21,20", subset[0].ExternalID, subset[1].ExternalID)
	}

	mixed, err := gateway.FixturesByIDs(ctx, []int64{10, 30})
	require.NoError(t, err)
	require.Len(t, mixed, 2)
	require.Equal(t, []int64{30}, next.requested[len(next.requested)-1])
}

func TestFixtureGateway_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	next := &countingGateway{err: usecase.ErrTooOftenRequests}
	gateway := NewFixtureGateway(next, basecache.NewStore(time.Minute), nil)

	for range 2 {
		_, err := gateway.FixturesByIDs(context.Background(), []int64{7})
		if !errors.Is(err, usecase.ErrTooOftenRequests) {
			t.Fatalf("unexpected error: got=%v want=%v", err, usecase.ErrTooOftenRequests)
		}
	}
	if got := next.calls.Load(); got != 2 {
		t.Fatalf("errors must not be cached: got=%d calls want=2", got)
	}
}

func TestCompetitionRepository_InvalidatesOnCreate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewCompetitionRepository(memory.NewCompetitionRepository(), basecache.NewStore(0))

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, items)

	_, exists, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, repo.Create(ctx, competition.Competition{ID: "c1", Name: "Serie A", ExternalID: 135}))

	items, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item, exists, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	if !exists || item.Name != "Serie A" {
		t.Fatalf("stale competition after create: exists=%v item=%+v", exists, item)
	}
}
