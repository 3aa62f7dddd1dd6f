package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/prediction-league/internal/domain/audit"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
)

type stubProvider struct {
	mu       sync.Mutex
	calls    atomic.Int32
	fixtures map[int64]ExternalFixture
	season   []ExternalFixture
	rounds   []string
	err      error
	lastIDs  [][]int64
}

func (p *stubProvider) APIKey() string { return "test-key" }

func (p *stubProvider) FetchRounds(_ context.Context, league int64, season string) ([]string, string, error) {
	p.calls.Add(1)
	uri := fmt.Sprintf("/fixtures/rounds?league=%d&season=%s", league, season)
	if p.err != nil {
		return nil, uri, p.err
	}
	return append([]string(nil), p.rounds...), uri, nil
}

func (p *stubProvider) FetchSeasonFixtures(_ context.Context, league int64, season string) ([]ExternalFixture, string, error) {
	p.calls.Add(1)
	uri := fmt.Sprintf("/fixtures?league=%d&season=%s", league, season)
	if p.err != nil {
		return nil, uri, p.err
	}
	return append([]ExternalFixture(nil), p.season...), uri, nil
}

func (p *stubProvider) FetchFixturesByIDs(_ context.Context, ids []int64) ([]ExternalFixture, string, error) {
	p.calls.Add(1)
	p.mu.Lock()
	p.lastIDs = append(p.lastIDs, append([]int64(nil), ids...))
	p.mu.Unlock()

	uri := fmt.Sprintf("/fixtures?ids=%v", ids)
	if p.err != nil {
		return nil, uri, p.err
	}
	out := make([]ExternalFixture, 0, len(ids))
	for _, id := range ids {
		if f, ok := p.fixtures[id]; ok {
			out = append(out, f)
		}
	}
	return out, uri, nil
}

type sequenceIDs struct {
	n atomic.Int64
}

func (s *sequenceIDs) NewID() (string, error) {
	return fmt.Sprintf("id-%d", s.n.Add(1)), nil
}

func newTestGateway(provider FixtureProvider, audits audit.Repository, clock clockwork.Clock, policy GatewayPolicy) *AuditedGateway {
	return NewAuditedGateway(provider, audits, &sequenceIDs{}, clock, policy, nil)
}

func TestBillingDayStart(t *testing.T) {
	t.Parallel()

	dayStarts := 6*time.Hour + 30*time.Minute
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before boundary rolls back one day",
			now:  time.Date(2025, 3, 10, 6, 29, 59, 999, time.UTC),
			want: time.Date(2025, 3, 9, 6, 30, 0, 0, time.UTC),
		},
		{
			name: "at boundary starts new day",
			now:  time.Date(2025, 3, 10, 6, 30, 0, 0, time.UTC),
			want: time.Date(2025, 3, 10, 6, 30, 0, 0, time.UTC),
		},
		{
			name: "after boundary",
			now:  time.Date(2025, 3, 10, 23, 0, 0, 0, time.UTC),
			want: time.Date(2025, 3, 10, 6, 30, 0, 0, time.UTC),
		},
		{
			name: "month rollover",
			now:  time.Date(2025, 3, 1, 0, 15, 0, 0, time.UTC),
			want: time.Date(2025, 2, 28, 6, 30, 0, 0, time.UTC),
		},
		{
			name: "non utc input",
			now:  time.Date(2025, 3, 10, 8, 0, 0, 0, time.FixedZone("CET", 3600)),
			want: time.Date(2025, 3, 10, 6, 30, 0, 0, time.UTC),
		},
	}

	for _, tc := range tests {
		if got := BillingDayStart(tc.now, dayStarts); !got.Equal(tc.want) {
			t.Fatalf("%s: got=%s want=%s", tc.name, got, tc.want)
		}
	}
}

func TestAuditedGateway_QuotaExceeded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	audits := memory.NewAuditRepository()
	provider := &stubProvider{rounds: []string{"Regular Season - 1"}}
	gateway := newTestGateway(provider, audits, clock, GatewayPolicy{MaxAttempts: 3})

	for i := 0; i < 3; i++ {
		if _, err := gateway.Rounds(ctx, 39, "2024"); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		clock.Advance(time.Minute)
	}

	_, err := gateway.Rounds(ctx, 39, "2024")
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrQuotaExceeded)
	}
	if got := provider.calls.Load(); got != 3 {
		t.Fatalf("provider called on exceeded quota: calls=%d", got)
	}
	if got := len(audits.Records()); got != 3 {
		t.Fatalf("unexpected audit records: got=%d want=3", got)
	}
}

func TestAuditedGateway_QuotaResetsAtBillingDay(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 10, 5, 59, 0, 0, time.UTC))
	audits := memory.NewAuditRepository()
	provider := &stubProvider{}
	gateway := newTestGateway(provider, audits, clock, GatewayPolicy{MaxAttempts: 1, DayStarts: 6 * time.Hour})

	if _, err := gateway.SeasonFixtures(ctx, 39, "2024"); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := gateway.SeasonFixtures(ctx, 39, "2024"); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected quota error before boundary, got %v", err)
	}

	clock.Advance(time.Minute)
	if _, err := gateway.SeasonFixtures(ctx, 39, "2024"); err != nil {
		t.Fatalf("call at boundary: %v", err)
	}
}

func TestAuditedGateway_DisabledQuota(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := &stubProvider{}
	gateway := newTestGateway(provider, memory.NewAuditRepository(), clockwork.NewFakeClock(), GatewayPolicy{MaxAttempts: 0})

	for i := 0; i < 10; i++ {
		if _, err := gateway.Rounds(ctx, 1, "2024"); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
}

func TestAuditedGateway_TooOftenRequests(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC))
	audits := memory.NewAuditRepository()
	provider := &stubProvider{fixtures: map[int64]ExternalFixture{1: {ExternalID: 1}}}
	gateway := newTestGateway(provider, audits, clock, GatewayPolicy{MinInterval: 30 * time.Second})

	if _, err := gateway.FixturesByIDs(ctx, []int64{1}); err != nil {
		t.Fatalf("first call: %v", err)
	}

	clock.Advance(30 * time.Second)
	if _, err := gateway.FixturesByIDs(ctx, []int64{1}); !errors.Is(err, ErrTooOftenRequests) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrTooOftenRequests)
	}
	if got := len(audits.Records()); got != 1 {
		t.Fatalf("rejected call was audited: records=%d", got)
	}

	// Season-wide calls are not interval-limited.
	if _, err := gateway.SeasonFixtures(ctx, 39, "2024"); err != nil {
		t.Fatalf("season fixtures: %v", err)
	}

	clock.Advance(31 * time.Second)
	if _, err := gateway.FixturesByIDs(ctx, []int64{1}); err != nil {
		t.Fatalf("call after interval: %v", err)
	}
}

func TestAuditedGateway_AuditsFailedAttempts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	audits := memory.NewAuditRepository()
	provider := &stubProvider{err: fmt.Errorf("%w: boom", ErrRequestFailed)}
	gateway := newTestGateway(provider, audits, clockwork.NewFakeClock(), GatewayPolicy{MaxAttempts: 10})

	if _, err := gateway.Rounds(ctx, 39, "2024"); !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("unexpected error: %v", err)
	}

	records := audits.Records()
	if len(records) != 1 {
		t.Fatalf("unexpected audit records: got=%d want=1", len(records))
	}
	rec := records[0]
	if rec.Success || rec.APIKey != "test-key" || rec.Provider != audit.ProviderAPIFootball {
		t.Fatalf("unexpected audit record: %+v", rec)
	}
	if rec.RequestURI != "/fixtures/rounds?league=39&season=2024" {
		t.Fatalf("unexpected request uri: %s", rec.RequestURI)
	}
}

func TestAuditedGateway_ConcurrentCallersRespectQuota(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	audits := memory.NewAuditRepository()
	provider := &stubProvider{}
	gateway := newTestGateway(provider, audits, clockwork.NewFakeClock(), GatewayPolicy{MaxAttempts: 5})

	var wg sync.WaitGroup
	var rejected atomic.Int32
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := gateway.Rounds(ctx, 39, "2024"); errors.Is(err, ErrQuotaExceeded) {
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := provider.calls.Load(); got != 5 {
		t.Fatalf("unexpected provider calls: got=%d want=5", got)
	}
	if got := rejected.Load(); got != 15 {
		t.Fatalf("unexpected rejections: got=%d want=15", got)
	}
}

func TestAuditedGateway_RejectsTooManyIDs(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{}
	gateway := newTestGateway(provider, memory.NewAuditRepository(), clockwork.NewFakeClock(), GatewayPolicy{})

	ids := make([]int64, MaxFixtureIDsPerRequest+1)
	if _, err := gateway.FixturesByIDs(context.Background(), ids); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.calls.Load() != 0 {
		t.Fatalf("provider must not be called")
	}
}
