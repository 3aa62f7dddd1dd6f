package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/prediction-league/internal/domain/audit"
	"github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

// GatewayPolicy limits upstream usage per api key.
type GatewayPolicy struct {
	// MaxAttempts per billing day; zero or less disables the quota.
	MaxAttempts int
	// DayStarts is the UTC time of day at which the billing day rolls over.
	DayStarts time.Duration
	// MinInterval applies to the multi-id fixture lookup only.
	MinInterval time.Duration
}

// AuditedGateway enforces quota and interval policy around a FixtureProvider
// and records one audit entry per upstream attempt. The policy checks, the call
// and the audit write run under one lock so concurrent callers cannot jointly
// overrun the quota.
type AuditedGateway struct {
	mu       sync.Mutex
	provider FixtureProvider
	audits   audit.Repository
	idGen    id.Generator
	clock    clockwork.Clock
	policy   GatewayPolicy
	logger   *logging.Logger
}

func NewAuditedGateway(
	provider FixtureProvider,
	audits audit.Repository,
	idGen id.Generator,
	clock clockwork.Clock,
	policy GatewayPolicy,
	logger *logging.Logger,
) *AuditedGateway {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &AuditedGateway{
		provider: provider,
		audits:   audits,
		idGen:    idGen,
		clock:    clock,
		policy:   policy,
		logger:   logger.Named("gateway"),
	}
}

// BillingDayStart returns the start of the billing day containing now.
func BillingDayStart(now time.Time, dayStarts time.Duration) time.Time {
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(dayStarts)
	if now.Before(start) {
		start = start.AddDate(0, 0, -1)
	}
	return start
}

func (g *AuditedGateway) Rounds(ctx context.Context, competitionExternalID int64, season string) ([]string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuditedGateway.Rounds")
	defer span.End()

	var rounds []string
	err := g.call(ctx, false, func(ctx context.Context) (string, error) {
		items, uri, err := g.provider.FetchRounds(ctx, competitionExternalID, season)
		rounds = items
		return uri, err
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("fetch rounds competition=%d season=%s: %w", competitionExternalID, season, err)
	}
	return rounds, nil
}

func (g *AuditedGateway) SeasonFixtures(ctx context.Context, competitionExternalID int64, season string) ([]ExternalFixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuditedGateway.SeasonFixtures")
	defer span.End()

	var fixtures []ExternalFixture
	err := g.call(ctx, false, func(ctx context.Context) (string, error) {
		items, uri, err := g.provider.FetchSeasonFixtures(ctx, competitionExternalID, season)
		fixtures = items
		return uri, err
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("fetch fixtures competition=%d season=%s: %w", competitionExternalID, season, err)
	}
	return fixtures, nil
}

func (g *AuditedGateway) FixturesByIDs(ctx context.Context, externalIDs []int64) ([]ExternalFixture, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuditedGateway.FixturesByIDs")
	defer span.End()

	if len(externalIDs) == 0 {
		return nil, nil
	}
	if len(externalIDs) > MaxFixtureIDsPerRequest {
		return nil, fmt.Errorf("%w: at most %d fixture ids per request, got %d",
			ErrInvalidInput, MaxFixtureIDsPerRequest, len(externalIDs))
	}

	var fixtures []ExternalFixture
	err := g.call(ctx, true, func(ctx context.Context) (string, error) {
		items, uri, err := g.provider.FetchFixturesByIDs(ctx, externalIDs)
		fixtures = items
		return uri, err
	})
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("fetch fixtures by ids count=%d: %w", len(externalIDs), err)
	}
	return fixtures, nil
}

func (g *AuditedGateway) call(ctx context.Context, enforceInterval bool, fn func(context.Context) (string, error)) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	apiKey := g.provider.APIKey()
	now := g.clock.Now().UTC()

	if err := g.checkQuota(ctx, apiKey, now); err != nil {
		return err
	}
	if enforceInterval {
		if err := g.checkInterval(ctx, apiKey, now); err != nil {
			return err
		}
	}

	uri, callErr := fn(ctx)

	recordID, err := g.idGen.NewID()
	if err != nil {
		return errors.Join(callErr, fmt.Errorf("generate audit id: %w", err))
	}
	record := audit.Record{
		ID:          recordID,
		APIKey:      apiKey,
		Provider:    audit.ProviderAPIFootball,
		RequestURI:  uri,
		RequestedAt: now,
		Success:     callErr == nil,
	}
	if err := g.audits.Append(ctx, record); err != nil {
		g.logger.ErrorContext(ctx, "append provider audit record failed", "uri", uri, "error", err)
		return errors.Join(callErr, fmt.Errorf("append audit record: %w", err))
	}

	return callErr
}

func (g *AuditedGateway) checkQuota(ctx context.Context, apiKey string, now time.Time) error {
	if g.policy.MaxAttempts <= 0 {
		return nil
	}

	since := BillingDayStart(now, g.policy.DayStarts)
	count, err := g.audits.CountSince(ctx, audit.ProviderAPIFootball, apiKey, since)
	if err != nil {
		return fmt.Errorf("count provider attempts: %w", err)
	}
	if count >= g.policy.MaxAttempts {
		g.logger.WarnContext(ctx, "provider quota exhausted", "attempts", count, "max_attempts", g.policy.MaxAttempts, "since", since)
		return fmt.Errorf("%w: %d of %d attempts used since %s", ErrQuotaExceeded, count, g.policy.MaxAttempts, since.Format(time.RFC3339))
	}
	return nil
}

func (g *AuditedGateway) checkInterval(ctx context.Context, apiKey string, now time.Time) error {
	if g.policy.MinInterval <= 0 {
		return nil
	}

	latest, ok, err := g.audits.Latest(ctx, audit.ProviderAPIFootball, apiKey)
	if err != nil {
		return fmt.Errorf("load latest provider attempt: %w", err)
	}
	if !ok {
		return nil
	}
	if elapsed := now.Sub(latest.RequestedAt); elapsed <= g.policy.MinInterval {
		return fmt.Errorf("%w: last request %s ago, minimum interval %s", ErrTooOftenRequests, elapsed.Truncate(time.Millisecond), g.policy.MinInterval)
	}
	return nil
}
