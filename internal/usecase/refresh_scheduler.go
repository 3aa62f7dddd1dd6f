package usecase

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/sourcegraph/conc"
)

// RefreshJobs are the fan-out refreshes the scheduler triggers.
type RefreshJobs interface {
	SyncAllSeasons(ctx context.Context) (SyncSummary, error)
	SyncAllActive(ctx context.Context) (SyncSummary, error)
}

type SchedulerConfig struct {
	// DailyAt is the UTC time of day of the full refresh.
	DailyAt        time.Duration
	ActiveInterval time.Duration
}

// RefreshScheduler runs the daily full refresh and the periodic active
// refresh until its context is cancelled.
type RefreshScheduler struct {
	jobs   RefreshJobs
	cfg    SchedulerConfig
	clock  clockwork.Clock
	logger *logging.Logger
}

func NewRefreshScheduler(jobs RefreshJobs, cfg SchedulerConfig, clock clockwork.Clock, logger *logging.Logger) *RefreshScheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ActiveInterval <= 0 {
		cfg.ActiveInterval = 5 * time.Minute
	}

	return &RefreshScheduler{
		jobs:   jobs,
		cfg:    cfg,
		clock:  clock,
		logger: logger.Named("scheduler"),
	}
}

// NextDailyRun returns the first daily run strictly after now.
func NextDailyRun(now time.Time, dailyAt time.Duration) time.Time {
	return BillingDayStart(now, dailyAt).AddDate(0, 0, 1)
}

func (s *RefreshScheduler) Run(ctx context.Context) {
	s.logger.InfoContext(ctx, "refresh scheduler started",
		"daily_at", s.cfg.DailyAt.String(),
		"active_interval", s.cfg.ActiveInterval.String(),
	)

	var wg conc.WaitGroup
	wg.Go(func() {
		s.loop(ctx, "full", func(now time.Time) time.Duration {
			return NextDailyRun(now, s.cfg.DailyAt).Sub(now)
		}, s.jobs.SyncAllSeasons)
	})
	wg.Go(func() {
		s.loop(ctx, "active", func(time.Time) time.Duration {
			return s.cfg.ActiveInterval
		}, s.jobs.SyncAllActive)
	})
	wg.Wait()

	s.logger.InfoContext(ctx, "refresh scheduler stopped")
}

func (s *RefreshScheduler) loop(
	ctx context.Context,
	mode string,
	delay func(now time.Time) time.Duration,
	run func(context.Context) (SyncSummary, error),
) {
	for {
		timer := s.clock.NewTimer(delay(s.clock.Now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.Chan():
		}

		summary, err := run(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "scheduled refresh failed", "mode", mode, "error", err)
			continue
		}
		s.logger.DebugContext(ctx, "scheduled refresh done",
			"mode", mode,
			"seasons", summary.SeasonCount,
			"failed", summary.FailedCount,
		)
	}
}
