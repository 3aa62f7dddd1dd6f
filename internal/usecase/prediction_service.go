package usecase

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/round"
	"github.com/riskibarqy/prediction-league/internal/domain/season"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/platform/id"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

type PredictionDeps struct {
	Users       user.Repository
	Seasons     season.Repository
	Rounds      round.Repository
	Matches     match.Repository
	Predictions prediction.Repository
	Syncer      SeasonSyncer
	IDGen       id.Generator
	Clock       clockwork.Clock
	Logger      *logging.Logger
}

type PredictionService struct {
	users       user.Repository
	seasons     season.Repository
	rounds      round.Repository
	matches     match.Repository
	predictions prediction.Repository
	syncer      SeasonSyncer
	idGen       id.Generator
	clock       clockwork.Clock
	logger      *logging.Logger
}

type PredictionItem struct {
	MatchID   string
	HomeGoals int
	AwayGoals int
	DoubleUp  bool
}

type SavePredictionsInput struct {
	UserID int64
	Items  []PredictionItem
}

// SavePredictionsResult lists the stored predictions and the match ids that
// were dropped because the match had already started.
type SavePredictionsResult struct {
	Saved   []prediction.Prediction
	Dropped []string
}

// UserResult is a ranked result row with the user's display name.
type UserResult struct {
	prediction.Result
	UserName string
}

func NewPredictionService(deps PredictionDeps) *PredictionService {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &PredictionService{
		users:       deps.Users,
		seasons:     deps.Seasons,
		rounds:      deps.Rounds,
		matches:     deps.Matches,
		predictions: deps.Predictions,
		syncer:      deps.Syncer,
		idGen:       deps.IDGen,
		clock:       clock,
		logger:      logger.Named("prediction"),
	}
}

type resolvedItem struct {
	item  PredictionItem
	match match.Match
	round round.Round
}

// SavePredictions stores a batch of score predictions for one round unit.
// Items for matches that already started are dropped without an error.
func (s *PredictionService) SavePredictions(ctx context.Context, input SavePredictionsInput) (result SavePredictionsResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.SavePredictions")
	defer span.End()
	defer func() { recordSpanError(span, err) }()

	u, ok, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		return SavePredictionsResult{}, fmt.Errorf("get user: %w", err)
	}
	if !ok || !u.Active {
		return SavePredictionsResult{}, fmt.Errorf("%w: user=%d", ErrNotFound, input.UserID)
	}
	if len(input.Items) == 0 {
		return SavePredictionsResult{}, fmt.Errorf("%w: at least one prediction is required", ErrInvalidInput)
	}

	now := s.clock.Now()
	resolved := make([]resolvedItem, 0, len(input.Items))
	result.Dropped = make([]string, 0)
	for _, item := range input.Items {
		draft := prediction.Prediction{MatchID: item.MatchID, HomeGoals: item.HomeGoals, AwayGoals: item.AwayGoals}
		if err := draft.Validate(); err != nil {
			return SavePredictionsResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}

		m, ok, err := s.matches.GetByID(ctx, item.MatchID)
		if err != nil {
			return SavePredictionsResult{}, fmt.Errorf("get match: %w", err)
		}
		if !ok {
			return SavePredictionsResult{}, fmt.Errorf("%w: match=%s", ErrNotFound, item.MatchID)
		}
		if m.StartedBy(now) {
			result.Dropped = append(result.Dropped, item.MatchID)
			continue
		}

		rd, ok, err := s.rounds.GetByID(ctx, m.RoundID)
		if err != nil {
			return SavePredictionsResult{}, fmt.Errorf("get round: %w", err)
		}
		if !ok {
			return SavePredictionsResult{}, fmt.Errorf("%w: round=%s", ErrNotFound, m.RoundID)
		}
		resolved = append(resolved, resolvedItem{item: item, match: m, round: rd})
	}

	if len(resolved) == 0 {
		result.Saved = []prediction.Prediction{}
		return result, nil
	}

	unit, err := s.checkBatch(ctx, resolved)
	if err != nil {
		return SavePredictionsResult{}, err
	}

	unitMatches, err := s.matches.ListByRoundUnit(ctx, unit.SeasonID, unit.OrderNumber)
	if err != nil {
		return SavePredictionsResult{}, fmt.Errorf("list round unit matches: %w", err)
	}
	unitMatchIDs := make([]string, 0, len(unitMatches))
	for _, m := range unitMatches {
		unitMatchIDs = append(unitMatchIDs, m.ID)
	}

	items := make([]prediction.Prediction, 0, len(resolved))
	for _, r := range resolved {
		predictionID, err := s.idGen.NewID()
		if err != nil {
			return SavePredictionsResult{}, fmt.Errorf("generate prediction id: %w", err)
		}
		items = append(items, prediction.Prediction{
			ID:        predictionID,
			UserID:    input.UserID,
			MatchID:   r.match.ID,
			HomeGoals: r.item.HomeGoals,
			AwayGoals: r.item.AwayGoals,
			DoubleUp:  r.item.DoubleUp,
			UpdatedAt: now.UTC(),
		})
	}

	var stored []prediction.Prediction
	check := func(merged []prediction.Prediction) error {
		if err := prediction.CheckRoundUnit(merged); err != nil {
			return fmt.Errorf("%w: %w", ErrRequestValidation, err)
		}
		stored = merged
		return nil
	}
	if err := s.predictions.SaveForRoundUnit(ctx, input.UserID, items, unitMatchIDs, check); err != nil {
		return SavePredictionsResult{}, fmt.Errorf("save predictions: %w", err)
	}

	s.logger.InfoContext(ctx, "predictions saved",
		"user_id", input.UserID,
		"season_id", unit.SeasonID,
		"round_order", unit.OrderNumber,
		"saved", len(items),
		"dropped", len(result.Dropped),
	)
	result.Saved = storedItems(items, stored)
	return result, nil
}

// storedItems returns the rows as committed for each saved item. An upsert of
// an existing (user, match) pair keeps the stored id.
func storedItems(items, merged []prediction.Prediction) []prediction.Prediction {
	byMatch := make(map[string]prediction.Prediction, len(merged))
	for _, p := range merged {
		byMatch[p.MatchID] = p
	}

	out := make([]prediction.Prediction, 0, len(items))
	for _, item := range items {
		if row, ok := byMatch[item.MatchID]; ok {
			item = row
		}
		out = append(out, item)
	}
	return out
}

// checkBatch enforces that every item targets one round unit of an active
// season with at most one item per match, and returns that unit.
func (s *PredictionService) checkBatch(ctx context.Context, resolved []resolvedItem) (round.Round, error) {
	unit := resolved[0].round
	batch := make([]prediction.Prediction, 0, len(resolved))
	for _, r := range resolved {
		if r.round.SeasonID != unit.SeasonID {
			return round.Round{}, fmt.Errorf("%w: %w", ErrRequestValidation, prediction.ErrMixedSeasons)
		}
		if r.round.OrderNumber != unit.OrderNumber {
			return round.Round{}, fmt.Errorf("%w: %w", ErrRequestValidation, prediction.ErrMixedRounds)
		}
		batch = append(batch, prediction.Prediction{MatchID: r.match.ID})
	}
	if err := prediction.CheckUniqueMatches(batch); err != nil {
		return round.Round{}, fmt.Errorf("%w: %w", ErrRequestValidation, err)
	}

	item, ok, err := s.seasons.GetByID(ctx, unit.SeasonID)
	if err != nil {
		return round.Round{}, fmt.Errorf("get season: %w", err)
	}
	if !ok {
		return round.Round{}, fmt.Errorf("%w: season=%s", ErrNotFound, unit.SeasonID)
	}
	if !item.Active {
		return round.Round{}, fmt.Errorf("%w: %w", ErrRequestValidation, prediction.ErrSeasonInactive)
	}

	return unit, nil
}

// UserRoundPredictions lists a user's predictions for a round unit.
func (s *PredictionService) UserRoundPredictions(ctx context.Context, userID int64, seasonID string, orderNumber int) ([]prediction.Prediction, error) {
	matches, err := s.matches.ListByRoundUnit(ctx, seasonID, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("list round unit matches: %w", err)
	}
	matchIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		matchIDs = append(matchIDs, m.ID)
	}
	items, err := s.predictions.ListByUser(ctx, userID, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("list user predictions: %w", err)
	}
	return items, nil
}

// SeasonResults ranks users over every match of the season. Live matches are
// refreshed first; a failed refresh fails the call.
func (s *PredictionService) SeasonResults(ctx context.Context, seasonID string) ([]UserResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.SeasonResults")
	defer span.End()

	if err := s.refreshActive(ctx, seasonID); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	matches, err := s.matches.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("list season matches: %w", err)
	}
	return s.results(ctx, matches)
}

// RoundResults ranks users over one round unit of the season.
func (s *PredictionService) RoundResults(ctx context.Context, seasonID string, orderNumber int) ([]UserResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictionService.RoundResults")
	defer span.End()

	if err := s.refreshActive(ctx, seasonID); err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	matches, err := s.matches.ListByRoundUnit(ctx, seasonID, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("list round unit matches: %w", err)
	}
	return s.results(ctx, matches)
}

func (s *PredictionService) refreshActive(ctx context.Context, seasonID string) error {
	_, ok, err := s.seasons.GetByID(ctx, seasonID)
	if err != nil {
		return fmt.Errorf("get season: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}
	if s.syncer == nil {
		return nil
	}
	if err := s.syncer.SyncActive(ctx, seasonID); err != nil {
		return fmt.Errorf("refresh active matches: %w", err)
	}
	return nil
}

func (s *PredictionService) results(ctx context.Context, matches []match.Match) ([]UserResult, error) {
	if len(matches) == 0 {
		return []UserResult{}, nil
	}

	matchIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		matchIDs = append(matchIDs, m.ID)
	}
	predictions, err := s.predictions.ListByMatches(ctx, matchIDs)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}

	ranked := prediction.ComputeResults(matches, predictions)
	if len(ranked) == 0 {
		return []UserResult{}, nil
	}

	userIDs := make([]int64, 0, len(ranked))
	for _, r := range ranked {
		userIDs = append(userIDs, r.UserID)
	}
	users, err := s.users.ListByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	names := make(map[int64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	out := make([]UserResult, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, UserResult{Result: r, UserName: names[r.UserID]})
	}
	return out, nil
}
