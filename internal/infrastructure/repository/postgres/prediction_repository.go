package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

const predictionUpsertSuffix = `ON CONFLICT (user_id, match_id) DO UPDATE SET
    home_goals = EXCLUDED.home_goals,
    away_goals = EXCLUDED.away_goals,
    double_up = EXCLUDED.double_up,
    updated_at = EXCLUDED.updated_at`

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) ListByMatches(ctx context.Context, matchIDs []string) ([]prediction.Prediction, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select("*").From("predictions").
		Where(qb.In("match_id", qb.Values(matchIDs))).
		OrderBy("user_id", "match_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select predictions by matches query: %w", err)
	}
	return selectPredictions(ctx, r.db, query, args, "select predictions by matches")
}

func (r *PredictionRepository) ListByUser(ctx context.Context, userID int64, matchIDs []string) ([]prediction.Prediction, error) {
	if len(matchIDs) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select("*").From("predictions").
		Where(
			qb.Eq("user_id", userID),
			qb.In("match_id", qb.Values(matchIDs)),
		).
		OrderBy("match_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select predictions by user query: %w", err)
	}
	return selectPredictions(ctx, r.db, query, args, "select predictions by user")
}

// SaveForRoundUnit locks the user row so that two batches of one user cannot
// both pass the round unit check.
func (r *PredictionRepository) SaveForRoundUnit(
	ctx context.Context,
	userID int64,
	items []prediction.Prediction,
	roundMatchIDs []string,
	check prediction.RoundUnitCheck,
) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save predictions: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.Select("id").From("users").
		Where(qb.Eq("id", userID)).
		ForUpdate().
		ToSQL()
	if err != nil {
		return fmt.Errorf("build lock user query: %w", err)
	}
	var lockedID int64
	if err := tx.GetContext(ctx, &lockedID, query, args...); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("lock user: user=%d not found", userID)
		}
		return fmt.Errorf("lock user: %w", err)
	}

	rows := make([]predictionTableModel, 0, len(items))
	for _, item := range items {
		if item.UserID != userID {
			return fmt.Errorf("prediction %s belongs to user %d, batch user %d", item.ID, item.UserID, userID)
		}
		rows = append(rows, predictionToRow(item))
	}
	query, args, err = qb.InsertModels("predictions", rows, predictionUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert predictions query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert predictions user=%d: %w", userID, err)
	}

	if check != nil {
		query, args, err = qb.Select("*").From("predictions").
			Where(
				qb.Eq("user_id", userID),
				qb.In("match_id", qb.Values(roundMatchIDs)),
			).
			OrderBy("match_id").
			ToSQL()
		if err != nil {
			return fmt.Errorf("build select merged predictions query: %w", err)
		}
		merged, err := selectPredictions(ctx, tx, query, args, "select merged predictions")
		if err != nil {
			return err
		}
		if err := check(merged); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save predictions tx: %w", err)
	}
	return nil
}

func selectPredictions(ctx context.Context, q sqlx.QueryerContext, query string, args []any, op string) ([]prediction.Prediction, error) {
	var rows []predictionTableModel
	if err := sqlx.SelectContext(ctx, q, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]prediction.Prediction, 0, len(rows))
	for _, row := range rows {
		out = append(out, prediction.Prediction{
			ID:        row.ID,
			UserID:    row.UserID,
			MatchID:   row.MatchID,
			HomeGoals: row.HomeGoals,
			AwayGoals: row.AwayGoals,
			DoubleUp:  row.DoubleUp,
			UpdatedAt: row.UpdatedAt.UTC(),
		})
	}
	return out, nil
}

func predictionToRow(p prediction.Prediction) predictionTableModel {
	return predictionTableModel{
		ID:        p.ID,
		UserID:    p.UserID,
		MatchID:   p.MatchID,
		HomeGoals: p.HomeGoals,
		AwayGoals: p.AwayGoals,
		DoubleUp:  p.DoubleUp,
		UpdatedAt: p.UpdatedAt.UTC(),
	}
}
