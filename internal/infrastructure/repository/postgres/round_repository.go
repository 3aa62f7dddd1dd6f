package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/round"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

type RoundRepository struct {
	db *sqlx.DB
}

func NewRoundRepository(db *sqlx.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

func (r *RoundRepository) GetByID(ctx context.Context, roundID string) (round.Round, bool, error) {
	query, args, err := qb.Select("*").From("rounds").
		Where(qb.Eq("id", roundID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return round.Round{}, false, fmt.Errorf("build select round query: %w", err)
	}

	var row roundTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return round.Round{}, false, nil
		}
		return round.Round{}, false, fmt.Errorf("select round: %w", err)
	}
	return roundFromRow(row), true, nil
}

func (r *RoundRepository) ListBySeason(ctx context.Context, seasonID string) ([]round.Round, error) {
	query, args, err := qb.Select("*").From("rounds").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("order_number", "external_name", "type").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select rounds by season query: %w", err)
	}

	var rows []roundTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select rounds by season: %w", err)
	}

	out := make([]round.Round, 0, len(rows))
	for _, row := range rows {
		out = append(out, roundFromRow(row))
	}
	return out, nil
}

func roundFromRow(row roundTableModel) round.Round {
	return round.Round{
		ID:           row.ID,
		SeasonID:     row.SeasonID,
		Type:         round.Type(row.Type),
		OrderNumber:  row.OrderNumber,
		ExternalName: row.ExternalName,
		CreatedAt:    row.CreatedAt.UTC(),
	}
}

func roundToRow(rd round.Round) roundTableModel {
	return roundTableModel{
		ID:           rd.ID,
		SeasonID:     rd.SeasonID,
		Type:         string(rd.Type),
		OrderNumber:  rd.OrderNumber,
		ExternalName: rd.ExternalName,
		CreatedAt:    rd.CreatedAt.UTC(),
	}
}
