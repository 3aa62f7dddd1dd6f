package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/season"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

const activeSeasonIndex = "seasons_one_active_per_competition"

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.Eq("id", seasonID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build select season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("select season: %w", err)
	}
	return seasonFromRow(row), true, nil
}

func (r *SeasonRepository) ListByCompetition(ctx context.Context, competitionID string) ([]season.Season, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.Eq("competition_id", competitionID)).
		OrderBy("year", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select seasons by competition query: %w", err)
	}
	return r.list(ctx, query, args, "select seasons by competition")
}

func (r *SeasonRepository) ListActive(ctx context.Context) ([]season.Season, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.Eq("active", true)).
		OrderBy("competition_id", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select active seasons query: %w", err)
	}
	return r.list(ctx, query, args, "select active seasons")
}

func (r *SeasonRepository) CountActive(ctx context.Context, competitionID, excludeID string) (int, error) {
	conditions := []qb.Condition{
		qb.Eq("competition_id", competitionID),
		qb.Eq("active", true),
	}
	if excludeID != "" {
		conditions = append(conditions, qb.NotEq("id", excludeID))
	}

	query, args, err := qb.Select("COUNT(*)").From("seasons").Where(conditions...).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count active seasons query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count active seasons: %w", err)
	}
	return count, nil
}

func (r *SeasonRepository) Create(ctx context.Context, s season.Season) error {
	query, args, err := qb.InsertModel("seasons", seasonTableModel{
		ID:            s.ID,
		CompetitionID: s.CompetitionID,
		Year:          s.Year,
		Active:        s.Active,
		CreatedAt:     s.CreatedAt.UTC(),
		UpdatedAt:     s.UpdatedAt.UTC(),
	}, "")
	if err != nil {
		return fmt.Errorf("build insert season query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, activeSeasonIndex) {
			return fmt.Errorf("%w: competition=%s", season.ErrActiveSeasonExists, s.CompetitionID)
		}
		return fmt.Errorf("insert season: %w", err)
	}
	return nil
}

func (r *SeasonRepository) Update(ctx context.Context, s season.Season) error {
	query, args, err := qb.Update("seasons").
		Set("year", s.Year).
		Set("active", s.Active).
		Set("updated_at", s.UpdatedAt.UTC()).
		Where(qb.Eq("id", s.ID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update season query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err, activeSeasonIndex) {
			return fmt.Errorf("%w: competition=%s", season.ErrActiveSeasonExists, s.CompetitionID)
		}
		return fmt.Errorf("update season: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update season rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update season: season=%s not found", s.ID)
	}
	return nil
}

func (r *SeasonRepository) list(ctx context.Context, query string, args []any, op string) ([]season.Season, error) {
	var rows []seasonTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]season.Season, 0, len(rows))
	for _, row := range rows {
		out = append(out, seasonFromRow(row))
	}
	return out, nil
}

func seasonFromRow(row seasonTableModel) season.Season {
	return season.Season{
		ID:            row.ID,
		CompetitionID: row.CompetitionID,
		Year:          row.Year,
		Active:        row.Active,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}
