package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

// matchUpsertChunk keeps multi-row upserts well below the postgres bind limit.
const matchUpsertChunk = 500

const matchUpsertSuffix = `ON CONFLICT (external_id) DO UPDATE SET
    round_id = EXCLUDED.round_id,
    home_team_id = EXCLUDED.home_team_id,
    away_team_id = EXCLUDED.away_team_id,
    status = EXCLUDED.status,
    start_time = EXCLUDED.start_time,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    updated_at = EXCLUDED.updated_at`

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(qb.Eq("id", matchID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build select match query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("select match: %w", err)
	}
	return matchFromRow(row), true, nil
}

func (r *MatchRepository) ListBySeason(ctx context.Context, seasonID string) ([]match.Match, error) {
	query, args, err := selectSeasonMatches(qb.Eq("r.season_id", seasonID)).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches by season query: %w", err)
	}
	return r.list(ctx, query, args, "select matches by season")
}

func (r *MatchRepository) ListByRoundUnit(ctx context.Context, seasonID string, orderNumber int) ([]match.Match, error) {
	query, args, err := selectSeasonMatches(
		qb.Eq("r.season_id", seasonID),
		qb.Eq("r.order_number", orderNumber),
	).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches by round unit query: %w", err)
	}
	return r.list(ctx, query, args, "select matches by round unit")
}

func (r *MatchRepository) ListActive(ctx context.Context, seasonID string, now time.Time) ([]match.Match, error) {
	query, args, err := selectSeasonMatches(
		qb.Eq("r.season_id", seasonID),
		qb.In("m.status", qb.Values([]string{string(match.StatusPlanned), string(match.StatusStarted)})),
		qb.IsNotNull("m.start_time"),
		qb.Lte("m.start_time", now.UTC()),
	).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select active matches query: %w", err)
	}
	return r.list(ctx, query, args, "select active matches")
}

// SaveSync holds the season row lock while inserting rounds and upserting
// matches so that concurrent passes for one season serialize.
func (r *MatchRepository) SaveSync(ctx context.Context, batch match.SyncBatch) error {
	if batch.Empty() {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save sync: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.Select("id").From("seasons").
		Where(qb.Eq("id", batch.SeasonID)).
		ForUpdate().
		ToSQL()
	if err != nil {
		return fmt.Errorf("build lock season query: %w", err)
	}
	var lockedID string
	if err := tx.GetContext(ctx, &lockedID, query, args...); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("lock season: season=%s not found", batch.SeasonID)
		}
		return fmt.Errorf("lock season: %w", err)
	}

	if len(batch.NewRounds) > 0 {
		rows := make([]roundTableModel, 0, len(batch.NewRounds))
		for _, rd := range batch.NewRounds {
			if rd.SeasonID != batch.SeasonID {
				return fmt.Errorf("round %s belongs to season %s, batch season %s", rd.ID, rd.SeasonID, batch.SeasonID)
			}
			rows = append(rows, roundToRow(rd))
		}
		query, args, err := qb.InsertModels("rounds", rows, "")
		if err != nil {
			return fmt.Errorf("build insert rounds query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert rounds season=%s: %w", batch.SeasonID, err)
		}
	}

	for start := 0; start < len(batch.Matches); start += matchUpsertChunk {
		end := min(start+matchUpsertChunk, len(batch.Matches))
		rows := make([]matchTableModel, 0, end-start)
		for _, m := range batch.Matches[start:end] {
			rows = append(rows, matchToRow(m))
		}
		query, args, err := qb.InsertModels("matches", rows, matchUpsertSuffix)
		if err != nil {
			return fmt.Errorf("build upsert matches query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert matches season=%s: %w", batch.SeasonID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save sync tx: %w", err)
	}
	return nil
}

func (r *MatchRepository) list(ctx context.Context, query string, args []any, op string) ([]match.Match, error) {
	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

func selectSeasonMatches(conditions ...qb.Condition) *qb.SelectBuilder {
	return qb.Select(prefixColumns("m", qb.Columns(matchTableModel{}))...).
		From("matches m").
		Join("JOIN rounds r ON r.id = m.round_id").
		Where(conditions...).
		OrderBy("r.order_number", "m.start_time NULLS LAST", "m.external_id")
}

func prefixColumns(alias string, columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, col := range columns {
		out = append(out, alias+"."+col)
	}
	return out
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:         row.ID,
		RoundID:    row.RoundID,
		HomeTeamID: row.HomeTeamID,
		AwayTeamID: row.AwayTeamID,
		Status:     match.Status(row.Status),
		StartTime:  nullTimeToTimePtr(row.StartTime),
		HomeScore:  nullInt64ToIntPtr(row.HomeScore),
		AwayScore:  nullInt64ToIntPtr(row.AwayScore),
		ExternalID: row.ExternalID,
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
}

func matchToRow(m match.Match) matchTableModel {
	return matchTableModel{
		ID:         m.ID,
		RoundID:    m.RoundID,
		HomeTeamID: m.HomeTeamID,
		AwayTeamID: m.AwayTeamID,
		Status:     string(m.Status),
		StartTime:  timePtrToNull(m.StartTime),
		HomeScore:  intPtrToNull(m.HomeScore),
		AwayScore:  intPtrToNull(m.AwayScore),
		ExternalID: m.ExternalID,
		CreatedAt:  m.CreatedAt.UTC(),
		UpdatedAt:  m.UpdatedAt.UTC(),
	}
}
