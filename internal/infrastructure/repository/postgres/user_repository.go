package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	qb "github.com/riskibarqy/prediction-league/internal/platform/querybuilder"
)

const userUpsertSuffix = `ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    language = EXCLUDED.language,
    timezone = EXCLUDED.timezone,
    active = EXCLUDED.active,
    updated_at = EXCLUDED.updated_at`

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (user.User, bool, error) {
	items, err := r.ListByIDs(ctx, []int64{userID})
	if err != nil {
		return user.User{}, false, err
	}
	if len(items) == 0 {
		return user.User{}, false, nil
	}
	return items[0], true, nil
}

func (r *UserRepository) ListByIDs(ctx context.Context, userIDs []int64) ([]user.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select("*").From("users").
		Where(qb.In("id", qb.Values(userIDs))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select users query: %w", err)
	}
	var rows []userTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	query, args, err = qb.Select("*").From("user_competitions").
		Where(qb.In("user_id", qb.Values(userIDs))).
		OrderBy("user_id", "competition_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select user competitions query: %w", err)
	}
	var subscriptions []userCompetitionTableModel
	if err := r.db.SelectContext(ctx, &subscriptions, query, args...); err != nil {
		return nil, fmt.Errorf("select user competitions: %w", err)
	}
	byUser := make(map[int64][]string, len(rows))
	for _, sub := range subscriptions {
		byUser[sub.UserID] = append(byUser[sub.UserID], sub.CompetitionID)
	}

	out := make([]user.User, 0, len(rows))
	for _, row := range rows {
		out = append(out, user.User{
			ID:             row.ID,
			Name:           row.Name,
			Language:       row.Language,
			Timezone:       row.Timezone,
			Active:         row.Active,
			CompetitionIDs: byUser[row.ID],
			CreatedAt:      row.CreatedAt.UTC(),
			UpdatedAt:      row.UpdatedAt.UTC(),
		})
	}
	return out, nil
}

// Save upserts the user row and replaces its competition subscriptions.
func (r *UserRepository) Save(ctx context.Context, u user.User) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save user: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.InsertModel("users", userTableModel{
		ID:        u.ID,
		Name:      u.Name,
		Language:  u.Language,
		Timezone:  u.Timezone,
		Active:    u.Active,
		CreatedAt: u.CreatedAt.UTC(),
		UpdatedAt: u.UpdatedAt.UTC(),
	}, userUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert user query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert user=%d: %w", u.ID, err)
	}

	query, args, err = qb.DeleteFrom("user_competitions").Where(qb.Eq("user_id", u.ID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete user competitions query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete user competitions user=%d: %w", u.ID, err)
	}

	if len(u.CompetitionIDs) > 0 {
		subscriptions := make([]userCompetitionTableModel, 0, len(u.CompetitionIDs))
		for _, competitionID := range u.CompetitionIDs {
			subscriptions = append(subscriptions, userCompetitionTableModel{UserID: u.ID, CompetitionID: competitionID})
		}
		query, args, err = qb.InsertModels("user_competitions", subscriptions, "ON CONFLICT DO NOTHING")
		if err != nil {
			return fmt.Errorf("build insert user competitions query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert user competitions user=%d: %w", u.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save user tx: %w", err)
	}
	return nil
}
