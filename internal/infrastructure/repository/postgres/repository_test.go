package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/round"
	"github.com/riskibarqy/prediction-league/internal/domain/season"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestSeasonRepository_CreateMapsActiveConflict(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	mock.ExpectExec(`INSERT INTO seasons`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: activeSeasonIndex})

	now := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	err := NewSeasonRepository(db).Create(context.Background(), season.Season{
		ID:            "s2",
		CompetitionID: "c1",
		Year:          "2024",
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if !errors.Is(err, season.ErrActiveSeasonExists) {
		t.Fatalf("unexpected error: got=%v want=%v", err, season.ErrActiveSeasonExists)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSeasonRepository_CountActiveExcludesSelf(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM seasons WHERE competition_id = \$1 AND active = \$2 AND id <> \$3`).
		WithArgs("c1", true, "s1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	count, err := NewSeasonRepository(db).CountActive(context.Background(), "c1", "s1")
	require.NoError(t, err)
	if count != 0 {
		t.Fatalf("unexpected count: got=%d want=0", count)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepository_SaveSyncLocksSeasonAndCommits(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	now := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	home := 1
	batch := match.SyncBatch{
		SeasonID: "s1",
		NewRounds: []round.Round{
			{ID: "r1", SeasonID: "s1", Type: round.TypeSeason, OrderNumber: 1, ExternalName: "Regular Season - 1", CreatedAt: now},
		},
		Matches: []match.Match{
			{ID: "m1", RoundID: "r1", HomeTeamID: "t1", AwayTeamID: "t2", Status: match.StatusStarted, StartTime: &now, HomeScore: &home, ExternalID: 100, CreatedAt: now, UpdatedAt: now},
		},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM seasons WHERE id = \$1 FOR UPDATE`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("s1"))
	mock.ExpectExec(`INSERT INTO rounds \(id, season_id, type, order_number, external_name, created_at\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO matches .* ON CONFLICT \(external_id\) DO UPDATE SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewMatchRepository(db).SaveSync(context.Background(), batch))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMatchRepository_SaveSyncRejectsForeignRound(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM seasons`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("s1"))
	mock.ExpectRollback()

	err := NewMatchRepository(db).SaveSync(context.Background(), match.SyncBatch{
		SeasonID:  "s1",
		NewRounds: []round.Round{{ID: "r9", SeasonID: "s2", Type: round.TypeFinal}},
	})
	if err == nil {
		t.Fatalf("expected error for round of another season")
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPredictionRepository_SaveForRoundUnitRollsBackOnCheckFailure(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	now := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	columns := []string{"id", "user_id", "match_id", "home_goals", "away_goals", "double_up", "updated_at"}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM users WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
	mock.ExpectExec(`INSERT INTO predictions .* ON CONFLICT \(user_id, match_id\) DO UPDATE SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM predictions WHERE user_id = \$1 AND match_id IN \(\$2, \$3\)`).
		WithArgs(int64(10), "m1", "m2").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("p1", int64(10), "m1", 1, 0, true, now).
			AddRow("p2", int64(10), "m2", 2, 2, true, now))
	mock.ExpectRollback()

	var checked []prediction.Prediction
	err := NewPredictionRepository(db).SaveForRoundUnit(
		context.Background(),
		10,
		[]prediction.Prediction{{ID: "p2", UserID: 10, MatchID: "m2", HomeGoals: 2, AwayGoals: 2, DoubleUp: true, UpdatedAt: now}},
		[]string{"m1", "m2"},
		func(merged []prediction.Prediction) error {
			checked = merged
			return prediction.CheckRoundUnit(merged)
		},
	)
	if !errors.Is(err, prediction.ErrDoubleUpCount) {
		t.Fatalf("unexpected error: got=%v want=%v", err, prediction.ErrDoubleUpCount)
	}
	require.Len(t, checked, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ListByIDsAttachesCompetitions(t *testing.T) {
	t.Parallel()

	db, mock := newMockDB(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM users WHERE id IN \(\$1, \$2\)`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "language", "timezone", "active", "created_at", "updated_at"}).
			AddRow(int64(1), "alice", "en", "UTC", true, now, now).
			AddRow(int64(2), "bob", "ru", "Europe/Moscow", false, now, now))
	mock.ExpectQuery(`SELECT \* FROM user_competitions WHERE user_id IN \(\$1, \$2\)`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "competition_id"}).
			AddRow(int64(1), "c1").
			AddRow(int64(1), "c2"))

	users, err := NewUserRepository(db).ListByIDs(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, []string{"c1", "c2"}, users[0].CompetitionIDs)
	require.Empty(t, users[1].CompetitionIDs)
	require.False(t, users[1].Active)
	require.NoError(t, mock.ExpectationsWereMet())
}
