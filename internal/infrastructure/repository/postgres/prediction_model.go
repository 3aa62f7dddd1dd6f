package postgres

import "time"

type predictionTableModel struct {
	ID        string    `db:"id"`
	UserID    int64     `db:"user_id"`
	MatchID   string    `db:"match_id"`
	HomeGoals int       `db:"home_goals"`
	AwayGoals int       `db:"away_goals"`
	DoubleUp  bool      `db:"double_up"`
	UpdatedAt time.Time `db:"updated_at"`
}
