package postgres

import (
	"database/sql"
	"time"
)

type matchTableModel struct {
	ID         string        `db:"id"`
	RoundID    string        `db:"round_id"`
	HomeTeamID string        `db:"home_team_id"`
	AwayTeamID string        `db:"away_team_id"`
	Status     string        `db:"status"`
	StartTime  sql.NullTime  `db:"start_time"`
	HomeScore  sql.NullInt64 `db:"home_score"`
	AwayScore  sql.NullInt64 `db:"away_score"`
	ExternalID int64         `db:"external_id"`
	CreatedAt  time.Time     `db:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"`
}
