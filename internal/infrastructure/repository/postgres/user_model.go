package postgres

import "time"

type userTableModel struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	Language  string    `db:"language"`
	Timezone  string    `db:"timezone"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type userCompetitionTableModel struct {
	UserID        int64  `db:"user_id"`
	CompetitionID string `db:"competition_id"`
}
