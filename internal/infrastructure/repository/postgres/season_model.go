package postgres

import "time"

type seasonTableModel struct {
	ID            string    `db:"id"`
	CompetitionID string    `db:"competition_id"`
	Year          string    `db:"year"`
	Active        bool      `db:"active"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}
