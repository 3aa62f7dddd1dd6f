package postgres

import "time"

type competitionTableModel struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	ExternalID int64     `db:"external_id"`
	CreatedAt  time.Time `db:"created_at"`
}
