package postgres

import "time"

type roundTableModel struct {
	ID           string    `db:"id"`
	SeasonID     string    `db:"season_id"`
	Type         string    `db:"type"`
	OrderNumber  int       `db:"order_number"`
	ExternalName string    `db:"external_name"`
	CreatedAt    time.Time `db:"created_at"`
}
