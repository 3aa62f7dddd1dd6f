package postgres

import "time"

type teamTableModel struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	LogoURL    string    `db:"logo_url"`
	ExternalID int64     `db:"external_id"`
	UpdatedAt  time.Time `db:"updated_at"`
}
