package postgres

import "time"

type auditTableModel struct {
	ID          string    `db:"id"`
	APIKey      string    `db:"api_key"`
	Provider    string    `db:"provider"`
	RequestURI  string    `db:"request_uri"`
	RequestedAt time.Time `db:"requested_at"`
	Success     bool      `db:"success"`
}
