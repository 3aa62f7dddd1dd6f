package match

import (
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/round"
)

type Status string

const (
	StatusPlanned    Status = "PLANNED"
	StatusStarted    Status = "STARTED"
	StatusFinished   Status = "FINISHED"
	StatusNotDefined Status = "NOT_DEFINED"
)

var providerStatuses = map[string]Status{
	"NS":   StatusPlanned,
	"1H":   StatusStarted,
	"HT":   StatusStarted,
	"2H":   StatusStarted,
	"LIVE": StatusStarted,
	"ABD":  StatusNotDefined,
	"CANC": StatusNotDefined,
	"INT":  StatusNotDefined,
	"PST":  StatusNotDefined,
	"SUSP": StatusNotDefined,
	"WO":   StatusNotDefined,
	"TBD":  StatusNotDefined,
	"AET":  StatusFinished,
	"P":    StatusFinished,
	"PEN":  StatusFinished,
	"ET":   StatusFinished,
	"AWD":  StatusFinished,
	"BT":   StatusFinished,
	"FT":   StatusFinished,
}

// StatusFromProvider maps a provider short status code. Unknown or empty
// codes map to StatusNotDefined.
func StatusFromProvider(code string) Status {
	if status, ok := providerStatuses[code]; ok {
		return status
	}
	return StatusNotDefined
}

// Match is a single fixture between two teams.
type Match struct {
	ID         string
	RoundID    string
	HomeTeamID string
	AwayTeamID string
	Status     Status
	StartTime  *time.Time
	HomeScore  *int
	AwayScore  *int
	ExternalID int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StartedBy reports whether the match has a known start time at or before now.
func (m Match) StartedBy(now time.Time) bool {
	return m.StartTime != nil && !m.StartTime.After(now)
}

// IsActive reports whether the match still needs live updates at now.
func (m Match) IsActive(now time.Time) bool {
	if m.Status != StatusPlanned && m.Status != StatusStarted {
		return false
	}
	return m.StartedBy(now)
}

// SyncBatch carries the writes of one fixture sync pass for a season.
type SyncBatch struct {
	SeasonID  string
	NewRounds []round.Round
	Matches   []Match
}

func (b SyncBatch) Empty() bool {
	return len(b.NewRounds) == 0 && len(b.Matches) == 0
}
