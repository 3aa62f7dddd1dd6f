package season

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrActiveSeasonExists is returned by stores that enforce one active season
// per competition.
var ErrActiveSeasonExists = errors.New("competition already has an active season")

// Season is one edition of a competition. At most one season per
// competition is active.
type Season struct {
	ID            string
	CompetitionID string
	Year          string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (s Season) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("season id is required")
	}
	if s.CompetitionID == "" {
		return fmt.Errorf("season competition id is required")
	}
	if strings.TrimSpace(s.Year) == "" {
		return fmt.Errorf("season year is required")
	}

	return nil
}
