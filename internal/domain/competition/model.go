package competition

import (
	"fmt"
	"strings"
	"time"
)

// Competition is a tournament tracked through the fixture provider.
type Competition struct {
	ID         string
	Name       string
	ExternalID int64
	CreatedAt  time.Time
}

func (c Competition) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("competition id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("competition name is required")
	}
	if c.ExternalID <= 0 {
		return fmt.Errorf("competition external id must be > 0")
	}

	return nil
}
