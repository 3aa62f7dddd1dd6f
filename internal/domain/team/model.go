package team

import "time"

// Team is a club as reported by the fixture provider.
type Team struct {
	ID         string
	Name       string
	LogoURL    string
	ExternalID int64
	UpdatedAt  time.Time
}

// SameDetails reports whether name and logo already match the provider values.
func (t Team) SameDetails(name, logoURL string) bool {
	return t.Name == name && t.LogoURL == logoURL
}
