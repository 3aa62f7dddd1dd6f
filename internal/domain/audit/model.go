package audit

import "time"

type Provider string

const ProviderAPIFootball Provider = "API_FOOTBALL"

// Record is one attempted upstream call. Records are append-only.
type Record struct {
	ID          string
	APIKey      string
	Provider    Provider
	RequestURI  string
	RequestedAt time.Time
	Success     bool
}
