package audit

import (
	"context"
	"time"
)

// Repository stores upstream call audit records.
type Repository interface {
	Append(ctx context.Context, record Record) error
	CountSince(ctx context.Context, provider Provider, apiKey string, since time.Time) (int, error)
	// Latest returns the most recent record for the provider and key.
	Latest(ctx context.Context, provider Provider, apiKey string) (Record, bool, error)
}
