package match

import (
	"context"
	"time"
)

// Repository describes match persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	ListBySeason(ctx context.Context, seasonID string) ([]Match, error)
	ListByRoundUnit(ctx context.Context, seasonID string, orderNumber int) ([]Match, error)
	ListActive(ctx context.Context, seasonID string, now time.Time) ([]Match, error)
	// SaveSync stores new rounds and upserts matches by external id in one
	// transaction holding the season row lock.
	SaveSync(ctx context.Context, batch SyncBatch) error
}
