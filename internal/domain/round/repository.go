package round

import "context"

// Repository exposes round reads. Rounds are written together with matches
// by the fixture sync batch.
type Repository interface {
	GetByID(ctx context.Context, roundID string) (Round, bool, error)
	ListBySeason(ctx context.Context, seasonID string) ([]Round, error)
}
