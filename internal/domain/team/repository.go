package team

import "context"

// Repository describes team persistence needs from use cases.
type Repository interface {
	GetByExternalID(ctx context.Context, externalID int64) (Team, bool, error)
	ListByIDs(ctx context.Context, teamIDs []string) ([]Team, error)
	Create(ctx context.Context, t Team) error
	Update(ctx context.Context, t Team) error
}
