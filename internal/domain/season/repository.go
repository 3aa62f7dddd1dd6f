package season

import "context"

// Repository describes season persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, seasonID string) (Season, bool, error)
	ListByCompetition(ctx context.Context, competitionID string) ([]Season, error)
	ListActive(ctx context.Context) ([]Season, error)
	// CountActive counts active seasons of a competition, ignoring excludeID.
	CountActive(ctx context.Context, competitionID, excludeID string) (int, error)
	Create(ctx context.Context, s Season) error
	Update(ctx context.Context, s Season) error
}
