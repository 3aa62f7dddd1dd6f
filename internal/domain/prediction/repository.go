package prediction

import "context"

// RoundUnitCheck validates the merged predictions of a user for one round
// unit before they are committed.
type RoundUnitCheck func(merged []Prediction) error

// Repository describes prediction persistence needs from use cases.
type Repository interface {
	ListByMatches(ctx context.Context, matchIDs []string) ([]Prediction, error)
	ListByUser(ctx context.Context, userID int64, matchIDs []string) ([]Prediction, error)
	// SaveForRoundUnit upserts items keyed by (user, match) and runs check over
	// all of the user's predictions for roundMatchIDs inside one transaction.
	// A check error rolls the whole batch back.
	SaveForRoundUnit(ctx context.Context, userID int64, items []Prediction, roundMatchIDs []string, check RoundUnitCheck) error
}
