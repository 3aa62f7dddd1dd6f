package user

import "context"

// Repository describes user persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, userID int64) (User, bool, error)
	ListByIDs(ctx context.Context, userIDs []int64) ([]User, error)
	// Save creates or replaces the user including competition subscriptions.
	Save(ctx context.Context, u User) error
}
