package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/user"
)

type UserRepository struct {
	mu    sync.RWMutex
	items map[int64]user.User
}

func NewUserRepository(seed ...user.User) *UserRepository {
	r := &UserRepository{items: make(map[int64]user.User, len(seed))}
	for _, u := range seed {
		r.items[u.ID] = cloneUser(u)
	}
	return r
}

func (r *UserRepository) GetByID(_ context.Context, userID int64) (user.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[userID]
	return cloneUser(u), ok, nil
}

func (r *UserRepository) ListByIDs(_ context.Context, userIDs []int64) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, 0, len(userIDs))
	for _, id := range userIDs {
		if u, ok := r.items[id]; ok {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (r *UserRepository) Save(_ context.Context, u user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[u.ID] = cloneUser(u)
	return nil
}

func cloneUser(u user.User) user.User {
	copied := u
	copied.CompetitionIDs = append([]string(nil), u.CompetitionIDs...)
	return copied
}
