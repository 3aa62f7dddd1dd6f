package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/competition"
)

type CompetitionRepository struct {
	mu     sync.RWMutex
	items  map[string]competition.Competition
	orders []string
}

func NewCompetitionRepository(seed ...competition.Competition) *CompetitionRepository {
	r := &CompetitionRepository{items: make(map[string]competition.Competition, len(seed))}
	for _, c := range seed {
		r.items[c.ID] = c
		r.orders = append(r.orders, c.ID)
	}
	return r
}

func (r *CompetitionRepository) List(_ context.Context) ([]competition.Competition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]competition.Competition, 0, len(r.orders))
	for _, id := range r.orders {
		out = append(out, r.items[id])
	}
	return out, nil
}

func (r *CompetitionRepository) GetByID(_ context.Context, competitionID string) (competition.Competition, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.items[competitionID]
	return c, ok, nil
}

func (r *CompetitionRepository) Create(_ context.Context, c competition.Competition) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[c.ID]; exists {
		return fmt.Errorf("competition %s already exists", c.ID)
	}
	r.items[c.ID] = c
	r.orders = append(r.orders, c.ID)
	return nil
}
