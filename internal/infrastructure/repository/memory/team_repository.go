package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/team"
)

type TeamRepository struct {
	mu         sync.RWMutex
	items      map[string]team.Team
	byExternal map[int64]string
}

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{
		items:      make(map[string]team.Team),
		byExternal: make(map[int64]string),
	}
}

func (r *TeamRepository) GetByExternalID(_ context.Context, externalID int64) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byExternal[externalID]
	if !ok {
		return team.Team{}, false, nil
	}
	return r.items[id], true, nil
}

func (r *TeamRepository) ListByIDs(_ context.Context, teamIDs []string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(teamIDs))
	for _, id := range teamIDs {
		if t, ok := r.items[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *TeamRepository) Create(_ context.Context, t team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byExternal[t.ExternalID]; exists {
		return fmt.Errorf("team with external id %d already exists", t.ExternalID)
	}
	r.items[t.ID] = t
	r.byExternal[t.ExternalID] = t.ID
	return nil
}

func (r *TeamRepository) Update(_ context.Context, t team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[t.ID]; !exists {
		return fmt.Errorf("team %s does not exist", t.ID)
	}
	r.items[t.ID] = t
	return nil
}
