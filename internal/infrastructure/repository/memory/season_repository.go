package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/season"
)

type SeasonRepository struct {
	mu    sync.RWMutex
	items map[string]season.Season
}

func NewSeasonRepository(seed ...season.Season) *SeasonRepository {
	r := &SeasonRepository{items: make(map[string]season.Season, len(seed))}
	for _, s := range seed {
		r.items[s.ID] = s
	}
	return r
}

func (r *SeasonRepository) GetByID(_ context.Context, seasonID string) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.items[seasonID]
	return s, ok, nil
}

func (r *SeasonRepository) ListByCompetition(_ context.Context, competitionID string) ([]season.Season, error) {
	return r.filter(func(s season.Season) bool { return s.CompetitionID == competitionID }), nil
}

func (r *SeasonRepository) ListActive(_ context.Context) ([]season.Season, error) {
	return r.filter(func(s season.Season) bool { return s.Active }), nil
}

func (r *SeasonRepository) CountActive(_ context.Context, competitionID, excludeID string) (int, error) {
	items := r.filter(func(s season.Season) bool {
		return s.Active && s.CompetitionID == competitionID && s.ID != excludeID
	})
	return len(items), nil
}

func (r *SeasonRepository) Create(_ context.Context, s season.Season) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[s.ID]; exists {
		return fmt.Errorf("season %s already exists", s.ID)
	}
	r.items[s.ID] = s
	return nil
}

func (r *SeasonRepository) Update(_ context.Context, s season.Season) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[s.ID]; !exists {
		return fmt.Errorf("season %s does not exist", s.ID)
	}
	r.items[s.ID] = s
	return nil
}

func (r *SeasonRepository) filter(keep func(season.Season) bool) []season.Season {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]season.Season, 0)
	for _, s := range r.items {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].ID < out[j].ID
	})
	return out
}
