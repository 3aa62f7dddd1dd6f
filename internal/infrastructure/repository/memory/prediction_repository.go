package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
)

type PredictionRepository struct {
	mu    sync.RWMutex
	items map[string]prediction.Prediction
}

func NewPredictionRepository() *PredictionRepository {
	return &PredictionRepository{items: make(map[string]prediction.Prediction)}
}

func predictionKey(userID int64, matchID string) string {
	return fmt.Sprintf("%d::%s", userID, matchID)
}

func (r *PredictionRepository) ListByMatches(_ context.Context, matchIDs []string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(p prediction.Prediction) bool { return containsString(matchIDs, p.MatchID) }), nil
}

func (r *PredictionRepository) ListByUser(_ context.Context, userID int64, matchIDs []string) ([]prediction.Prediction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(p prediction.Prediction) bool {
		return p.UserID == userID && containsString(matchIDs, p.MatchID)
	}), nil
}

// SaveForRoundUnit applies the batch on a copy and swaps it in only when the
// check passes.
func (r *PredictionRepository) SaveForRoundUnit(
	_ context.Context,
	userID int64,
	items []prediction.Prediction,
	roundMatchIDs []string,
	check prediction.RoundUnitCheck,
) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	staged := make(map[string]prediction.Prediction, len(r.items)+len(items))
	for key, p := range r.items {
		staged[key] = p
	}
	for _, item := range items {
		key := predictionKey(userID, item.MatchID)
		if existing, ok := staged[key]; ok {
			item.ID = existing.ID
		}
		item.UserID = userID
		staged[key] = item
	}

	merged := make([]prediction.Prediction, 0)
	for _, p := range staged {
		if p.UserID == userID && containsString(roundMatchIDs, p.MatchID) {
			merged = append(merged, p)
		}
	}
	sortPredictions(merged)

	if check != nil {
		if err := check(merged); err != nil {
			return err
		}
	}
	r.items = staged
	return nil
}

func (r *PredictionRepository) collect(keep func(prediction.Prediction) bool) []prediction.Prediction {
	out := make([]prediction.Prediction, 0)
	for _, p := range r.items {
		if keep(p) {
			out = append(out, p)
		}
	}
	sortPredictions(out)
	return out
}

func sortPredictions(items []prediction.Prediction) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].UserID != items[j].UserID {
			return items[i].UserID < items[j].UserID
		}
		return items[i].MatchID < items[j].MatchID
	})
}

func containsString(items []string, value string) bool {
	for _, item := range items {
		if item == value {
			return true
		}
	}
	return false
}
