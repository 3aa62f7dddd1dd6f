package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/round"
)

// FixtureStore keeps rounds and matches together so a sync batch is applied
// atomically, mirroring the single database transaction.
type FixtureStore struct {
	mu      sync.RWMutex
	rounds  map[string]round.Round
	matches map[string]match.Match
}

func NewFixtureStore() *FixtureStore {
	return &FixtureStore{
		rounds:  make(map[string]round.Round),
		matches: make(map[string]match.Match),
	}
}

// RoundRepository and MatchRepository are views over one FixtureStore.
type RoundRepository struct{ store *FixtureStore }

type MatchRepository struct{ store *FixtureStore }

func (s *FixtureStore) Rounds() *RoundRepository {
	return &RoundRepository{store: s}
}

func (s *FixtureStore) Matches() *MatchRepository {
	return &MatchRepository{store: s}
}

func (r *RoundRepository) GetByID(_ context.Context, roundID string) (round.Round, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rd, ok := r.store.rounds[roundID]
	return rd, ok, nil
}

func (r *RoundRepository) ListBySeason(_ context.Context, seasonID string) ([]round.Round, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.roundsBySeason(seasonID), nil
}

func (s *FixtureStore) roundsBySeason(seasonID string) []round.Round {
	out := make([]round.Round, 0)
	for _, rd := range s.rounds {
		if rd.SeasonID == seasonID {
			out = append(out, rd)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OrderNumber != out[j].OrderNumber {
			return out[i].OrderNumber < out[j].OrderNumber
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.matches[matchID]
	return cloneMatch(m), ok, nil
}

func (r *MatchRepository) ListBySeason(_ context.Context, seasonID string) ([]match.Match, error) {
	return r.list(func(rd round.Round, _ match.Match) bool { return rd.SeasonID == seasonID }), nil
}

func (r *MatchRepository) ListByRoundUnit(_ context.Context, seasonID string, orderNumber int) ([]match.Match, error) {
	return r.list(func(rd round.Round, _ match.Match) bool {
		return rd.SeasonID == seasonID && rd.OrderNumber == orderNumber
	}), nil
}

func (r *MatchRepository) ListActive(_ context.Context, seasonID string, now time.Time) ([]match.Match, error) {
	return r.list(func(rd round.Round, m match.Match) bool {
		return rd.SeasonID == seasonID && m.IsActive(now)
	}), nil
}

func (r *MatchRepository) SaveSync(_ context.Context, batch match.SyncBatch) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	known := make(map[string]struct{}, len(r.store.rounds)+len(batch.NewRounds))
	for id := range r.store.rounds {
		known[id] = struct{}{}
	}
	for _, rd := range batch.NewRounds {
		if rd.SeasonID != batch.SeasonID {
			return fmt.Errorf("round %s belongs to season %s, batch season %s", rd.ID, rd.SeasonID, batch.SeasonID)
		}
		known[rd.ID] = struct{}{}
	}
	for _, m := range batch.Matches {
		if _, ok := known[m.RoundID]; !ok {
			return fmt.Errorf("match %s references unknown round %s", m.ID, m.RoundID)
		}
	}

	byExternal := make(map[int64]string, len(r.store.matches))
	for id, m := range r.store.matches {
		byExternal[m.ExternalID] = id
	}
	for _, rd := range batch.NewRounds {
		r.store.rounds[rd.ID] = rd
	}
	for _, m := range batch.Matches {
		if existingID, ok := byExternal[m.ExternalID]; ok && existingID != m.ID {
			m.ID = existingID
		}
		r.store.matches[m.ID] = cloneMatch(m)
	}
	return nil
}

func (r *MatchRepository) list(keep func(round.Round, match.Match) bool) []match.Match {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, m := range r.store.matches {
		rd, ok := r.store.rounds[m.RoundID]
		if ok && keep(rd, m) {
			out = append(out, cloneMatch(m))
		}
	}
	sortMatches(out)
	return out
}

// sortMatches orders by start time with unscheduled matches last.
func sortMatches(items []match.Match) {
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i].StartTime, items[j].StartTime
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return items[i].ExternalID < items[j].ExternalID
	})
}

func cloneMatch(m match.Match) match.Match {
	copied := m
	if m.StartTime != nil {
		v := *m.StartTime
		copied.StartTime = &v
	}
	if m.HomeScore != nil {
		v := *m.HomeScore
		copied.HomeScore = &v
	}
	if m.AwayScore != nil {
		v := *m.AwayScore
		copied.AwayScore = &v
	}
	return copied
}
