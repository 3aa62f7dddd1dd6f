package prediction

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMixedSeasons   = errors.New("predictions must belong to one season")
	ErrSeasonInactive = errors.New("season is not active")
	ErrMixedRounds    = errors.New("predictions must belong to one round")
	ErrDuplicateMatch = errors.New("only one prediction per match is allowed")
	ErrDoubleUpCount  = errors.New("round must have exactly one double-up prediction")
	ErrNegativeGoals  = errors.New("predicted goals must not be negative")
)

// Prediction is a user's score guess for one match.
type Prediction struct {
	ID        string
	UserID    int64
	MatchID   string
	HomeGoals int
	AwayGoals int
	DoubleUp  bool
	UpdatedAt time.Time
}

func (p Prediction) Validate() error {
	if p.MatchID == "" {
		return fmt.Errorf("prediction match id is required")
	}
	if p.HomeGoals < 0 || p.AwayGoals < 0 {
		return ErrNegativeGoals
	}

	return nil
}

// CheckUniqueMatches rejects more than one prediction for the same match.
func CheckUniqueMatches(predictions []Prediction) error {
	seen := make(map[string]struct{}, len(predictions))
	for _, p := range predictions {
		if _, ok := seen[p.MatchID]; ok {
			return fmt.Errorf("%w: match=%s", ErrDuplicateMatch, p.MatchID)
		}
		seen[p.MatchID] = struct{}{}
	}
	return nil
}

// CheckRoundUnit validates every prediction a user holds for one round unit.
func CheckRoundUnit(predictions []Prediction) error {
	if err := CheckUniqueMatches(predictions); err != nil {
		return err
	}

	doubleUps := 0
	for _, p := range predictions {
		if p.DoubleUp {
			doubleUps++
		}
	}
	if doubleUps != 1 {
		return fmt.Errorf("%w: got=%d", ErrDoubleUpCount, doubleUps)
	}

	return nil
}
