package prediction

import (
	"errors"
	"testing"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
)

func TestPoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name               string
		predHome, predAway int
		home, away         int
		doubleUp           bool
		wantPoints         int
		wantGuessed        bool
	}{
		{name: "exact", predHome: 2, predAway: 1, home: 2, away: 1, wantPoints: 5, wantGuessed: true},
		{name: "exact doubled", predHome: 2, predAway: 1, home: 2, away: 1, doubleUp: true, wantPoints: 10, wantGuessed: true},
		{name: "same difference", predHome: 3, predAway: 2, home: 2, away: 1, wantPoints: 3, wantGuessed: true},
		{name: "draw difference", predHome: 0, predAway: 0, home: 1, away: 1, wantPoints: 3, wantGuessed: true},
		{name: "winner only", predHome: 3, predAway: 0, home: 1, away: 0, wantPoints: 2, wantGuessed: true},
		{name: "away winner doubled", predHome: 0, predAway: 2, home: 1, away: 4, doubleUp: true, wantPoints: 4, wantGuessed: true},
		{name: "wrong", predHome: 1, predAway: 0, home: 0, away: 1, wantPoints: 0, wantGuessed: false},
		{name: "draw predicted home won", predHome: 1, predAway: 1, home: 2, away: 1, wantPoints: 0, wantGuessed: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := Points(tc.predHome, tc.predAway, tc.home, tc.away, tc.doubleUp); got != tc.wantPoints {
				t.Fatalf("unexpected points: got=%d want=%d", got, tc.wantPoints)
			}
			if got := Guessed(tc.predHome, tc.predAway, tc.home, tc.away); got != tc.wantGuessed {
				t.Fatalf("unexpected guessed: got=%v want=%v", got, tc.wantGuessed)
			}
		})
	}
}

func intPtr(v int) *int { return &v }

func TestComputeResults(t *testing.T) {
	t.Parallel()

	matches := []match.Match{
		{ID: "m1", Status: match.StatusFinished, HomeScore: intPtr(2), AwayScore: intPtr(1)},
		{ID: "m2", Status: match.StatusFinished, HomeScore: intPtr(0), AwayScore: intPtr(0)},
		{ID: "m3", Status: match.StatusStarted, HomeScore: intPtr(1), AwayScore: intPtr(0)},
		{ID: "m4", Status: match.StatusPlanned},
	}
	predictions := []Prediction{
		{UserID: 2, MatchID: "m1", HomeGoals: 2, AwayGoals: 1, DoubleUp: true},
		{UserID: 2, MatchID: "m2", HomeGoals: 1, AwayGoals: 0},
		{UserID: 1, MatchID: "m1", HomeGoals: 1, AwayGoals: 0},
		{UserID: 1, MatchID: "m2", HomeGoals: 1, AwayGoals: 1},
		{UserID: 1, MatchID: "m3", HomeGoals: 1, AwayGoals: 0, DoubleUp: true},
		{UserID: 3, MatchID: "m4", HomeGoals: 1, AwayGoals: 0, DoubleUp: true},
		{UserID: 4, MatchID: "m2", HomeGoals: 3, AwayGoals: 0},
	}

	results := ComputeResults(matches, predictions)
	if len(results) != 3 {
		t.Fatalf("unexpected result count: got=%d want=3", len(results))
	}

	// user 1: 3 (difference) + 3 (draw difference) finished, 10 live.
	first := results[0]
	if first.UserID != 1 || first.Sum != 6 || first.LiveSum == nil || *first.LiveSum != 10 || first.Total() != 16 {
		t.Fatalf("unexpected first result: %+v", first)
	}
	if first.Predictions != 2 || *first.PredictionsLive != 1 || first.TotalPredictions() != 3 {
		t.Fatalf("unexpected first prediction counters: %+v", first)
	}
	if first.Guessed != 2 || *first.GuessedLive != 1 || first.TotalGuessed() != 3 {
		t.Fatalf("unexpected first guessed counters: %+v", first)
	}

	second := results[1]
	if second.UserID != 2 || second.Sum != 10 || second.LiveSum != nil || second.Total() != 10 {
		t.Fatalf("unexpected second result: %+v", second)
	}
	if second.PredictionsLive != nil || second.GuessedLive != nil {
		t.Fatalf("live counters must be absent: %+v", second)
	}

	third := results[2]
	if third.UserID != 4 || third.Total() != 0 || third.Predictions != 1 || third.Guessed != 0 {
		t.Fatalf("unexpected third result: %+v", third)
	}
}

func TestComputeResults_TiesKeepUserOrder(t *testing.T) {
	t.Parallel()

	matches := []match.Match{{ID: "m1", Status: match.StatusFinished, HomeScore: intPtr(1), AwayScore: intPtr(0)}}
	predictions := []Prediction{
		{UserID: 9, MatchID: "m1", HomeGoals: 1, AwayGoals: 0},
		{UserID: 3, MatchID: "m1", HomeGoals: 1, AwayGoals: 0},
		{UserID: 5, MatchID: "m1", HomeGoals: 1, AwayGoals: 0},
	}

	results := ComputeResults(matches, predictions)
	want := []int64{3, 5, 9}
	for i, id := range want {
		if results[i].UserID != id {
			t.Fatalf("unexpected order at %d: got=%d want=%d", i, results[i].UserID, id)
		}
	}
}

func TestCheckRoundUnit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		items     []Prediction
		targetErr error
	}{
		{
			name:      "no double-up",
			items:     []Prediction{{MatchID: "m1"}, {MatchID: "m2"}},
			targetErr: ErrDoubleUpCount,
		},
		{
			name:  "one double-up",
			items: []Prediction{{MatchID: "m1", DoubleUp: true}, {MatchID: "m2"}},
		},
		{
			name:      "two double-ups",
			items:     []Prediction{{MatchID: "m1", DoubleUp: true}, {MatchID: "m2", DoubleUp: true}},
			targetErr: ErrDoubleUpCount,
		},
		{
			name:      "duplicate match",
			items:     []Prediction{{MatchID: "m1", DoubleUp: true}, {MatchID: "m1"}},
			targetErr: ErrDuplicateMatch,
		},
	}

	for _, tc := range tests {
		err := CheckRoundUnit(tc.items)
		if tc.targetErr == nil && err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if tc.targetErr != nil && !errors.Is(err, tc.targetErr) {
			t.Fatalf("%s: unexpected error: got=%v want=%v", tc.name, err, tc.targetErr)
		}
	}
}
