package prediction

import (
	"sort"

	"github.com/riskibarqy/prediction-league/internal/domain/match"
)

const (
	pointsExact      = 5
	pointsDifference = 3
	pointsWinner     = 2
	doubleUpFactor   = 2
)

func sameWinnerSide(predHome, predAway, home, away int) bool {
	return (predHome > predAway && home > away) || (predHome < predAway && home < away)
}

// Points scores one prediction against the actual result.
func Points(predHome, predAway, home, away int, doubleUp bool) int {
	points := 0
	switch {
	case predHome == home && predAway == away:
		points = pointsExact
	case predHome-predAway == home-away:
		points = pointsDifference
	case sameWinnerSide(predHome, predAway, home, away):
		points = pointsWinner
	}

	if doubleUp {
		points *= doubleUpFactor
	}
	return points
}

// Guessed reports whether the prediction got the outcome right: equal goal
// difference or the same winning side.
func Guessed(predHome, predAway, home, away int) bool {
	return predHome-predAway == home-away || sameWinnerSide(predHome, predAway, home, away)
}

// Result aggregates one user's points over finished and live matches.
// Live fields are nil when the user has no prediction on a live match.
type Result struct {
	UserID          int64
	Predictions     int
	PredictionsLive *int
	Guessed         int
	GuessedLive     *int
	Sum             int
	LiveSum         *int
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func (r Result) Total() int {
	return r.Sum + deref(r.LiveSum)
}

func (r Result) TotalPredictions() int {
	return r.Predictions + deref(r.PredictionsLive)
}

func (r Result) TotalGuessed() int {
	return r.Guessed + deref(r.GuessedLive)
}

type tally struct {
	predictions int
	guessed     int
	sum         int
}

func (t *tally) add(p Prediction, m match.Match) {
	home, away := deref(m.HomeScore), deref(m.AwayScore)
	t.predictions++
	t.sum += Points(p.HomeGoals, p.AwayGoals, home, away, p.DoubleUp)
	if Guessed(p.HomeGoals, p.AwayGoals, home, away) {
		t.guessed++
	}
}

// ComputeResults scores predictions over finished and started matches and
// returns one result per predicting user ranked by total descending. Ties
// keep ascending user id order.
func ComputeResults(matches []match.Match, predictions []Prediction) []Result {
	byID := make(map[string]match.Match, len(matches))
	for _, m := range matches {
		if m.Status == match.StatusFinished || m.Status == match.StatusStarted {
			byID[m.ID] = m
		}
	}

	finished := make(map[int64]*tally)
	live := make(map[int64]*tally)
	users := make([]int64, 0)
	seen := make(map[int64]struct{})
	for _, p := range predictions {
		m, ok := byID[p.MatchID]
		if !ok {
			continue
		}
		if _, ok := seen[p.UserID]; !ok {
			seen[p.UserID] = struct{}{}
			users = append(users, p.UserID)
		}

		bucket := finished
		if m.Status == match.StatusStarted {
			bucket = live
		}
		t, ok := bucket[p.UserID]
		if !ok {
			t = &tally{}
			bucket[p.UserID] = t
		}
		t.add(p, m)
	}

	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })

	results := make([]Result, 0, len(users))
	for _, userID := range users {
		r := Result{UserID: userID}
		if t, ok := finished[userID]; ok {
			r.Predictions = t.predictions
			r.Guessed = t.guessed
			r.Sum = t.sum
		}
		if t, ok := live[userID]; ok {
			predictionsLive, guessedLive, liveSum := t.predictions, t.guessed, t.sum
			r.PredictionsLive = &predictionsLive
			r.GuessedLive = &guessedLive
			r.LiveSum = &liveSum
		}
		results = append(results, r)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Total() > results[j].Total()
	})
	return results
}
