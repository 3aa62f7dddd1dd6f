package usecase

import (
	"github.com/riskibarqy/prediction-league/internal/domain/match"
	"github.com/riskibarqy/prediction-league/internal/domain/round"
)

// seasonState is the in-memory view of one season's rounds and matches during
// a sync pass. Matches synced earlier in the pass are visible to later leg
// lookups.
type seasonState struct {
	seasonID   string
	rounds     []round.Round
	newRounds  []round.Round
	byRound    map[string][]*match.Match
	byExternal map[int64]*match.Match
	dirty      []*match.Match
	dirtyIDs   map[string]struct{}
}

func newSeasonState(seasonID string, rounds []round.Round, matches []match.Match) *seasonState {
	st := &seasonState{
		seasonID:   seasonID,
		rounds:     append([]round.Round(nil), rounds...),
		byRound:    make(map[string][]*match.Match, len(rounds)),
		byExternal: make(map[int64]*match.Match, len(matches)),
		dirtyIDs:   make(map[string]struct{}),
	}
	for i := range matches {
		m := matches[i]
		st.byRound[m.RoundID] = append(st.byRound[m.RoundID], &m)
		st.byExternal[m.ExternalID] = &m
	}
	return st
}

func (st *seasonState) addRounds(rounds []round.Round) {
	st.rounds = append(st.rounds, rounds...)
	st.newRounds = append(st.newRounds, rounds...)
}

func (st *seasonState) roundsByAlias(alias string) []round.Round {
	out := make([]round.Round, 0, 2)
	for _, r := range st.rounds {
		if r.ExternalName == alias {
			out = append(out, r)
		}
	}
	return out
}

// hasFixture reports whether the round holds a match home vs away.
func (st *seasonState) hasFixture(roundID, homeTeamID, awayTeamID string) bool {
	for _, m := range st.byRound[roundID] {
		if m.HomeTeamID == homeTeamID && m.AwayTeamID == awayTeamID {
			return true
		}
	}
	return false
}

func (st *seasonState) match(externalID int64) (*match.Match, bool) {
	m, ok := st.byExternal[externalID]
	return m, ok
}

func (st *seasonState) add(m *match.Match) {
	st.byExternal[m.ExternalID] = m
	if m.RoundID != "" {
		st.byRound[m.RoundID] = append(st.byRound[m.RoundID], m)
	}
}

// move reassigns the match to another round and updates both round lists.
func (st *seasonState) move(m *match.Match, roundID string) {
	if m.RoundID == roundID {
		return
	}
	if m.RoundID != "" {
		current := st.byRound[m.RoundID]
		for i, candidate := range current {
			if candidate == m {
				st.byRound[m.RoundID] = append(current[:i:i], current[i+1:]...)
				break
			}
		}
	}
	m.RoundID = roundID
	st.byRound[roundID] = append(st.byRound[roundID], m)
}

func (st *seasonState) markDirty(m *match.Match) {
	if _, ok := st.dirtyIDs[m.ID]; ok {
		return
	}
	st.dirtyIDs[m.ID] = struct{}{}
	st.dirty = append(st.dirty, m)
}

func (st *seasonState) batch() match.SyncBatch {
	matches := make([]match.Match, 0, len(st.dirty))
	for _, m := range st.dirty {
		matches = append(matches, *m)
	}
	return match.SyncBatch{
		SeasonID:  st.seasonID,
		NewRounds: append([]round.Round(nil), st.newRounds...),
		Matches:   matches,
	}
}
