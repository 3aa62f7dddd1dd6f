package apifootball

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// envelope is the common api-football response wrapper.
type envelope[T any] struct {
	Errors   providerErrors `json:"errors"`
	Response *T             `json:"response"`
}

// providerErrors accepts both shapes the API uses: a list, or an object keyed
// by error field.
type providerErrors []string

func (e *providerErrors) UnmarshalJSON(raw []byte) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*e = nil
		return nil
	}

	switch trimmed[0] {
	case '[':
		var items []any
		if err := providerJSON.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("decode errors list: %w", err)
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, fmt.Sprint(item))
		}
		*e = out
	case '{':
		var items map[string]any
		if err := providerJSON.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("decode errors object: %w", err)
		}
		out := make([]string, 0, len(items))
		for key, value := range items {
			out = append(out, fmt.Sprintf("%s: %v", key, value))
		}
		sort.Strings(out)
		*e = out
	default:
		*e = providerErrors{strings.Trim(string(trimmed), `"`)}
	}
	return nil
}

type fixtureItem struct {
	Fixture fixtureInfo `json:"fixture"`
	League  leagueInfo  `json:"league"`
	Teams   teamsInfo   `json:"teams"`
	Goals   scorePair   `json:"goals"`
	Score   scoreInfo   `json:"score"`
}

type fixtureInfo struct {
	ID     int64        `json:"id"`
	Date   *string      `json:"date"`
	Status fixtureState `json:"status"`
}

type fixtureState struct {
	Long    string  `json:"long"`
	Short   *string `json:"short"`
	Elapsed *int    `json:"elapsed"`
}

type leagueInfo struct {
	ID     int64  `json:"id"`
	Season int    `json:"season"`
	Round  string `json:"round"`
}

type teamsInfo struct {
	Home teamInfo `json:"home"`
	Away teamInfo `json:"away"`
}

type teamInfo struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Logo   string `json:"logo"`
	Winner *bool  `json:"winner"`
}

type scorePair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type scoreInfo struct {
	Halftime  scorePair `json:"halftime"`
	Fulltime  scorePair `json:"fulltime"`
	Extratime scorePair `json:"extratime"`
	Penalty   scorePair `json:"penalty"`
}
