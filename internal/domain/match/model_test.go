package match

import (
	"testing"
	"time"
)

func TestStatusFromProvider(t *testing.T) {
	t.Parallel()

	cases := map[string]Status{
		"NS":   StatusPlanned,
		"1H":   StatusStarted,
		"HT":   StatusStarted,
		"2H":   StatusStarted,
		"LIVE": StatusStarted,
		"ABD":  StatusNotDefined,
		"CANC": StatusNotDefined,
		"INT":  StatusNotDefined,
		"PST":  StatusNotDefined,
		"SUSP": StatusNotDefined,
		"WO":   StatusNotDefined,
		"TBD":  StatusNotDefined,
		"AET":  StatusFinished,
		"P":    StatusFinished,
		"PEN":  StatusFinished,
		"ET":   StatusFinished,
		"AWD":  StatusFinished,
		"BT":   StatusFinished,
		"FT":   StatusFinished,
		"":     StatusNotDefined,
		"XYZ":  StatusNotDefined,
		"ft":   StatusNotDefined,
	}
	for code, want := range cases {
		if got := StatusFromProvider(code); got != want {
			t.Fatalf("unexpected status for %q: got=%s want=%s", code, got, want)
		}
	}
}

func TestMatch_IsActive(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		m    Match
		want bool
	}{
		{name: "planned past", m: Match{Status: StatusPlanned, StartTime: &past}, want: true},
		{name: "started at now", m: Match{Status: StatusStarted, StartTime: &now}, want: true},
		{name: "planned future", m: Match{Status: StatusPlanned, StartTime: &future}, want: false},
		{name: "finished past", m: Match{Status: StatusFinished, StartTime: &past}, want: false},
		{name: "no start time", m: Match{Status: StatusPlanned}, want: false},
	}
	for _, tc := range tests {
		if got := tc.m.IsActive(now); got != tc.want {
			t.Fatalf("%s: got=%v want=%v", tc.name, got, tc.want)
		}
	}
}
