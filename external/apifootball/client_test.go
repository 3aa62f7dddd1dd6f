package apifootball

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riskibarqy/prediction-league/internal/platform/resilience"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

const fixturesPayload = `{
  "get": "fixtures",
  "errors": [],
  "results": 2,
  "response": [
    {
      "fixture": {"id": 1035037, "date": "2023-08-11T19:00:00+00:00", "status": {"long": "Match Finished", "short": "FT", "elapsed": 90}},
      "league": {"id": 39, "season": 2023, "round": "Regular Season - 1"},
      "teams": {
        "home": {"id": 44, "name": "Burnley", "logo": "https://media.api-sports.io/football/teams/44.png", "winner": false},
        "away": {"id": 50, "name": "Manchester City", "logo": "https://media.api-sports.io/football/teams/50.png", "winner": true}
      },
      "goals": {"home": 0, "away": 3},
      "score": {"halftime": {"home": 0, "away": 2}, "fulltime": {"home": 0, "away": 3}, "extratime": {"home": null, "away": null}, "penalty": {"home": null, "away": null}}
    },
    {
      "fixture": {"id": 1035038, "date": null, "status": {"long": "Time To Be Defined", "short": null, "elapsed": null}},
      "league": {"id": 39, "season": 2023, "round": "Regular Season - 1"},
      "teams": {"home": {"id": 42, "name": "Arsenal", "logo": "a.png", "winner": null}, "away": {"id": 65, "name": "Nottingham Forest", "logo": "n.png", "winner": null}},
      "goals": {"home": null, "away": null},
      "score": {"halftime": {"home": null, "away": null}, "fulltime": {"home": null, "away": null}, "extratime": {"home": null, "away": null}, "penalty": {"home": null, "away": null}}
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(ClientConfig{
		HTTPClient:     srv.Client(),
		BaseURL:        srv.URL,
		APIKey:         "secret-key",
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 2, OpenTimeout: time.Minute},
	})
}

func TestClient_FetchFixturesByIDs(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fixtures" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("ids"); got != "1035037-1035038" {
			t.Errorf("unexpected ids: %s", got)
		}
		if r.Header.Get("X-RapidAPI-Key") != "secret-key" || r.Header.Get("X-RapidAPI-Host") != DefaultHost {
			t.Errorf("missing rapidapi headers: %v", r.Header)
		}
		_, _ = w.Write([]byte(fixturesPayload))
	})

	fixtures, uri, err := client.FetchFixturesByIDs(context.Background(), []int64{1035037, 1035038})
	if err != nil {
		t.Fatalf("fetch fixtures: %v", err)
	}
	if uri != "/fixtures?ids=1035037-1035038" {
		t.Fatalf("unexpected request uri: %s", uri)
	}
	if len(fixtures) != 2 {
		t.Fatalf("unexpected fixture count: got=%d want=2", len(fixtures))
	}

	first := fixtures[0]
	if first.ExternalID != 1035037 || first.CompetitionExternalID != 39 || first.RoundName != "Regular Season - 1" {
		t.Fatalf("unexpected fixture identity: %+v", first)
	}
	if first.StatusShort != "FT" || first.StartAt == nil || !first.StartAt.Equal(time.Date(2023, 8, 11, 19, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected fixture status/date: %+v", first)
	}
	if first.Home.Name != "Burnley" || first.Away.ExternalID != 50 {
		t.Fatalf("unexpected teams: %+v / %+v", first.Home, first.Away)
	}
	if *first.FullTime.Home != 0 || *first.FullTime.Away != 3 || *first.Goals.Away != 3 {
		t.Fatalf("unexpected score: %+v", first.FullTime)
	}

	second := fixtures[1]
	if second.StartAt != nil || second.StatusShort != "" || second.FullTime.Home != nil {
		t.Fatalf("expected empty optional fields: %+v", second)
	}
}

func TestClient_FetchRounds(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fixtures/rounds" || r.URL.Query().Get("league") != "2" || r.URL.Query().Get("season") != "2024" {
			t.Errorf("unexpected request: %s", r.URL.String())
		}
		_, _ = w.Write([]byte(`{"errors": [], "response": ["League Stage - 1", "Round of 16", "Final"]}`))
	})

	rounds, uri, err := client.FetchRounds(context.Background(), 2, "2024")
	if err != nil {
		t.Fatalf("fetch rounds: %v", err)
	}
	if uri != "/fixtures/rounds?league=2&season=2024" {
		t.Fatalf("unexpected request uri: %s", uri)
	}
	if len(rounds) != 3 || rounds[1] != "Round of 16" {
		t.Fatalf("unexpected rounds: %v", rounds)
	}
}

func TestClient_InvalidResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "null payload", body: `null`},
		{name: "empty body", body: ``},
		{name: "errors object", body: `{"errors": {"token": "Error/Missing application key."}, "response": []}`},
		{name: "errors list", body: `{"errors": ["rate limit"], "response": []}`},
		{name: "missing response", body: `{"errors": []}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			})
			_, uri, err := client.FetchSeasonFixtures(context.Background(), 39, "2023")
			if !errors.Is(err, usecase.ErrInvalidResponse) {
				t.Fatalf("unexpected error: got=%v want=%v", err, usecase.ErrInvalidResponse)
			}
			if uri != "/fixtures?league=39&season=2023" {
				t.Fatalf("unexpected request uri: %s", uri)
			}
		})
	}
}

func TestClient_RequestErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream down`))
	})

	for i := 0; i < 2; i++ {
		_, _, err := client.FetchRounds(context.Background(), 39, "2023")
		if !errors.Is(err, usecase.ErrRequestFailed) {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}

	_, _, err := client.FetchRounds(context.Background(), 39, "2023")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) || !errors.Is(err, usecase.ErrRequestFailed) {
		t.Fatalf("expected open breaker error, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("unexpected upstream calls: got=%d want=2", got)
	}
}

func TestClient_DecodeFailureIsRequestError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"errors": [], "response": [`))
	})
	_, _, err := client.FetchRounds(context.Background(), 39, "2023")
	if !errors.Is(err, usecase.ErrRequestFailed) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_RejectsTooManyIDs(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Errorf("no request expected")
	})
	ids := make([]int64, usecase.MaxFixtureIDsPerRequest+1)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	if _, _, err := client.FetchFixturesByIDs(context.Background(), ids); !errors.Is(err, usecase.ErrInvalidInput) {
		t.Fatalf("unexpected error: %v", err)
	}
}
