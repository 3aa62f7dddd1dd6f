package usecase

import (
	"context"
	"time"
)

// MaxFixtureIDsPerRequest bounds the multi-id fixture lookup.
const MaxFixtureIDsPerRequest = 20

type ExternalTeam struct {
	ExternalID int64
	Name       string
	LogoURL    string
}

type ExternalScore struct {
	Home *int
	Away *int
}

// ExternalFixture is one provider fixture as needed by the synchronizer.
type ExternalFixture struct {
	ExternalID            int64
	CompetitionExternalID int64
	RoundName             string
	StartAt               *time.Time
	StatusShort           string
	Home                  ExternalTeam
	Away                  ExternalTeam
	Goals                 ExternalScore
	FullTime              ExternalScore
}

// FixtureProvider is the raw upstream API. Each call reports the request URI
// it used, also when it fails, so the attempt can be audited.
type FixtureProvider interface {
	APIKey() string
	FetchRounds(ctx context.Context, competitionExternalID int64, season string) ([]string, string, error)
	FetchSeasonFixtures(ctx context.Context, competitionExternalID int64, season string) ([]ExternalFixture, string, error)
	FetchFixturesByIDs(ctx context.Context, externalIDs []int64) ([]ExternalFixture, string, error)
}

// FixtureGateway is the policy-enforcing provider facade used by fixture sync.
type FixtureGateway interface {
	Rounds(ctx context.Context, competitionExternalID int64, season string) ([]string, error)
	SeasonFixtures(ctx context.Context, competitionExternalID int64, season string) ([]ExternalFixture, error)
	FixturesByIDs(ctx context.Context, externalIDs []int64) ([]ExternalFixture, error)
}
