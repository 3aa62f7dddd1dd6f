package apifootball

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/resilience"
	"github.com/riskibarqy/prediction-league/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	DefaultBaseURL = "https://api-football-v1.p.rapidapi.com/v3"
	DefaultHost    = "api-football-v1.p.rapidapi.com"

	defaultTimeout   = 20 * time.Second
	maxResponseBytes = 8 << 20
	bodyPreviewLimit = 240

	headerAPIKey  = "X-RapidAPI-Key"
	headerAPIHost = "X-RapidAPI-Host"
)

var (
	// CopyString keeps decoded strings valid after the pooled buffer is reused.
	providerJSON = sonic.Config{CopyString: true}.Froze()

	errTransient = crerr.New("api-football transient failure")
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Host           string
	APIKey         string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	Clock          clockwork.Clock
}

// Client talks to the api-football v3 REST API. It performs exactly one HTTP
// request per call; retry and quota policy belong to the caller.
type Client struct {
	httpClient *http.Client
	baseURL    string
	host       string
	apiKey     string
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = DefaultHost
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		host:       host,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		logger:     logger.Named("apifootball"),
		breaker:    resilience.NewCircuitBreaker(cfg.CircuitBreaker, cfg.Clock),
	}
}

func (c *Client) APIKey() string {
	return c.apiKey
}

func (c *Client) FetchRounds(ctx context.Context, competitionExternalID int64, season string) ([]string, string, error) {
	query := url.Values{}
	query.Set("league", strconv.FormatInt(competitionExternalID, 10))
	query.Set("season", season)

	var payload *envelope[[]string]
	uri, err := c.getJSON(ctx, "/fixtures/rounds", query, &payload)
	if err != nil {
		return nil, uri, err
	}
	rounds, err := unwrap(payload)
	if err != nil {
		return nil, uri, err
	}
	return rounds, uri, nil
}

func (c *Client) FetchSeasonFixtures(ctx context.Context, competitionExternalID int64, season string) ([]usecase.ExternalFixture, string, error) {
	query := url.Values{}
	query.Set("league", strconv.FormatInt(competitionExternalID, 10))
	query.Set("season", season)
	return c.fetchFixtures(ctx, query)
}

func (c *Client) FetchFixturesByIDs(ctx context.Context, externalIDs []int64) ([]usecase.ExternalFixture, string, error) {
	if len(externalIDs) == 0 {
		return nil, "", fmt.Errorf("%w: fixture ids are required", usecase.ErrInvalidInput)
	}
	if len(externalIDs) > usecase.MaxFixtureIDsPerRequest {
		return nil, "", fmt.Errorf("%w: at most %d fixture ids per request, got %d",
			usecase.ErrInvalidInput, usecase.MaxFixtureIDsPerRequest, len(externalIDs))
	}

	ids := make([]string, 0, len(externalIDs))
	for _, id := range externalIDs {
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	query := url.Values{}
	query.Set("ids", strings.Join(ids, "-"))
	return c.fetchFixtures(ctx, query)
}

func (c *Client) fetchFixtures(ctx context.Context, query url.Values) ([]usecase.ExternalFixture, string, error) {
	var payload *envelope[[]fixtureItem]
	uri, err := c.getJSON(ctx, "/fixtures", query, &payload)
	if err != nil {
		return nil, uri, err
	}
	items, err := unwrap(payload)
	if err != nil {
		return nil, uri, err
	}

	out := make([]usecase.ExternalFixture, 0, len(items))
	for _, item := range items {
		out = append(out, toExternalFixture(item))
	}
	return out, uri, nil
}

func unwrap[T any](payload *envelope[T]) (T, error) {
	var zero T
	switch {
	case payload == nil:
		return zero, fmt.Errorf("%w: empty payload", usecase.ErrInvalidResponse)
	case len(payload.Errors) > 0:
		return zero, fmt.Errorf("%w: %s", usecase.ErrInvalidResponse, strings.Join(payload.Errors, "; "))
	case payload.Response == nil:
		return zero, fmt.Errorf("%w: response is missing", usecase.ErrInvalidResponse)
	}
	return *payload.Response, nil
}

// getJSON performs the request and decodes the body into target. The returned
// URI never contains the api key.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, target any) (string, error) {
	requestURI := path
	if encoded := query.Encode(); encoded != "" {
		requestURI += "?" + encoded
	}

	if err := c.breaker.Allow(); err != nil {
		c.logger.WarnContext(ctx, "api-football circuit breaker rejected request", "uri", requestURI, "state", c.breaker.State())
		return requestURI, fmt.Errorf("%w: %w: %w", usecase.ErrRequestFailed, usecase.ErrDependencyUnavailable, err)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	err := c.execute(ctx, c.baseURL+requestURI, buf)
	c.breaker.Record(transientOnly(err))
	if err != nil {
		c.logger.WarnContext(ctx, "api-football request failed", "uri", requestURI, "error", err)
		return requestURI, fmt.Errorf("%w: %w", usecase.ErrRequestFailed, err)
	}

	body := bytes.TrimSpace(buf.B)
	if len(body) == 0 {
		return requestURI, fmt.Errorf("%w: empty body", usecase.ErrInvalidResponse)
	}
	if err := providerJSON.Unmarshal(body, target); err != nil {
		return requestURI, fmt.Errorf("%w: decode provider payload: %w", usecase.ErrRequestFailed, err)
	}
	return requestURI, nil
}

func (c *Client) execute(ctx context.Context, fullURL string, buf *bytebufferpool.ByteBuffer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set(headerAPIHost, c.host)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return crerr.Mark(crerr.Newf("send request: %s", c.redact(err.Error())), errTransient)
	}
	defer resp.Body.Close()

	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxResponseBytes)); err != nil {
		return crerr.Mark(crerr.Wrap(err, "read response body"), errTransient)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(buf.B))
		if isRetryableStatus(resp.StatusCode) {
			return crerr.Mark(statusErr, errTransient)
		}
		return statusErr
	}
	return nil
}

// transientOnly keeps client-side and payload errors from tripping the breaker.
func transientOnly(err error) error {
	if err != nil && crerr.Is(err, errTransient) {
		return err
	}
	return nil
}

func (c *Client) redact(value string) string {
	if c.apiKey == "" {
		return value
	}
	return strings.ReplaceAll(value, c.apiKey, "REDACTED")
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func abbreviateBody(raw []byte) string {
	value := strings.Join(strings.Fields(string(raw)), " ")
	if len(value) <= bodyPreviewLimit {
		return value
	}
	return value[:bodyPreviewLimit] + "..."
}

func toExternalFixture(item fixtureItem) usecase.ExternalFixture {
	status := ""
	if item.Fixture.Status.Short != nil {
		status = *item.Fixture.Status.Short
	}

	return usecase.ExternalFixture{
		ExternalID:            item.Fixture.ID,
		CompetitionExternalID: item.League.ID,
		RoundName:             item.League.Round,
		StartAt:               parseFixtureDate(item.Fixture.Date),
		StatusShort:           status,
		Home:                  toExternalTeam(item.Teams.Home),
		Away:                  toExternalTeam(item.Teams.Away),
		Goals:                 usecase.ExternalScore{Home: item.Goals.Home, Away: item.Goals.Away},
		FullTime:              usecase.ExternalScore{Home: item.Score.Fulltime.Home, Away: item.Score.Fulltime.Away},
	}
}

func toExternalTeam(team teamInfo) usecase.ExternalTeam {
	return usecase.ExternalTeam{
		ExternalID: team.ID,
		Name:       strings.TrimSpace(team.Name),
		LogoURL:    strings.TrimSpace(team.Logo),
	}
}

func parseFixtureDate(raw *string) *time.Time {
	if raw == nil {
		return nil
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return nil
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	utc := parsed.UTC()
	return &utc
}
