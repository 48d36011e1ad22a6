package swapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/planet-weather-fusion/internal/domain"
	"github.com/couchcryptid/planet-weather-fusion/internal/observability"
	"github.com/tidwall/gjson"
)

const (
	source = "swapi"

	// DefaultMaxCharacterID is the highest contiguous person id on swapi.info.
	DefaultMaxCharacterID = 83

	maxBodyBytes = 1 << 20
)

// Client implements domain.CharacterRegistry against the Star Wars API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxID      int
	intN       func(n int) int
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a SWAPI client. maxID bounds FetchRandom; values below 1
// fall back to DefaultMaxCharacterID.
func NewClient(baseURL string, timeout time.Duration, maxID int, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if maxID < 1 {
		maxID = DefaultMaxCharacterID
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		maxID:   maxID,
		intN:    rand.IntN,
		metrics: metrics,
		logger:  logger,
	}
}

// FetchByID fetches a person by numeric id.
func (c *Client) FetchByID(ctx context.Context, id int) (domain.RawCharacter, error) {
	op := fmt.Sprintf("fetch character %d", id)
	body, err := c.doRequest(ctx, fmt.Sprintf("%s/people/%d", c.baseURL, id), op)
	if err != nil {
		return domain.RawCharacter{}, err
	}

	return domain.RawCharacter{
		Name:      optString(body, "name"),
		Height:    optString(body, "height"),
		Mass:      optString(body, "mass"),
		BirthYear: optString(body, "birth_year"),
		Gender:    optString(body, "gender"),
		Homeworld: optString(body, "homeworld"),
		URL:       optString(body, "url"),
	}, nil
}

// FetchByReference dereferences an absolute planet URL such as a
// character's homeworld.
func (c *Client) FetchByReference(ctx context.Context, ref string) (domain.RawPlanet, error) {
	const op = "fetch planet"
	u, err := url.Parse(ref)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return domain.RawPlanet{}, &domain.UpstreamError{
			Source: source,
			Op:     op,
			Err:    fmt.Errorf("invalid reference %q", ref),
		}
	}

	body, err := c.doRequest(ctx, u.String(), op)
	if err != nil {
		return domain.RawPlanet{}, err
	}

	return domain.RawPlanet{
		Name:       optString(body, "name"),
		Diameter:   optString(body, "diameter"),
		Climate:    optString(body, "climate"),
		Terrain:    optString(body, "terrain"),
		Population: optString(body, "population"),
		URL:        optString(body, "url"),
	}, nil
}

// FetchRandom fetches a person with an id drawn uniformly from [1, maxID].
// Results are not reproducible.
func (c *Client) FetchRandom(ctx context.Context) (domain.RawCharacter, error) {
	id := c.intN(c.maxID) + 1
	c.logger.Debug("picked random character", "id", id)
	return c.FetchByID(ctx, id)
}

func (c *Client) doRequest(ctx context.Context, fullURL, op string) (body []byte, err error) {
	start := time.Now()
	defer func() {
		c.metrics.UpstreamDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.metrics.UpstreamRequests.WithLabelValues(source, outcome).Inc()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, &domain.UpstreamError{Source: source, Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.UpstreamError{Source: source, Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.UpstreamError{Source: source, Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.UpstreamError{Source: source, Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected response: %s", body)}
	}

	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return nil, &domain.UpstreamError{Source: source, Op: op, StatusCode: resp.StatusCode, Err: errors.New("decode response: not a JSON object")}
	}
	return body, nil
}

// optString reads a loosely-typed field. Numbers keep their literal text;
// missing and null fields are nil.
func optString(body []byte, path string) *string {
	r := gjson.GetBytes(body, path)
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	var s string
	if r.Type == gjson.Number {
		s = r.Raw
	} else {
		s = r.String()
	}
	return &s
}
