package openmeteo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/planet-weather-fusion/internal/domain"
	"github.com/couchcryptid/planet-weather-fusion/internal/observability"
	"github.com/tidwall/gjson"
)

const (
	source = "open-meteo"

	currentFields = "temperature_2m,wind_speed_10m,relative_humidity_2m"
	maxBodyBytes  = 1 << 20
)

// Client implements domain.ConditionsSource using the Open-Meteo forecast API.
// Failed calls are not retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		metrics: metrics,
		logger:  logger,
	}
}

// FetchCurrent returns the current conditions block for a coordinate pair.
func (c *Client) FetchCurrent(ctx context.Context, lat, lon float64) (raw domain.RawConditions, err error) {
	const op = "fetch current conditions"

	start := time.Now()
	defer func() {
		c.metrics.UpstreamDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		c.metrics.UpstreamRequests.WithLabelValues(source, outcome).Inc()
	}()

	params := url.Values{
		"latitude":  {strconv.FormatFloat(lat, 'f', -1, 64)},
		"longitude": {strconv.FormatFloat(lon, 'f', -1, 64)},
		"current":   {currentFields},
		"timezone":  {"auto"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/forecast?"+params.Encode(), nil)
	if err != nil {
		return domain.RawConditions{}, &domain.UpstreamError{Source: source, Op: op, Err: fmt.Errorf("create request: %w", err)}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.RawConditions{}, &domain.UpstreamError{Source: source, Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.RawConditions{}, &domain.UpstreamError{Source: source, Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		// Open-Meteo reports bad coordinates as {"error":true,"reason":"..."}.
		reason := gjson.GetBytes(body, "reason").String()
		if reason == "" {
			reason = string(body)
		}
		return domain.RawConditions{}, &domain.UpstreamError{Source: source, Op: op, StatusCode: resp.StatusCode, Err: errors.New(reason)}
	}

	if !gjson.ValidBytes(body) {
		return domain.RawConditions{}, &domain.UpstreamError{Source: source, Op: op, StatusCode: resp.StatusCode, Err: errors.New("decode response: invalid JSON")}
	}

	current := gjson.GetBytes(body, "current")
	if !current.IsObject() {
		c.logger.Warn("open-meteo response has no current block", "lat", lat, "lon", lon)
	}

	return domain.RawConditions{
		Temperature: optFloat(current.Get("temperature_2m")),
		WindSpeed:   optFloat(current.Get("wind_speed_10m")),
		Humidity:    optFloat(current.Get("relative_humidity_2m")),
		Time:        optString(current.Get("time")),
	}, nil
}

// optFloat reads a numeric field, accepting numeric strings. Anything else is nil.
func optFloat(r gjson.Result) *float64 {
	switch r.Type {
	case gjson.Number:
		v := r.Num
		return &v
	case gjson.String:
		v, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return nil
		}
		return &v
	default:
		return nil
	}
}

func optString(r gjson.Result) *string {
	if r.Type != gjson.String {
		return nil
	}
	s := r.Str
	return &s
}
