//go:build smoke

package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/planet-weather-fusion/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the live Open-Meteo API.
// Run with: go test -tags=smoke ./internal/adapter/openmeteo/ -v -count=1

func TestSmoke_FetchCurrent(t *testing.T) {
	c := NewClient("https://api.open-meteo.com/v1", 10*time.Second,
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	// Tatooine maps to Atlanta.
	raw, err := c.FetchCurrent(context.Background(), 33.7490, -84.3880)
	require.NoError(t, err)

	require.NotNil(t, raw.Temperature)
	require.NotNil(t, raw.WindSpeed)
	assert.InDelta(t, 15, *raw.Temperature, 50, "temperature should be plausible")
	assert.GreaterOrEqual(t, *raw.WindSpeed, 0.0)
	assert.NotNil(t, raw.Time)
}
