package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNormalizeHeight(t *testing.T) {
	tests := []struct {
		name     string
		raw      *string
		expected string
	}{
		{"integer", ptr("172"), "172 cm"},
		{"zero is a value", ptr("0"), "0 cm"},
		{"nil", nil, Unknown},
		{"empty", ptr(""), Unknown},
		{"unknown sentinel", ptr("unknown"), Unknown},
		{"sentinel is case sensitive", ptr("UNKNOWN"), "UNKNOWN"},
		{"decimal is not an integer", ptr("1.72"), "1.72"},
		{"free text", ptr("n/a"), "n/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeHeight(tt.raw))
		})
	}
}

func TestNormalizeMass(t *testing.T) {
	tests := []struct {
		name     string
		raw      *string
		expected string
	}{
		{"integer", ptr("77"), "77 kg"},
		{"decimal", ptr("78.2"), "78.2 kg"},
		{"thousands separator", ptr("1,358"), "1358 kg"},
		{"zero is a value", ptr("0"), "0 kg"},
		{"nil", nil, Unknown},
		{"empty", ptr(""), Unknown},
		{"unknown sentinel", ptr("unknown"), Unknown},
		{"free text", ptr("heavy"), "heavy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeMass(tt.raw))
		})
	}
}

func TestNormalizeDiameter(t *testing.T) {
	tests := []struct {
		name     string
		raw      *string
		expected string
	}{
		{"grouped", ptr("10465"), "10,465 km"},
		{"already grouped", ptr("10,465"), "10,465 km"},
		{"small", ptr("900"), "900 km"},
		{"zero is a value", ptr("0"), "0 km"},
		{"millions", ptr("1234567"), "1,234,567 km"},
		{"unknown sentinel", ptr("unknown"), Unknown},
		{"nil", nil, Unknown},
		{"free text", ptr("varies"), "varies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeDiameter(tt.raw))
		})
	}
}

func TestNormalizePopulation(t *testing.T) {
	tests := []struct {
		name     string
		raw      *string
		expected string
	}{
		{"grouped", ptr("200000"), "200,000"},
		{"trillion", ptr("1000000000000"), "1,000,000,000,000"},
		{"three digits", ptr("100"), "100"},
		{"four digits", ptr("1000"), "1,000"},
		{"unknown sentinel", ptr("unknown"), Unknown},
		{"empty", ptr(""), Unknown},
		{"free text", ptr("n/a"), "n/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePopulation(tt.raw))
		})
	}
}

func TestNormalizeMeasure(t *testing.T) {
	tests := []struct {
		name     string
		raw      *float64
		expected float64
	}{
		{"rounds down", ptr(25.54), 25.5},
		{"rounds wind", ptr(10.21), 10.2},
		{"half away from zero", ptr(0.25), 0.3},
		{"negative half away from zero", ptr(-0.25), -0.3},
		{"negative", ptr(-12.34), -12.3},
		{"zero", ptr(0.0), 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeMeasure(tt.raw))
		})
	}
}

func TestNormalizeObservationTime(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-01-01T09:15", NormalizeObservationTime(ptr("2024-01-01T09:15"), now))
	assert.Equal(t, "2024-01-01T12:00:00.000Z", NormalizeObservationTime(nil, now))
	assert.Equal(t, "2024-01-01T12:00:00.000Z", NormalizeObservationTime(ptr(""), now))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "male", NormalizeText(ptr("male")))
	assert.Equal(t, "unknown", NormalizeText(ptr("unknown")))
	assert.Equal(t, Unknown, NormalizeText(ptr("")))
	assert.Equal(t, Unknown, NormalizeText(nil))
}

func TestNormalizeCharacter_MissingFields(t *testing.T) {
	c := NormalizeCharacter(RawCharacter{})

	assert.Equal(t, Character{
		Name:      Unknown,
		Height:    Unknown,
		Mass:      Unknown,
		BirthYear: Unknown,
		Gender:    Unknown,
		Homeworld: Unknown,
		URL:       "",
	}, c)
}

func TestNormalizePlanet_MissingFields(t *testing.T) {
	p := NormalizePlanet(RawPlanet{Name: ptr("Hoth")})

	assert.Equal(t, "Hoth", p.Name)
	assert.Equal(t, Unknown, p.Diameter)
	assert.Equal(t, Unknown, p.Climate)
	assert.Equal(t, Unknown, p.Terrain)
	assert.Equal(t, Unknown, p.Population)
	assert.Empty(t, p.URL)
}

func TestNormalizeConditions_KeepsZeroHumidity(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NormalizeConditions(RawConditions{Humidity: ptr(0.0)}, now)

	if assert.NotNil(t, c.Humidity) {
		assert.Equal(t, 0.0, *c.Humidity)
	}
	assert.Equal(t, 0.0, c.Temperature)
	assert.Equal(t, 0.0, c.WindSpeed)
	assert.Equal(t, "2024-01-01T12:00:00.000Z", c.Time)
}

func TestNormalizeGrouping(t *testing.T) {
	tests := []struct {
		raw        string
		population string
		diameter   string
	}{
		{"0", "0", "0 km"},
		{"999", "999", "999 km"},
		{"12345", "12,345", "12,345 km"},
		{"123456", "123,456", "123,456 km"},
		{"1000000000", "1,000,000,000", "1,000,000,000 km"},
		{"-1000", "-1,000", "-1,000 km"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.population, NormalizePopulation(ptr(tt.raw)))
			assert.Equal(t, tt.diameter, NormalizeDiameter(ptr(tt.raw)))
		})
	}
}

func TestNormalizeMeasure_NoNegativeZero(t *testing.T) {
	got := NormalizeMeasure(ptr(-0.04))
	assert.False(t, math.Signbit(got))

	b, err := json.Marshal(Conditions{Temperature: got})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"temperature":0,`)
}
