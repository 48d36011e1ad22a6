package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		planet   string
		expected Coordinates
	}{
		{"tatooine", "Tatooine", Coordinates{Latitude: 33.7490, Longitude: -84.3880}},
		{"hoth", "Hoth", Coordinates{Latitude: 71.0486, Longitude: -8.0752}},
		{"multi-word name", "Yavin IV", Coordinates{Latitude: -3.4653, Longitude: -62.2159}},
		{"unknown planet", "Mustafar", Coordinates{Latitude: 52.52, Longitude: 13.41}},
		{"empty name", "", DefaultCoordinates},
		{"case sensitive", "tatooine", DefaultCoordinates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveCoordinates(tt.planet))
		})
	}
}
