package domain

// DefaultCoordinates is where planets missing from the table resolve (Berlin).
var DefaultCoordinates = Coordinates{Latitude: 52.52, Longitude: 13.41}

// planetCoordinates maps planets onto Earth locations with a comparable
// climate. Read-only after package init.
var planetCoordinates = map[string]Coordinates{
	"Tatooine":  {Latitude: 33.7490, Longitude: -84.3880},  // desert, Atlanta
	"Alderaan":  {Latitude: 46.2276, Longitude: 2.2137},    // temperate, France
	"Yavin IV":  {Latitude: -3.4653, Longitude: -62.2159},  // jungle, Amazon
	"Hoth":      {Latitude: 71.0486, Longitude: -8.0752},   // ice, Arctic
	"Dagobah":   {Latitude: 25.7617, Longitude: -80.1918},  // swamp, Everglades
	"Bespin":    {Latitude: 40.7128, Longitude: -74.0060},  // cloud city, New York
	"Endor":     {Latitude: 47.7511, Longitude: -120.7401}, // forest, Washington
	"Naboo":     {Latitude: 45.4642, Longitude: 9.1900},    // Italy
	"Coruscant": {Latitude: 35.6762, Longitude: 139.6503},  // city planet, Tokyo
	"Kamino":    {Latitude: -41.2865, Longitude: 174.7762}, // ocean, New Zealand
}

// ResolveCoordinates returns the Earth coordinates standing in for a planet.
// Matching is exact; unknown names get DefaultCoordinates.
func ResolveCoordinates(planetName string) Coordinates {
	if c, ok := planetCoordinates[planetName]; ok {
		return c
	}
	return DefaultCoordinates
}
