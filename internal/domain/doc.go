// Package domain models the planet weather fusion record and the rules for
// turning raw upstream payloads into it.
//
// # Data Sources
//
// Characters and planets come from the Star Wars API (SWAPI), by default the
// https://swapi.info/api mirror. Current conditions come from the Open-Meteo
// forecast API (https://api.open-meteo.com/v1/forecast), queried for the Earth
// coordinates that stand in for the character's homeworld.
//
// # SWAPI Data Conventions
//
// Every field is a loosely-typed string, even numeric ones:
//
//	{"name":"Luke Skywalker","height":"172","mass":"77","birth_year":"19BBY",
//	 "gender":"male","homeworld":"https://swapi.info/api/planets/1", ...}
//
// Numeric fields may contain thousands separators ("1,358") and the sentinel
// "unknown" for values that were never recorded. Some records use free text
// instead ("n/a", "indefinite"); those are passed through unchanged.
//
// The homeworld field is an absolute URL reference to the planet record, not
// an id. Character ids are 1-based and contiguous up to 83 on the default
// mirror.
//
// # Open-Meteo Data Conventions
//
// Current conditions live under the nested "current" object:
//
//	{"current":{"time":"2024-01-01T12:00","temperature_2m":25.54,
//	            "wind_speed_10m":10.21,"relative_humidity_2m":45}}
//
// Any of these fields may be missing or null. The observation time is local to
// the queried coordinates (timezone=auto) and carries no offset.
//
// # Normalization Rules
//
//	height      "172"     -> "172 cm"      integer parse
//	mass        "1,358"   -> "1358 kg"     separators stripped, float parse
//	diameter    "10465"   -> "10,465 km"   separators stripped, integer parse, grouped
//	population  "200000"  -> "200,000"    separators stripped, integer parse, grouped
//
// Absent, empty and "unknown" values become "Unknown". Values that fail to
// parse are returned exactly as received. Temperature and wind speed are
// rounded to one decimal place (half away from zero) and default to 0 when
// absent; a reported 0 is a real reading, not an absence.
//
// # Coordinates
//
// Planets are mapped onto Earth locations with a similar climate, e.g.
// Tatooine onto Atlanta and Hoth onto the Arctic. Planets outside the table
// resolve to Berlin (52.52, 13.41). See [ResolveCoordinates].
package domain
