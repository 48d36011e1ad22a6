package domain

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Unknown is the display value for absent or unrecorded fields.
const Unknown = "Unknown"

// unknownSentinel is SWAPI's marker for a value that was never recorded.
const unknownSentinel = "unknown"

// grouping renders integers with en-US thousands separators.
var grouping = message.NewPrinter(language.AmericanEnglish)

// NormalizeCharacter converts a raw SWAPI person into a Character.
func NormalizeCharacter(raw RawCharacter) Character {
	return Character{
		Name:      NormalizeText(raw.Name),
		Height:    NormalizeHeight(raw.Height),
		Mass:      NormalizeMass(raw.Mass),
		BirthYear: NormalizeText(raw.BirthYear),
		Gender:    NormalizeText(raw.Gender),
		Homeworld: NormalizeText(raw.Homeworld),
		URL:       valueOrEmpty(raw.URL),
	}
}

// NormalizePlanet converts a raw SWAPI planet into a Planet.
func NormalizePlanet(raw RawPlanet) Planet {
	return Planet{
		Name:       NormalizeText(raw.Name),
		Diameter:   NormalizeDiameter(raw.Diameter),
		Climate:    NormalizeText(raw.Climate),
		Terrain:    NormalizeText(raw.Terrain),
		Population: NormalizePopulation(raw.Population),
		URL:        valueOrEmpty(raw.URL),
	}
}

// NormalizeConditions converts the raw Open-Meteo block into Conditions.
// now fills in the observation time when the source omits it.
func NormalizeConditions(raw RawConditions, now time.Time) Conditions {
	return Conditions{
		Temperature: NormalizeMeasure(raw.Temperature),
		WindSpeed:   NormalizeMeasure(raw.WindSpeed),
		Humidity:    raw.Humidity,
		Time:        NormalizeObservationTime(raw.Time, now),
	}
}

// NormalizeText returns the value, or Unknown when it is absent or empty.
func NormalizeText(v *string) string {
	if v == nil || *v == "" {
		return Unknown
	}
	return *v
}

// NormalizeHeight renders an integer height in centimetres, e.g. "172" -> "172 cm".
func NormalizeHeight(v *string) string {
	if isUnrecorded(v) {
		return Unknown
	}
	n, err := strconv.ParseInt(strings.TrimSpace(*v), 10, 64)
	if err != nil {
		return *v
	}
	return strconv.FormatInt(n, 10) + " cm"
}

// NormalizeMass renders a mass in kilograms, e.g. "1,358" -> "1358 kg".
func NormalizeMass(v *string) string {
	if isUnrecorded(v) {
		return Unknown
	}
	f, err := strconv.ParseFloat(stripSeparators(*v), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return *v
	}
	return strconv.FormatFloat(f, 'f', -1, 64) + " kg"
}

// NormalizeDiameter renders a grouped diameter in kilometres, e.g. "10465" -> "10,465 km".
func NormalizeDiameter(v *string) string {
	if isUnrecorded(v) {
		return Unknown
	}
	n, err := strconv.ParseInt(stripSeparators(*v), 10, 64)
	if err != nil {
		return *v
	}
	return grouping.Sprintf("%d km", n)
}

// NormalizePopulation renders a grouped head count, e.g. "200000" -> "200,000".
func NormalizePopulation(v *string) string {
	if isUnrecorded(v) {
		return Unknown
	}
	n, err := strconv.ParseInt(stripSeparators(*v), 10, 64)
	if err != nil {
		return *v
	}
	return grouping.Sprintf("%d", n)
}

// NormalizeMeasure rounds a temperature or wind speed to one decimal place,
// half away from zero. Absent readings become 0.
func NormalizeMeasure(v *float64) float64 {
	if v == nil {
		return 0
	}
	r := math.Round(*v*10) / 10
	if r == 0 {
		return 0 // drop the sign of -0
	}
	return r
}

// NormalizeObservationTime passes the source time through, substituting now
// (ISO-8601, UTC) when it is absent or empty.
func NormalizeObservationTime(v *string, now time.Time) string {
	if v == nil || *v == "" {
		return FormatTimestamp(now)
	}
	return *v
}

func isUnrecorded(v *string) bool {
	return v == nil || *v == "" || *v == unknownSentinel
}

func valueOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func stripSeparators(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", "")
}
