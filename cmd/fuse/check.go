package main

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/couchcryptid/planet-weather-fusion/internal/domain"
)

// phase tracks pass/fail for a group of checks.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

var (
	heightPattern   = regexp.MustCompile(`^\d+ cm$`)
	massPattern     = regexp.MustCompile(`^\d+(\.\d+)? kg$`)
	diameterPattern = regexp.MustCompile(`^\d{1,3}(,\d{3})* km$`)
	groupedPattern  = regexp.MustCompile(`^\d{1,3}(,\d{3})*$`)
	digitsPattern   = regexp.MustCompile(`^[\d,]+$`)
)

func checkRecord(rec domain.FusedRecord) []*phase {
	return []*phase{
		checkEnvelope(rec),
		checkCharacter(rec.Character),
		checkPlanet(rec.Planet),
		checkWeather(rec.Weather),
	}
}

func checkEnvelope(rec domain.FusedRecord) *phase {
	p := &phase{name: "Record envelope"}
	if rec.ID == "" {
		p.errorf("id is empty")
	}
	if _, err := time.Parse(time.RFC3339, rec.FusedAt); err != nil {
		p.errorf("fusedAt %q is not RFC 3339: %v", rec.FusedAt, err)
	}
	return p
}

func checkCharacter(c domain.Character) *phase {
	p := &phase{name: "Character normalization"}
	requireText(p, "name", c.Name)
	requireText(p, "birth_year", c.BirthYear)
	requireText(p, "gender", c.Gender)
	requireText(p, "homeworld", c.Homeworld)
	requireUnit(p, "height", c.Height, " cm", heightPattern)
	requireUnit(p, "mass", c.Mass, " kg", massPattern)
	return p
}

func checkPlanet(pl domain.Planet) *phase {
	p := &phase{name: "Planet normalization"}
	requireText(p, "name", pl.Name)
	requireText(p, "climate", pl.Climate)
	requireText(p, "terrain", pl.Terrain)
	requireUnit(p, "diameter", pl.Diameter, " km", diameterPattern)
	requireMeasured(p, "population", pl.Population)
	if digitsPattern.MatchString(pl.Population) && !groupedPattern.MatchString(pl.Population) {
		p.errorf("population %q is not grouped by thousands", pl.Population)
	}
	return p
}

func checkWeather(w domain.Conditions) *phase {
	p := &phase{name: "Weather normalization"}
	for name, v := range map[string]float64{"temperature": w.Temperature, "windSpeed": w.WindSpeed} {
		if math.Round(v*10)/10 != v {
			p.errorf("%s %g is not rounded to one decimal", name, v)
		}
	}
	if w.Humidity != nil && (*w.Humidity < 0 || *w.Humidity > 100) {
		p.errorf("humidity %g outside 0-100", *w.Humidity)
	}
	if w.Time == "" {
		p.errorf("time is empty")
	}
	return p
}

// requireText flags empty values. Free text passes SWAPI's "unknown" through.
func requireText(p *phase, field, v string) {
	if v == "" {
		p.errorf("%s is empty (expected a value or %q)", field, domain.Unknown)
	}
}

// requireMeasured additionally rejects the raw sentinel, which measured
// fields replace with Unknown.
func requireMeasured(p *phase, field, v string) {
	requireText(p, field, v)
	if v == "unknown" {
		p.errorf("%s kept the raw %q sentinel", field, v)
	}
}

// requireUnit accepts Unknown, a well-formed value with the unit suffix, or an
// unparseable raw value passed through without the suffix.
func requireUnit(p *phase, field, v, unit string, pattern *regexp.Regexp) {
	requireMeasured(p, field, v)
	if strings.HasSuffix(v, unit) && !pattern.MatchString(v) {
		p.errorf("%s %q is malformed", field, v)
	}
}
