package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// RawCharacter holds a SWAPI person exactly as received.
// A nil field was missing or null in the payload.
type RawCharacter struct {
	Name      *string
	Height    *string
	Mass      *string
	BirthYear *string
	Gender    *string
	Homeworld *string // absolute URL of the planet record
	URL       *string
}

// RawPlanet holds a SWAPI planet exactly as received.
type RawPlanet struct {
	Name       *string
	Diameter   *string
	Climate    *string
	Terrain    *string
	Population *string
	URL        *string
}

// RawConditions holds the Open-Meteo "current" block exactly as received.
type RawConditions struct {
	Temperature *float64 // temperature_2m, °C
	WindSpeed   *float64 // wind_speed_10m, km/h
	Humidity    *float64 // relative_humidity_2m, %
	Time        *string
}

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Character is the normalized character.
type Character struct {
	Name      string `json:"name"`
	Height    string `json:"height"`
	Mass      string `json:"mass"`
	BirthYear string `json:"birth_year"`
	Gender    string `json:"gender"`
	Homeworld string `json:"homeworld"`
	URL       string `json:"url"`
}

// Planet is the normalized homeworld.
type Planet struct {
	Name       string `json:"name"`
	Diameter   string `json:"diameter"`
	Climate    string `json:"climate"`
	Terrain    string `json:"terrain"`
	Population string `json:"population"`
	URL        string `json:"url"`
}

// Conditions is the normalized weather at the homeworld's mapped coordinates.
type Conditions struct {
	Temperature float64  `json:"temperature"`
	WindSpeed   float64  `json:"windSpeed"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Time        string   `json:"time"`
}

// FusedRecord combines a character, its homeworld and the current conditions
// there. It is built once per successful fusion and never modified afterwards.
type FusedRecord struct {
	ID        string     `json:"id"`
	Character Character  `json:"character"`
	Planet    Planet     `json:"planet"`
	Weather   Conditions `json:"weather"`
	FusedAt   string     `json:"fusedAt"`
}

// CustomInput is the caller-supplied part of a custom record.
type CustomInput struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data"`
}

// CustomRecord is an arbitrary JSON document stored next to fused records.
type CustomRecord struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data"`
	CreatedAt   string         `json:"createdAt"`
}

// RecordType distinguishes entries in the history.
type RecordType string

const (
	RecordTypeFused  RecordType = "fused"
	RecordTypeCustom RecordType = "custom"
)

// HistoryRecord is one persisted entry, fused or custom.
type HistoryRecord struct {
	ID        string          `json:"id"`
	Type      RecordType      `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Pagination describes a history page.
type Pagination struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

// HistoryPage is a slice of the history, newest first.
type HistoryPage struct {
	Records    []HistoryRecord `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// TimestampLayout is ISO-8601 with millisecond precision, always rendered in UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatTimestamp renders t with [TimestampLayout] in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// NewFusedRecord normalizes the three raw payloads into a FusedRecord.
func NewFusedRecord(id string, now time.Time, character RawCharacter, planet RawPlanet, conditions RawConditions) FusedRecord {
	return FusedRecord{
		ID:        id,
		Character: NormalizeCharacter(character),
		Planet:    NormalizePlanet(planet),
		Weather:   NormalizeConditions(conditions, now),
		FusedAt:   FormatTimestamp(now),
	}
}

// HistoryRecord wraps the fused record for persistence.
func (r FusedRecord) HistoryRecord() (HistoryRecord, error) {
	return newHistoryRecord(RecordTypeFused, r.ID, r.FusedAt, r)
}

// HistoryRecord wraps the custom record for persistence.
func (r CustomRecord) HistoryRecord() (HistoryRecord, error) {
	return newHistoryRecord(RecordTypeCustom, r.ID, r.CreatedAt, r)
}

func newHistoryRecord(kind RecordType, id, timestamp string, payload any) (HistoryRecord, error) {
	if id == "" {
		return HistoryRecord{}, fmt.Errorf("%w: %s record has no id", ErrInvalidRecord, kind)
	}
	ts, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return HistoryRecord{}, fmt.Errorf("%w: %s record %s timestamp: %v", ErrInvalidRecord, kind, id, err)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return HistoryRecord{}, fmt.Errorf("marshal %s record %s: %w", kind, id, err)
	}
	return HistoryRecord{ID: id, Type: kind, Data: data, Timestamp: ts.UTC()}, nil
}
