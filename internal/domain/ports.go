package domain

import (
	"context"
	"time"
)

// CharacterRegistry fetches raw character and planet records.
type CharacterRegistry interface {
	// FetchByID returns the character with the given registry id.
	FetchByID(ctx context.Context, id int) (RawCharacter, error)

	// FetchByReference dereferences an absolute planet URL.
	FetchByReference(ctx context.Context, ref string) (RawPlanet, error)

	// FetchRandom returns a character picked uniformly from the valid id range.
	FetchRandom(ctx context.Context) (RawCharacter, error)
}

// ConditionsSource fetches current weather for a coordinate pair.
type ConditionsSource interface {
	FetchCurrent(ctx context.Context, lat, lon float64) (RawConditions, error)
}

// Cache is a key-value store with per-entry expiry.
type Cache interface {
	// Get reports ok=false for unknown keys and for entries past their expiry,
	// whether or not the backend has purged them yet.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set overwrites key unconditionally. ttl must be positive.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// GenerateKey joins prefix and parts with ":".
	GenerateKey(prefix string, parts ...string) string
}

// RecordStore persists fused and custom records and lists them newest first.
type RecordStore interface {
	SaveFused(ctx context.Context, rec FusedRecord) error
	SaveCustom(ctx context.Context, rec CustomRecord) error
	History(ctx context.Context, offset, limit int) ([]HistoryRecord, error)
}

// RecordPublisher announces newly served fused records to downstream consumers.
type RecordPublisher interface {
	PublishFused(ctx context.Context, rec FusedRecord) error
}
