package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPagination is returned for a page below 1 or a limit outside 1–100.
	ErrInvalidPagination = errors.New("invalid pagination parameters")

	// ErrInvalidRecord is returned when a record cannot be stored as given.
	ErrInvalidRecord = errors.New("invalid record")
)

// UpstreamError reports a failed call to an external source: transport
// failure, timeout, non-2xx status or an undecodable body.
type UpstreamError struct {
	Source     string // "swapi" or "open-meteo"
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Source, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Source, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// CacheError reports an unreachable or failing cache backend.
type CacheError struct {
	Op  string // "get" or "set"
	Key string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// FusionStage names a step of the fusion pipeline.
type FusionStage string

const (
	StageCacheCheck      FusionStage = "cache_check"
	StageFetchCharacter  FusionStage = "fetch_character"
	StageFetchPlanet     FusionStage = "fetch_planet"
	StageResolveCoords   FusionStage = "resolve_coords"
	StageFetchConditions FusionStage = "fetch_conditions"
	StageNormalize       FusionStage = "normalize"
	StageCacheWrite      FusionStage = "cache_write"
	StageDone            FusionStage = "done"
	StageFailed          FusionStage = "failed"
)

// FusionError is the only error a fusion returns. Stage is where the pipeline
// stopped; Err keeps the root cause for errors.Is / errors.As.
type FusionError struct {
	Stage FusionStage
	Err   error
}

func (e *FusionError) Error() string {
	return fmt.Sprintf("failed to fuse data at %s: %v", e.Stage, e.Err)
}

func (e *FusionError) Unwrap() error { return e.Err }
