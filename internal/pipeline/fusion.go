package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/planet-weather-fusion/internal/domain"
	"github.com/couchcryptid/planet-weather-fusion/internal/observability"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultFusionTTL is how long a computed record is served from cache.
	DefaultFusionTTL = 30 * time.Minute

	fusionKeyPrefix = "fusion"
	fusionKeyScope  = "random"
	dayLayout       = "2006-01-02"
)

var errNoHomeworld = errors.New("character has no homeworld reference")

// Fuser combines a random character, its homeworld and the current weather at
// that homeworld's mapped coordinates into one record.
//
// Records are cached under a key that changes once per calendar day but
// expire after the TTL, so a later call on the same day recomputes with a new
// random character and replaces the cached value.
type Fuser struct {
	registry   domain.CharacterRegistry
	conditions domain.ConditionsSource
	cache      domain.Cache
	metrics    *observability.Metrics
	logger     *slog.Logger

	clock clockwork.Clock
	ttl   time.Duration
	newID func() string

	group singleflight.Group
}

// FuserOption configures a Fuser.
type FuserOption func(*Fuser)

// WithClock sets the clock used for the cache key date and record timestamps.
func WithClock(clock clockwork.Clock) FuserOption {
	return func(f *Fuser) {
		if clock != nil {
			f.clock = clock
		}
	}
}

// WithTTL sets the cache lifetime of a computed record. Non-positive values
// are ignored.
func WithTTL(ttl time.Duration) FuserOption {
	return func(f *Fuser) {
		if ttl > 0 {
			f.ttl = ttl
		}
	}
}

// WithIDGenerator replaces the UUID generator for record ids.
func WithIDGenerator(newID func() string) FuserOption {
	return func(f *Fuser) {
		if newID != nil {
			f.newID = newID
		}
	}
}

// NewFuser creates a Fuser over the given sources and cache.
func NewFuser(registry domain.CharacterRegistry, conditions domain.ConditionsSource, cache domain.Cache, metrics *observability.Metrics, logger *slog.Logger, opts ...FuserOption) *Fuser {
	f := &Fuser{
		registry:   registry,
		conditions: conditions,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		clock:      clockwork.NewRealClock(),
		ttl:        DefaultFusionTTL,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fuse returns today's cached record or computes a new one. Every error is a
// *domain.FusionError.
func (f *Fuser) Fuse(ctx context.Context) (rec domain.FusedRecord, err error) {
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		f.metrics.FusionRequests.WithLabelValues(outcome).Inc()
	}()

	key := f.cacheKey()
	if rec, ok := f.lookup(ctx, key); ok {
		return rec, nil
	}

	// Concurrent misses share one computation. It runs detached from the
	// first caller's cancellation; upstream client timeouts still bound it.
	detached := context.WithoutCancel(ctx)
	ch := f.group.DoChan(key, func() (any, error) {
		// A flight that finished between our lookup and DoChan has already
		// written the entry.
		if rec, ok, err := f.cached(detached, key); err == nil && ok {
			return rec, nil
		}
		return f.compute(detached, key)
	})

	select {
	case <-ctx.Done():
		return domain.FusedRecord{}, &domain.FusionError{Stage: domain.StageFailed, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return domain.FusedRecord{}, res.Err
		}
		if res.Shared {
			f.logger.Debug("fusion shared with concurrent caller", "key", key)
		}
		return res.Val.(domain.FusedRecord), nil
	}
}

func (f *Fuser) cacheKey() string {
	return f.cache.GenerateKey(fusionKeyPrefix, fusionKeyScope, f.clock.Now().Format(dayLayout))
}

// lookup reports a cached record. A failing cache or an undecodable entry is
// logged and treated as a miss.
func (f *Fuser) lookup(ctx context.Context, key string) (domain.FusedRecord, bool) {
	start := f.clock.Now()
	defer f.observe(domain.StageCacheCheck, start)

	rec, ok, err := f.cached(ctx, key)
	switch {
	case err != nil:
		f.logger.Warn("fusion cache unusable, recomputing", "key", key, "error", err)
		f.metrics.FusionCache.WithLabelValues("error").Inc()
		return domain.FusedRecord{}, false
	case !ok:
		f.metrics.FusionCache.WithLabelValues("miss").Inc()
		return domain.FusedRecord{}, false
	}
	f.metrics.FusionCache.WithLabelValues("hit").Inc()
	f.logger.Debug("fusion cache hit", "key", key, "id", rec.ID)
	return rec, true
}

func (f *Fuser) cached(ctx context.Context, key string) (domain.FusedRecord, bool, error) {
	payload, ok, err := f.cache.Get(ctx, key)
	if err != nil || !ok {
		return domain.FusedRecord{}, false, err
	}
	var rec domain.FusedRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return domain.FusedRecord{}, false, fmt.Errorf("decode cached record: %w", err)
	}
	return rec, true, nil
}

func (f *Fuser) compute(ctx context.Context, key string) (domain.FusedRecord, error) {
	var (
		character  domain.RawCharacter
		planet     domain.RawPlanet
		coords     domain.Coordinates
		conditions domain.RawConditions
		rec        domain.FusedRecord
		payload    []byte
	)

	steps := []struct {
		stage domain.FusionStage
		run   func() error
	}{
		{domain.StageFetchCharacter, func() (err error) {
			character, err = f.registry.FetchRandom(ctx)
			return err
		}},
		{domain.StageFetchPlanet, func() (err error) {
			if character.Homeworld == nil || *character.Homeworld == "" {
				return errNoHomeworld
			}
			planet, err = f.registry.FetchByReference(ctx, *character.Homeworld)
			return err
		}},
		{domain.StageResolveCoords, func() error {
			coords = domain.ResolveCoordinates(domain.NormalizeText(planet.Name))
			return nil
		}},
		{domain.StageFetchConditions, func() (err error) {
			conditions, err = f.conditions.FetchCurrent(ctx, coords.Latitude, coords.Longitude)
			return err
		}},
		{domain.StageNormalize, func() (err error) {
			rec = domain.NewFusedRecord(f.newID(), f.clock.Now(), character, planet, conditions)
			payload, err = json.Marshal(rec)
			return err
		}},
		{domain.StageCacheWrite, func() error {
			return f.cache.Set(ctx, key, payload, f.ttl)
		}},
	}

	for _, s := range steps {
		if err := f.step(s.stage, s.run); err != nil {
			f.logger.Error("fusion failed", "stage", s.stage, "error", err)
			return domain.FusedRecord{}, err
		}
	}

	f.logger.Info("fusion computed",
		"key", key,
		"id", rec.ID,
		"character", rec.Character.Name,
		"planet", rec.Planet.Name,
		"lat", coords.Latitude,
		"lon", coords.Longitude,
	)
	return rec, nil
}

// step runs one stage, timing it and wrapping any failure with the stage.
func (f *Fuser) step(stage domain.FusionStage, run func() error) error {
	start := f.clock.Now()
	defer f.observe(stage, start)

	f.logger.Debug("fusion stage", "stage", stage)
	if err := run(); err != nil {
		return &domain.FusionError{Stage: stage, Err: err}
	}
	return nil
}

func (f *Fuser) observe(stage domain.FusionStage, start time.Time) {
	f.metrics.FusionStageDuration.WithLabelValues(string(stage)).Observe(f.clock.Since(start).Seconds())
}
