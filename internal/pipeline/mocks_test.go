package pipeline_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/planet-weather-fusion/internal/adapter/cache"
	"github.com/couchcryptid/planet-weather-fusion/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// sequentialIDs returns "id-1", "id-2", ...
func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("id-%d", n.Add(1))
	}
}

func lukeCharacter() domain.RawCharacter {
	return domain.RawCharacter{
		Name:      ptr("Luke Skywalker"),
		Height:    ptr("172"),
		Mass:      ptr("77"),
		BirthYear: ptr("19BBY"),
		Gender:    ptr("male"),
		Homeworld: ptr("https://swapi.info/api/planets/1"),
		URL:       ptr("https://swapi.info/api/people/1"),
	}
}

func tatooine() domain.RawPlanet {
	return domain.RawPlanet{
		Name:       ptr("Tatooine"),
		Diameter:   ptr("10465"),
		Climate:    ptr("arid"),
		Terrain:    ptr("desert"),
		Population: ptr("200000"),
		URL:        ptr("https://swapi.info/api/planets/1"),
	}
}

func sunnyConditions() domain.RawConditions {
	return domain.RawConditions{
		Temperature: ptr(25.54),
		WindSpeed:   ptr(10.21),
		Humidity:    ptr(45.0),
		Time:        ptr("2024-05-04T12:00"),
	}
}

// --- mocks ---

type mockRegistry struct {
	character   domain.RawCharacter
	planet      domain.RawPlanet
	randomErr   error
	planetErr   error
	gate        chan struct{} // when set, FetchRandom blocks until it is closed
	randomCalls atomic.Int64

	mu      sync.Mutex
	gotRefs []string
}

func (m *mockRegistry) FetchByID(_ context.Context, _ int) (domain.RawCharacter, error) {
	return m.character, m.randomErr
}

func (m *mockRegistry) FetchByReference(_ context.Context, ref string) (domain.RawPlanet, error) {
	m.mu.Lock()
	m.gotRefs = append(m.gotRefs, ref)
	m.mu.Unlock()
	return m.planet, m.planetErr
}

func (m *mockRegistry) FetchRandom(_ context.Context) (domain.RawCharacter, error) {
	m.randomCalls.Add(1)
	if m.gate != nil {
		<-m.gate
	}
	return m.character, m.randomErr
}

type mockConditions struct {
	raw domain.RawConditions
	err error

	mu     sync.Mutex
	calls  int
	gotLat float64
	gotLon float64
}

func (m *mockConditions) FetchCurrent(_ context.Context, lat, lon float64) (domain.RawConditions, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.gotLat, m.gotLon = lat, lon
	return m.raw, m.err
}

// faultyCache wraps a real cache and injects errors.
type faultyCache struct {
	*cache.Memory
	getErr error
	setErr error
}

func (c *faultyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.getErr != nil {
		return nil, false, &domain.CacheError{Op: "get", Key: key, Err: c.getErr}
	}
	return c.Memory.Get(ctx, key)
}

func (c *faultyCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.setErr != nil {
		return &domain.CacheError{Op: "set", Key: key, Err: c.setErr}
	}
	return c.Memory.Set(ctx, key, value, ttl)
}

func (c *faultyCache) Ping(context.Context) error {
	return c.getErr
}

type mockPublisher struct {
	err       error
	published []domain.FusedRecord
}

func (m *mockPublisher) PublishFused(_ context.Context, rec domain.FusedRecord) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, rec)
	return nil
}

// failingStore rejects every write and listing.
type failingStore struct {
	err error
}

func (s failingStore) SaveFused(context.Context, domain.FusedRecord) error   { return s.err }
func (s failingStore) SaveCustom(context.Context, domain.CustomRecord) error { return s.err }
func (s failingStore) History(context.Context, int, int) ([]domain.HistoryRecord, error) {
	return nil, s.err
}
func (s failingStore) Ping(context.Context) error { return s.err }
