package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/couchcryptid/planet-weather-fusion/internal/domain"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// Redis stores entries in Redis with a native TTL. Each value is wrapped in
// an envelope carrying its own expiry so reads stay correct when the server
// clock and ours disagree.
type Redis struct {
	client *redis.Client
	clock  clockwork.Clock
}

type envelope struct {
	Payload   []byte    `json:"payload"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewRedis creates a cache over an existing client.
func NewRedis(client *redis.Client, clock clockwork.Clock) *Redis {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Redis{client: client, clock: clock}
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &domain.CacheError{Op: "get", Key: key, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false, &domain.CacheError{Op: "get", Key: key, Err: fmt.Errorf("decode envelope: %w", err)}
	}
	if !c.clock.Now().Before(env.ExpiresAt) {
		return nil, false, nil
	}
	return env.Payload, true, nil
}

func (c *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return &domain.CacheError{Op: "set", Key: key, Err: errNonPositiveTTL}
	}

	raw, err := json.Marshal(envelope{Payload: value, ExpiresAt: c.clock.Now().Add(ttl).UTC()})
	if err != nil {
		return &domain.CacheError{Op: "set", Key: key, Err: fmt.Errorf("encode envelope: %w", err)}
	}
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return &domain.CacheError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (c *Redis) GenerateKey(prefix string, parts ...string) string {
	return GenerateKey(prefix, parts...)
}

// Ping reports whether Redis is reachable.
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (c *Redis) Close() error {
	return c.client.Close()
}
