package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Cache and store backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// SWAPI character registry.
	SwapiBaseURL        string
	SwapiTimeout        time.Duration
	SwapiMaxCharacterID int

	// Open-Meteo conditions source.
	OpenMeteoBaseURL string
	OpenMeteoTimeout time.Duration

	// Fusion cache.
	FusionCacheTTL  time.Duration
	CacheBackend    string
	CacheMaxEntries int
	RedisURL        string

	// History store.
	StoreBackend string
	DatabaseURL  string

	// Fused record stream.
	KafkaEnabled    bool
	KafkaBrokers    []string
	KafkaFusedTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	swapiTimeout, err := parseDuration("SWAPI_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	openMeteoTimeout, err := parseDuration("OPEN_METEO_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("FUSION_CACHE_TTL", "30m")
	if err != nil {
		return nil, err
	}
	maxCharacterID, err := parsePositiveInt("SWAPI_MAX_CHARACTER_ID", 83)
	if err != nil {
		return nil, err
	}
	cacheMaxEntries, err := parsePositiveInt("CACHE_MAX_ENTRIES", 1000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SwapiBaseURL:        sharedcfg.EnvOrDefault("SWAPI_BASE_URL", "https://swapi.info/api"),
		SwapiTimeout:        swapiTimeout,
		SwapiMaxCharacterID: maxCharacterID,

		OpenMeteoBaseURL: sharedcfg.EnvOrDefault("OPEN_METEO_BASE_URL", "https://api.open-meteo.com/v1"),
		OpenMeteoTimeout: openMeteoTimeout,

		FusionCacheTTL:  cacheTTL,
		CacheBackend:    sharedcfg.EnvOrDefault("CACHE_BACKEND", BackendMemory),
		CacheMaxEntries: cacheMaxEntries,
		RedisURL:        os.Getenv("REDIS_URL"),

		StoreBackend: sharedcfg.EnvOrDefault("STORE_BACKEND", BackendMemory),
		DatabaseURL:  os.Getenv("DATABASE_URL"),

		KafkaEnabled:    os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:    sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaFusedTopic: sharedcfg.EnvOrDefault("KAFKA_FUSED_TOPIC", "fused-records"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.CacheBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisURL == "" {
			return errors.New("CACHE_BACKEND is redis but REDIS_URL is not set")
		}
	default:
		return fmt.Errorf("invalid CACHE_BACKEND %q", c.CacheBackend)
	}

	switch c.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("STORE_BACKEND is postgres but DATABASE_URL is not set")
		}
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q", c.StoreBackend)
	}

	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if c.KafkaFusedTopic == "" {
			return errors.New("KAFKA_FUSED_TOPIC is required when KAFKA_ENABLED is true")
		}
	}
	return nil
}

func parseDuration(name, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return d, nil
}

func parsePositiveInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return n, nil
}
