// Command fuse runs one fusion against the live upstream APIs and prints the
// record as JSON. With -check it also verifies the normalization rules on the
// result and exits non-zero on any violation.
//
// Usage:
//
//	go run ./cmd/fuse -character 1 -check
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/couchcryptid/planet-weather-fusion/internal/adapter/cache"
	"github.com/couchcryptid/planet-weather-fusion/internal/adapter/openmeteo"
	"github.com/couchcryptid/planet-weather-fusion/internal/adapter/swapi"
	"github.com/couchcryptid/planet-weather-fusion/internal/domain"
	"github.com/couchcryptid/planet-weather-fusion/internal/observability"
	"github.com/couchcryptid/planet-weather-fusion/internal/pipeline"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// fixedCharacter makes FetchRandom always return one character id.
type fixedCharacter struct {
	domain.CharacterRegistry
	id int
}

func (f fixedCharacter) FetchRandom(ctx context.Context) (domain.RawCharacter, error) {
	return f.CharacterRegistry.FetchByID(ctx, f.id)
}

func main() {
	swapiURL := flag.String("swapi", sharedcfg.EnvOrDefault("SWAPI_BASE_URL", "https://swapi.info/api"), "SWAPI base URL")
	meteoURL := flag.String("open-meteo", sharedcfg.EnvOrDefault("OPEN_METEO_BASE_URL", "https://api.open-meteo.com/v1"), "Open-Meteo base URL")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request upstream timeout")
	characterID := flag.Int("character", 0, "character id to fuse (0 picks one at random)")
	check := flag.Bool("check", false, "verify normalization rules on the result")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	os.Exit(run(*swapiURL, *meteoURL, *timeout, *characterID, *check, *logLevel))
}

func run(swapiURL, meteoURL string, timeout time.Duration, characterID int, check bool, logLevel string) int {
	logger := observability.NewLogger(logLevel, "text")
	// Unregistered: nothing scrapes a one-shot run.
	metrics := observability.NewMetricsForTesting()

	var registry domain.CharacterRegistry = swapi.NewClient(swapiURL, timeout, swapi.DefaultMaxCharacterID, metrics, logger)
	if characterID > 0 {
		registry = fixedCharacter{CharacterRegistry: registry, id: characterID}
	}
	conditions := openmeteo.NewClient(meteoURL, timeout, metrics, logger)
	fuser := pipeline.NewFuser(registry, conditions, cache.NewMemory(1, nil), metrics, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 3*timeout)
	defer cancel()

	rec, err := fuser.Fuse(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rec); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: encode record: %v\n", err)
		return 1
	}

	if !check {
		return 0
	}
	return report(checkRecord(rec))
}

func report(phases []*phase) int {
	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-32s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll checks passed.")
		return 0
	}
	fmt.Println("\nCheck FAILED.")
	return 1
}
