// Package config loads the process configuration from a TOML file and
// overlays environment variables on top.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/naoina/toml"
)

// tomlSettings keeps TOML keys identical to Go struct field names, so
// config files read like the Go types they decode into.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		link := ""
		if unicode.IsUpper(rune(rt.Name()[0])) {
			link = fmt.Sprintf(" (see %s)", rt.String())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

// Postgres holds the repository connection settings.
type Postgres struct {
	URL  string
	Pool int
}

// Redis holds the cache connection settings.
type Redis struct {
	URL string
}

// RabbitRetry is the per-attempt retry policy for the
// broker: rabbitmq.retry.delay / rabbitmq.retry.timeout.
type RabbitRetry struct {
	Delay   time.Duration
	Timeout time.Duration
}

// Rabbit holds the broker connection settings.
type Rabbit struct {
	URL   string
	Retry RabbitRetry
}

// ConsumerDefaults holds the process-wide consumer tunables.
type ConsumerDefaults struct {
	Prefetch int
	Timeout  time.Duration
}

// Chain holds one entry of the chains.<chain> config table.
type Chain struct {
	URL                string
	PollInterval       time.Duration
	BatchSize          int
	MaxParallelFetches int
	Enabled            bool
}

// Job holds one entry of the job.<name> config table.
type Job struct {
	Interval time.Duration
}

// Config is the fully decoded, immutable process configuration.
type Config struct {
	Postgres Postgres
	Redis    Redis
	Rabbitmq Rabbit
	Consumer ConsumerDefaults
	Chains   map[string]Chain
	Job      map[string]Job
}

// Load decodes a TOML file at path on top of the built-in defaults
// (consumer prefetch 1 and timeout 30s; every other field zero), then
// overlays environment variables.
func Load(path string) (Config, error) {
	cfg := Config{
		Consumer: ConsumerDefaults{Prefetch: 1, Timeout: 30 * time.Second},
		Chains:   map[string]Chain{},
		Job:      map[string]Job{},
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, err
		}
		defer f.Close()

		if err := tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg); err != nil {
			if _, ok := err.(*toml.LineError); ok {
				err = errors.New(path + ": " + err.Error())
			}
			return Config{}, err
		}
	}

	applyEnvOverlay(&cfg)
	return cfg, nil
}

// applyEnvOverlay lets deployment-time secrets (DB/broker/cache URLs)
// override file config without editing the TOML.
func applyEnvOverlay(cfg *Config) {
	if v := os.Getenv("INGESTOR_POSTGRES_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	if v := os.Getenv("INGESTOR_REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("INGESTOR_RABBITMQ_URL"); v != "" {
		cfg.Rabbitmq.URL = v
	}
	if v := os.Getenv("INGESTOR_POSTGRES_POOL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Pool = n
		}
	}
}

// Validate fails fast on a config that would let the process start in a
// state no operation could satisfy, mirroring the PlanBuilder fail-fast
// rule the scheduler requires.
func (c Config) Validate() error {
	var problems []string
	if c.Postgres.URL == "" {
		problems = append(problems, "postgres.url is required")
	}
	if c.Redis.URL == "" {
		problems = append(problems, "redis.url is required")
	}
	if c.Rabbitmq.URL == "" {
		problems = append(problems, "rabbitmq.url is required")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
