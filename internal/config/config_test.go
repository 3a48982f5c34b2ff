package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
[Postgres]
URL = "postgres://localhost/ingestor"
Pool = 10

[Redis]
URL = "redis://localhost:6379/0"

[Rabbitmq]
URL = "amqp://localhost:5672"

[Rabbitmq.Retry]
Delay = "500ms"
Timeout = "5s"

[Chains.bitcoin]
URL = "https://bitcoin.example"
PollInterval = "15s"
BatchSize = 50
Enabled = true

[Job.reconcile_devices]
Interval = "1h"
`

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoadDecodesNestedTables(t *testing.T) {
	path := writeTemp(t, sample)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/ingestor", cfg.Postgres.URL)
	assert.Equal(t, 10, cfg.Postgres.Pool)
	assert.Equal(t, 500*time.Millisecond, cfg.Rabbitmq.Retry.Delay)
	assert.Equal(t, 5*time.Second, cfg.Rabbitmq.Retry.Timeout)

	btc, ok := cfg.Chains["bitcoin"]
	require.True(t, ok)
	assert.Equal(t, 15*time.Second, btc.PollInterval)
	assert.True(t, btc.Enabled)

	job, ok := cfg.Job["reconcile_devices"]
	require.True(t, ok)
	assert.Equal(t, time.Hour, job.Interval)
}

func TestLoadAppliesEnvOverlay(t *testing.T) {
	path := writeTemp(t, sample)
	t.Setenv("INGESTOR_POSTGRES_URL", "postgres://override/ingestor")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://override/ingestor", cfg.Postgres.URL)
}

func TestValidateRequiresCoreURLs(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres.url")
	assert.Contains(t, err.Error(), "redis.url")
	assert.Contains(t, err.Error(), "rabbitmq.url")
}

func TestValidatePassesWithCoreURLs(t *testing.T) {
	cfg := Config{
		Postgres: Postgres{URL: "postgres://x"},
		Redis:    Redis{URL: "redis://x"},
		Rabbitmq: Rabbit{URL: "amqp://x"},
	}
	assert.NoError(t, cfg.Validate())
}
