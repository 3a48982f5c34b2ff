package main

import (
	"fmt"

	"github.com/chainvault/ingestor/internal/broker"
	"github.com/chainvault/ingestor/internal/cache"
	"github.com/chainvault/ingestor/internal/chainprovider"
	"github.com/chainvault/ingestor/internal/config"
	"github.com/chainvault/ingestor/internal/parserstate"
	"github.com/chainvault/ingestor/internal/repository"
	"github.com/chainvault/ingestor/internal/scheduler"
	"github.com/chainvault/ingestor/internal/shutdown"
)

// resources bundles every external connection a role might need so
// roles only take what they use and main only dials each backend once.
type resources struct {
	cfg       config.Config
	repo      repository.Repository
	cache     cache.Cache
	broker    broker.Broker
	store     parserstate.Store
	providers *chainprovider.Registry
	reporter  *scheduler.JobStatusReporter
	sig       *shutdown.Signal
}

func (r *resources) shutdownSignal() *shutdown.Signal { return r.sig }

// connect dials every backend a production role needs, failing fast
// if any is unreachable at startup. dryRun skips
// the broker and repository dials entirely, since a dry run only
// validates config and the requested role's plan shape.
func connect(cfg config.Config, sig *shutdown.Signal, dryRun bool) (*resources, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &resources{cfg: cfg, sig: sig, providers: chainprovider.NewRegistry()}
	registerProviders(r.providers)

	if dryRun {
		r.cache = cache.NewMemCache()
		r.reporter = scheduler.NewJobStatusReporter(r.cache)
		return r, nil
	}

	redisCache, err := cache.NewRedisCache(cache.RedisConfig{URL: cfg.Redis.URL})
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	r.cache = redisCache
	r.reporter = scheduler.NewJobStatusReporter(r.cache)

	repo, err := repository.Open(repository.Config{URL: cfg.Postgres.URL, MaxOpenConn: cfg.Postgres.Pool})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	r.repo = repo
	r.store = parserstate.NewPostgresStore(repo)

	b, err := broker.Dial(broker.Config{URL: cfg.Rabbitmq.URL, Retry: broker.RetryPolicy{Delay: cfg.Rabbitmq.Retry.Delay, Timeout: cfg.Rabbitmq.Retry.Timeout}})
	if err != nil {
		return nil, fmt.Errorf("connect rabbitmq: %w", err)
	}
	r.broker = b

	return r, nil
}

func (r *resources) close() {
	if r.repo != nil {
		_ = r.repo.Close()
	}
	if r.broker != nil {
		_ = r.broker.Close()
	}
}

// registerProviders is the seam a deployment fills in with concrete
// per-chain RPC adapters (chainprovider.Provider implementations);
// none ship in this repository, per internal/chainprovider's package
// doc, so the registry is empty until a deployment links its own
// adapters in here.
func registerProviders(registry *chainprovider.Registry) {}
